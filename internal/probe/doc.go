// Package probe extracts capture metadata from files the standard image
// decoders cannot open.
//
// Two backends are supported: an exiftool subprocess (HEIC stills, video
// tags) and ffprobe JSON inspection (video streams). The Suite routes each
// request to whichever backend fits the media kind and is actually
// installed; a missing backend degrades the caller's record instead of
// failing the run.
package probe
