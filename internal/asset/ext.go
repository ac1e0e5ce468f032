package asset

import (
	"path/filepath"
	"strings"
)

var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".heic": {},
	".heif": {},
	".png":  {},
	".gif":  {},
	".webp": {},
	".tiff": {},
	".tif":  {},
	".bmp":  {},
}

var videoExtensions = map[string]struct{}{
	".mov": {},
	".mp4": {},
	".m4v": {},
	".avi": {},
	".mkv": {},
	".3gp": {},
}

func normalizeExt(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// KindForPath reports the media kind implied by the file extension. The
// second return value is false for extensions outside the supported sets.
func KindForPath(path string) (Kind, bool) {
	ext := normalizeExt(path)
	if _, ok := imageExtensions[ext]; ok {
		return KindImage, true
	}
	if _, ok := videoExtensions[ext]; ok {
		return KindVideo, true
	}
	return "", false
}

// IsImagePath reports whether the extension names a supported image format.
func IsImagePath(path string) bool {
	_, ok := imageExtensions[normalizeExt(path)]
	return ok
}

// IsVideoPath reports whether the extension names a supported video format.
func IsVideoPath(path string) bool {
	_, ok := videoExtensions[normalizeExt(path)]
	return ok
}

// IsHEICPath reports whether the path uses Apple's HEIC/HEIF container,
// which the standard image decoders cannot open.
func IsHEICPath(path string) bool {
	ext := normalizeExt(path)
	return ext == ".heic" || ext == ".heif"
}

// IsJPEGPath reports whether the path names a JPEG file.
func IsJPEGPath(path string) bool {
	ext := normalizeExt(path)
	return ext == ".jpg" || ext == ".jpeg"
}
