package fingerprint

import (
	"bytes"
	"image"

	// Raster formats registered for image.Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/corona10/goimagehash"

	"photorestore/internal/asset"
)

func decodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	return img, err
}

// perceptualHash computes the 64-bit DCT hash of a decoded image. The
// input is normalized to a small grayscale raster internally, so the hash
// survives recompression and resizing.
func perceptualHash(img image.Image) (asset.PerceptualHash, error) {
	h, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return 0, err
	}
	return asset.PerceptualHash(h.GetHash()), nil
}
