package letterbox

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
)

// JPEG qualities per backend.
const (
	GPUJPEGQuality      = 80
	FallbackJPEGQuality = 70
)

// emptyDataURL is what a canvas yields when it has nothing to encode.
const emptyDataURL = "data:,"

// EncodedImage is a compressed raster ready to be used as a background.
type EncodedImage struct {
	MIMEType string
	Data     []byte
}

// Valid reports whether the image carries any data.
func (e EncodedImage) Valid() bool {
	return e.MIMEType != "" && len(e.Data) > 0
}

// DataURL returns the image as a data URL. An invalid image yields the
// empty data URL "data:,".
func (e EncodedImage) DataURL() string {
	if !e.Valid() {
		return emptyDataURL
	}
	return "data:" + e.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(e.Data)
}

// EncodeJPEG compresses img at the given quality (1-100).
func EncodeJPEG(img image.Image, quality int) (EncodedImage, error) {
	if img == nil {
		return EncodedImage{}, fmt.Errorf("encode jpeg: %w", ErrNoFrame)
	}
	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return EncodedImage{}, fmt.Errorf("encode jpeg %v: %w", b, ErrInvalidSize)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return EncodedImage{}, fmt.Errorf("encode jpeg: %w", err)
	}
	return EncodedImage{MIMEType: "image/jpeg", Data: buf.Bytes()}, nil
}
