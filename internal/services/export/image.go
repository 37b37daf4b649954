package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// pageImage is one decoded page ready for placement: raw bytes in a format
// fpdf embeds natively, plus pixel dimensions.
type pageImage struct {
	data    []byte
	imgType string // fpdf image type: "JPG", "PNG" or "GIF"
	width   int
	height  int
}

// nativeTypes maps the stdlib decoder format name to fpdf's type tag for
// formats fpdf can embed without transcoding.
var nativeTypes = map[string]string{
	"jpeg": "JPG",
	"png":  "PNG",
	"gif":  "GIF",
}

// loadPageImage sniffs the image format and prepares it for fpdf. JPEG, PNG
// and GIF pass through untouched; BMP, TIFF and WebP are decoded and
// re-encoded as PNG. Only one decoded image is held at a time.
func loadPageImage(data []byte) (*pageImage, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("image has invalid dimensions %dx%d", cfg.Width, cfg.Height)
	}

	if imgType, ok := nativeTypes[format]; ok {
		return &pageImage{
			data:    data,
			imgType: imgType,
			width:   cfg.Width,
			height:  cfg.Height,
		}, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s image: %w", format, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to re-encode %s image as png: %w", format, err)
	}

	return &pageImage{
		data:    buf.Bytes(),
		imgType: "PNG",
		width:   cfg.Width,
		height:  cfg.Height,
	}, nil
}
