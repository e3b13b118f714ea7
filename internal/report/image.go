package report

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"io"

	"github.com/starford/warrantdesk/internal/apperr"
)

type preparedImage struct {
	kind          string // fpdf image type
	data          []byte
	width, height int
}

func (p preparedImage) reader() io.Reader {
	return bytes.NewReader(p.data)
}

// prepareImage decodes a JPEG or PNG photo. JPEGs are embedded as-is; PNGs
// are re-encoded as 8-bit non-interlaced RGBA, the only PNG flavour the PDF
// writer embeds reliably.
func prepareImage(data []byte) (preparedImage, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return preparedImage{}, fmt.Errorf("%w: %v", apperr.ErrInvalidImage, err)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return preparedImage{}, fmt.Errorf("%w: empty image", apperr.ErrInvalidImage)
	}
	switch format {
	case "jpeg":
		return preparedImage{kind: "JPG", data: data, width: b.Dx(), height: b.Dy()}, nil
	case "png":
		rgba := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
		var buf bytes.Buffer
		if err := png.Encode(&buf, rgba); err != nil {
			return preparedImage{}, fmt.Errorf("report: re-encode png: %w", err)
		}
		return preparedImage{kind: "PNG", data: buf.Bytes(), width: b.Dx(), height: b.Dy()}, nil
	default:
		return preparedImage{}, fmt.Errorf("%w: unsupported format %s", apperr.ErrInvalidImage, format)
	}
}
