package ticket

import (
	"fmt"
	"image"
	"image/color"

	qrcode "github.com/skip2/go-qrcode"
)

// qrModulePixels is the size of one QR module before supersampling.
const qrModulePixels = 2

// QRCode encodes payload as a black-on-white QR symbol with its quiet zone.
// moduleSize is the edge of one module in pixels.
func QRCode(payload string, moduleSize int) (image.Image, error) {
	if payload == "" {
		return nil, fmt.Errorf("%w: empty qr payload", ErrInvalidInput)
	}
	q, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	q.ForegroundColor = color.Black
	q.BackgroundColor = color.White
	q.DisableBorder = false
	// a negative size asks for a fixed number of pixels per module
	return q.Image(-moduleSize), nil
}
