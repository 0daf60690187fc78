// services/qrcode_service.go
package services

import (
	"errors"

	"github.com/skip2/go-qrcode"
)

// QRCodeEncoder matches qrcode.Encode so tests can swap the encoder out.
type QRCodeEncoder func(content string, level qrcode.RecoveryLevel, size int) ([]byte, error)

// GenerateQRCode creates a PNG QR code pointing at content, for the signup posters.
// The code is square, so only width sets the image size; height is validated only.
func GenerateQRCode(content string, width, height int, encode QRCodeEncoder) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.New("invalid dimensions: width and height must be positive")
	}
	if content == "" {
		return nil, errors.New("missing QR code content")
	}
	if encode == nil {
		encode = qrcode.Encode
	}

	png, err := encode(content, qrcode.Medium, width)
	if err != nil {
		return nil, err
	}
	return png, nil
}
