package token

import (
	"encoding/json"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// QRContent is the JSON document encoded into the printed QR image. Its
// field names match the scan endpoint's request body, so a scanning client
// can decode the image and post the document as-is.
type QRContent struct {
	QRPayload   string `json:"qr_payload"`
	QRSignature string `json:"qr_signature"`
}

// RenderQR encodes a signed token into a QR PNG of the given pixel size.
func RenderQR(payload, signature string, size int) ([]byte, error) {
	content, err := json.Marshal(QRContent{
		QRPayload:   payload,
		QRSignature: signature,
	})
	if err != nil {
		return nil, fmt.Errorf("encode qr content: %w", err)
	}

	png, err := qrcode.Encode(string(content), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("render qr: %w", err)
	}
	return png, nil
}
