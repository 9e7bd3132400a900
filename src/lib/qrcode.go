package lib

import (
	"bytes"

	"github.com/yeqown/go-qrcode"
)

// QREncode renders the payload as a JPEG-encoded QR image.
func QREncode(payload string) ([]byte, error) {
	qrc, err := qrcode.New(payload)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := qrc.SaveTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
