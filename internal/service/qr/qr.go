// Package qr renders the kiosk code posted at each venue entrance.
package qr

import (
	"fmt"

	"github.com/pkg/errors"
	qrcode "github.com/skip2/go-qrcode"
)

const codeSize = 512

// VenueCode encodes the venue id into a PNG QR code. The mobile client
// scans it to preselect the venue on the clock-in screen.
func VenueCode(locationID int) ([]byte, error) {
	payload := fmt.Sprintf("presencia://venue/%d", locationID)
	png, err := qrcode.Encode(payload, qrcode.Medium, codeSize)
	if err != nil {
		return nil, errors.Wrap(err, "encoding venue qr")
	}
	return png, nil
}
