package editor

import (
	"fmt"
	"time"
)

// Date formats: the table displays DD/MM/YYYY; the structured picker
// exchanges ISO YYYY-MM-DD. Conversion is strict in both directions so
// that display -> ISO -> display is an exact round trip.
const (
	DisplayDateFormat = "02/01/2006"
	ISODateFormat     = "2006-01-02"
)

// DisplayToISO converts a DD/MM/YYYY display value to YYYY-MM-DD.
func DisplayToISO(display string) (string, error) {
	t, err := time.Parse(DisplayDateFormat, display)
	if err != nil {
		return "", fmt.Errorf("parse display date %q: %w", display, err)
	}
	return t.Format(ISODateFormat), nil
}

// ISOToDisplay converts a YYYY-MM-DD picker value to DD/MM/YYYY.
func ISOToDisplay(iso string) (string, error) {
	t, err := time.Parse(ISODateFormat, iso)
	if err != nil {
		return "", fmt.Errorf("parse iso date %q: %w", iso, err)
	}
	return t.Format(DisplayDateFormat), nil
}
