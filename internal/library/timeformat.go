package library

import "fmt"

// FormatTime renders a playback offset as [h:]mm:ss. Minutes and seconds are
// zero-padded; the hour part is unpadded and appears only past the one-hour
// mark, so 65 → "01:05" and 3725 → "1:02:05".
func FormatTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	hrs := total / 3600
	mins := (total % 3600) / 60
	secs := total % 60

	if hrs > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hrs, mins, secs)
	}
	return fmt.Sprintf("%02d:%02d", mins, secs)
}
