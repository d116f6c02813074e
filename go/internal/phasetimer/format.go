package phasetimer

import "fmt"

// PlaceholderTime replaces the remaining time once the sequence is exhausted.
const PlaceholderTime = "--:--"

// FormatTime renders seconds as MM:SS. Minutes do not roll over into hours.
func FormatTime(sec int) string {
	if sec < 0 {
		sec = 0
	}
	return fmt.Sprintf("%02d:%02d", sec/60, sec%60)
}
