package ledger

import "fmt"

// FormatDuration renders milliseconds as "D days, H hours, M minutes, S seconds".
// Sub-second remainders are dropped.
func FormatDuration(ms int64) string {
	seconds := ms / 1000
	minutes := seconds / 60
	seconds %= 60
	hours := minutes / 60
	minutes %= 60
	days := hours / 24
	hours %= 24
	return fmt.Sprintf("%d days, %d hours, %d minutes, %d seconds", days, hours, minutes, seconds)
}
