package moments

import (
	"fmt"
	"time"
)

// OpenLabel is shown once the capsule has unlocked.
const OpenLabel = "Zamanı Geldi!"

// CapsuleState is the capsule countdown at one instant.
type CapsuleState struct {
	Open  bool
	Left  time.Duration
	Label string
}

// Capsule reports whether a capsule unlocking on unlockDate (YYYY-MM-DD,
// UTC midnight) is open at now and, if not, how long remains.
func Capsule(unlockDate string, now time.Time) (CapsuleState, error) {
	target, err := time.Parse("2006-01-02", unlockDate)
	if err != nil {
		return CapsuleState{}, fmt.Errorf("parse unlock date: %w", err)
	}
	left := target.Sub(now)
	if left < 0 {
		return CapsuleState{Open: true, Label: OpenLabel}, nil
	}
	days := int64(left / (24 * time.Hour))
	hours := int64(left%(24*time.Hour)) / int64(time.Hour)
	minutes := int64(left%time.Hour) / int64(time.Minute)
	return CapsuleState{
		Left:  left,
		Label: fmt.Sprintf("%d gün %d saat %d dakika", days, hours, minutes),
	}, nil
}
