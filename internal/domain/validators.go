package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrScoreOutOfRange is returned for scores outside the accepted range.
var ErrScoreOutOfRange = errors.New("score must be in the range 1 to 10")

// ValidateYear rejects years later than the current calendar year.
// There is no lower bound: ancient works are fine.
func ValidateYear(year int) error {
	current := time.Now().Year()
	if year > current {
		return fmt.Errorf("year %d is in the future (current year is %d)", year, current)
	}
	return nil
}

// ValidateScore rejects review scores outside [1,10].
func ValidateScore(score int) error {
	if score < 1 || score > 10 {
		return ErrScoreOutOfRange
	}
	return nil
}
