package vitals

import "time"

// Clock abstracts wall-clock access so cooldown behavior can be tested
// without real sleeps.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func SystemClock() Clock { return systemClock{} }
