package ports

import "time"

// Clock is the time source for event timestamps.
type Clock interface {
	Now() time.Time
}
