package application

import "time"

// Clock abstraction biar use case gampang ditest dengan waktu beku.
// All timestamps are stored in UTC to match the parseTime/loc settings
// of the database connections.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }
