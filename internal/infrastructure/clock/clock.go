// Package clock provides the system implementation of ports.Clock.
package clock

import "time"

// System reads the wall clock in UTC. The warehouse windows all work in UTC
// days, so the service never deals in local time.
type System struct{}

func (System) Now() time.Time {
	return time.Now().UTC()
}
