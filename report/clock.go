// Package report timestamps simulation runs and persists their summaries.
package report

import (
	"log/slog"
	"time"

	"github.com/beevik/ntp"
)

// Clock reads wall-clock time from an NTP server, falling back to the local
// clock when no server is set or the query fails.
type Clock struct {
	server string
	query  func(server string) (time.Time, error)
	local  func() time.Time
}

// NewClock creates a clock backed by server. An empty server means the local
// clock is always used.
func NewClock(server string) *Clock {
	return &Clock{
		server: server,
		query:  ntp.Time,
		local:  time.Now,
	}
}

// Server returns the configured NTP server.
func (c *Clock) Server() string {
	return c.server
}

// Now returns the current time.
func (c *Clock) Now() time.Time {
	if c.server == "" {
		return c.local()
	}

	t, err := c.query(c.server)
	if err != nil {
		slog.Warn("failed to get time from NTP server, using local clock",
			"server", c.server,
			"err", err,
		)
		return c.local()
	}

	return t
}
