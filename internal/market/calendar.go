// Package market answers exchange-calendar questions: is the market open,
// and when does it next open.
package market

import (
	"time"
	_ "time/tzdata"

	"github.com/rs/zerolog/log"
	"github.com/scmhub/calendar"
)

// Regular hours used when the exchange calendar carries no session.
var defaultSession = calendar.Session{
	Open:  9*time.Hour + 30*time.Minute,
	Close: 16 * time.Hour,
}

// Calendar wraps an exchange calendar and takes session hours from it. When
// the exchange calendar cannot be loaded it falls back to Mon-Fri
// 09:30-16:00 in the exchange time zone.
type Calendar struct {
	cal      *calendar.Calendar
	loc      *time.Location
	fallback bool
}

// NYSE returns the New York Stock Exchange calendar.
func NYSE() *Calendar {
	return ForMIC("xnys")
}

// ForMIC loads the calendar for an ISO 10383 market identifier code.
func ForMIC(mic string) *Calendar {
	if cal := calendar.GetCalendar(mic); cal != nil {
		return &Calendar{cal: cal, loc: cal.Loc}
	}
	log.Warn().Str("mic", mic).Msg("exchange calendar unavailable, using Mon-Fri 09:30-16:00 fallback")
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.UTC
	}
	return &Calendar{loc: loc, fallback: true}
}

// Location is the exchange time zone.
func (c *Calendar) Location() *time.Location { return c.loc }

// IsTradingDay reports whether the exchange trades on t's local date.
func (c *Calendar) IsTradingDay(t time.Time) bool {
	t = t.In(c.loc)
	if c.fallback {
		wd := t.Weekday()
		return wd != time.Saturday && wd != time.Sunday
	}
	return c.cal.IsBusinessDay(t)
}

// IsOpen reports whether the exchange is in its regular session at t.
func (c *Calendar) IsOpen(t time.Time) bool {
	t = t.In(c.loc)
	if c.hasSession() {
		return c.cal.IsOpen(t)
	}
	if !c.IsTradingDay(t) {
		return false
	}
	open, closing := c.sessionBounds(t)
	return !t.Before(open) && t.Before(closing)
}

// NextOpen returns the next regular-session open strictly after t, searching
// at most two weeks ahead.
func (c *Calendar) NextOpen(t time.Time) time.Time {
	t = t.In(c.loc)
	for d := 0; d < 14; d++ {
		day := t.AddDate(0, 0, d)
		if !c.IsTradingDay(day) {
			continue
		}
		open, _ := c.sessionBounds(day)
		if open.After(t) {
			return open
		}
	}
	return time.Time{}
}

// Session returns the exchange's regular hours as offsets from local midnight.
func (c *Calendar) Session() calendar.Session {
	if c.hasSession() {
		return *c.cal.Session()
	}
	return defaultSession
}

func (c *Calendar) hasSession() bool {
	if c.fallback || c.cal == nil {
		return false
	}
	s := c.cal.Session()
	return s != nil && !s.IsZero()
}

func (c *Calendar) sessionBounds(t time.Time) (open, closing time.Time) {
	s := c.Session()
	bod := calendar.BOD(t.In(c.loc))
	open = bod.Add(s.Open)
	closing = bod.Add(s.Close)
	if c.hasSession() && s.EarlyClose != 0 && c.cal.IsEarlyClose(t) {
		closing = bod.Add(s.EarlyClose)
	}
	return open, closing
}
