package market

import "time"

// Status is a point-in-time view of the exchange session.
type Status struct {
	Now       time.Time     `json:"now"`
	Open      bool          `json:"open"`
	NextOpen  time.Time     `json:"next_open,omitempty"`
	Countdown time.Duration `json:"countdown"`
}

// Status reports whether the market is open at now and, if closed, how long
// until it opens.
func (c *Calendar) Status(now time.Time) Status {
	st := Status{Now: now.In(c.loc), Open: c.IsOpen(now)}
	if st.Open {
		return st
	}
	st.NextOpen = c.NextOpen(now)
	if !st.NextOpen.IsZero() {
		st.Countdown = st.NextOpen.Sub(now).Truncate(time.Second)
	}
	return st
}
