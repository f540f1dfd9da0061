package domain

import (
	"time"
)

// LedgerZone is the platform's home time zone. Days and months roll over at its midnight.
var LedgerZone = time.FixedZone("KST", 9*60*60)

type Clock struct {
	Location *time.Location
	NowFunc  func() time.Time
}

func NewClock(loc *time.Location) Clock {
	return Clock{Location: loc}
}

func (c Clock) Now() time.Time {
	if c.NowFunc != nil {
		return c.NowFunc()
	}
	return time.Now()
}

func (c Clock) location() *time.Location {
	if c.Location == nil {
		return LedgerZone
	}
	return c.Location
}

// DayEpoch numbers calendar days in the ledger zone.
func (c Clock) DayEpoch(t time.Time) int64 {
	y, m, d := t.In(c.location()).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

// MonthEpoch numbers calendar months in the ledger zone.
func (c Clock) MonthEpoch(t time.Time) int64 {
	y, m, _ := t.In(c.location()).Date()
	return int64(y)*12 + int64(m) - 1
}
