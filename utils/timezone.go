package utils

import (
	"errors"
	"fmt"
	"time"
)

// CanonicalZone is the single zone every persisted instant is normalized to.
const CanonicalZone = "Asia/Kolkata"

var (
	// ErrInvalidTimeZone marks an unknown IANA zone identifier.
	ErrInvalidTimeZone = errors.New("invalid time zone")

	// ErrAmbiguousLocalTime marks a wall-clock time that does not exist in
	// the source zone (a DST spring-forward gap).
	ErrAmbiguousLocalTime = errors.New("ambiguous local time")
)

// ToCanonical interprets the wall-clock fields of local as a time in zone,
// converts it to the canonical zone and strips zone information from the
// result. The returned instant carries canonical wall-clock values in UTC so
// the rest of the system can treat it as zone-naive.
//
// A wall clock falling in a spring-forward gap is rejected with
// ErrAmbiguousLocalTime. A fall-back overlap resolves to the zone database's
// deterministic choice.
func ToCanonical(local time.Time, zone string) (time.Time, error) {
	if zone == CanonicalZone {
		return strip(local), nil
	}

	loc, err := time.LoadLocation(zone)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimeZone, zone)
	}

	src := time.Date(
		local.Year(), local.Month(), local.Day(),
		local.Hour(), local.Minute(), local.Second(), local.Nanosecond(),
		loc,
	)
	// time.Date normalizes nonexistent wall clocks; a shifted result means
	// the requested local time fell in a DST gap.
	if !sameWallClock(src, local) {
		return time.Time{}, fmt.Errorf("%w: %s does not exist in %s",
			ErrAmbiguousLocalTime, local.Format("2006-01-02 15:04:05"), zone)
	}

	canonical, err := time.LoadLocation(CanonicalZone)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimeZone, CanonicalZone)
	}
	return strip(src.In(canonical)), nil
}

// NowCanonical returns the current canonical-zone wall clock, stripped to UTC
// the same way persisted instants are. Scheduling comparisons against stored
// values must use this, never time.Now directly.
func NowCanonical() time.Time {
	loc, err := time.LoadLocation(CanonicalZone)
	if err != nil {
		return strip(time.Now().UTC())
	}
	return strip(time.Now().In(loc))
}

// Rollover pushes an already-passed instant forward by exactly one day so
// scheduling stays forward-looking. Instants at or after now are unchanged.
func Rollover(t, now time.Time) time.Time {
	if t.Before(now) {
		return t.AddDate(0, 0, 1)
	}
	return t
}

// DayWindow returns the [start, end) bounds of the day containing t.
func DayWindow(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

func strip(t time.Time) time.Time {
	return time.Date(
		t.Year(), t.Month(), t.Day(),
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(),
		time.UTC,
	)
}

func sameWallClock(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd &&
		a.Hour() == b.Hour() && a.Minute() == b.Minute() && a.Second() == b.Second()
}
