package metrics

import (
	"strings"
	"time"

	"github.com/containerd/errdefs"
	"github.com/pkg/errors"
)

// TimeUnit is the unit rates and durations are reported in.
type TimeUnit string

const (
	Nanoseconds  TimeUnit = "ns"
	Microseconds TimeUnit = "us"
	Milliseconds TimeUnit = "ms"
	Seconds      TimeUnit = "s"
	Minutes      TimeUnit = "min"
	Hours        TimeUnit = "h"
)

var unitDurations = map[TimeUnit]time.Duration{
	Nanoseconds:  time.Nanosecond,
	Microseconds: time.Microsecond,
	Milliseconds: time.Millisecond,
	Seconds:      time.Second,
	Minutes:      time.Minute,
	Hours:        time.Hour,
}

var unitAliases = map[string]TimeUnit{
	"ns": Nanoseconds, "nanosecond": Nanoseconds, "nanoseconds": Nanoseconds,
	"us": Microseconds, "µs": Microseconds, "microsecond": Microseconds, "microseconds": Microseconds,
	"ms": Milliseconds, "millisecond": Milliseconds, "milliseconds": Milliseconds,
	"s": Seconds, "sec": Seconds, "second": Seconds, "seconds": Seconds,
	"m": Minutes, "min": Minutes, "minute": Minutes, "minutes": Minutes,
	"h": Hours, "hour": Hours, "hours": Hours,
}

// ParseTimeUnit parses a unit name such as "ms", "seconds" or "min".
func ParseTimeUnit(s string) (TimeUnit, error) {
	u, ok := unitAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", errors.Wrapf(errdefs.ErrInvalidArgument, "unknown time unit %q", s)
	}
	return u, nil
}

// Duration returns the length of one unit. Unknown units count as seconds.
func (u TimeUnit) Duration() time.Duration {
	if d, ok := unitDurations[u]; ok {
		return d
	}
	return time.Second
}

func (u TimeUnit) String() string { return string(u) }

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *TimeUnit) UnmarshalText(text []byte) error {
	parsed, err := ParseTimeUnit(string(text))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// FromNanoseconds converts a nanosecond quantity into this unit.
func (u TimeUnit) FromNanoseconds(ns float64) float64 {
	return ns / float64(u.Duration())
}

// PerUnit converts a per-second rate into a rate per this unit.
func (u TimeUnit) PerUnit(perSecond float64) float64 {
	return perSecond * u.Duration().Seconds()
}
