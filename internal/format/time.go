package format

import (
	"time"
)

const (
	filetimeEpochDelta = 11644473600 // seconds between 1601-01-01 and 1970-01-01
	filetimeTicksPerS  = 10000000    // FILETIME ticks are 100ns
	filetimeUnit       = 100
)

// FiletimeToTime converts a Windows FILETIME (100ns ticks since 1601-01-01 UTC)
// to time.Time. The full uint64 range is representable.
func FiletimeToTime(v uint64) time.Time {
	sec := int64(v/filetimeTicksPerS) - filetimeEpochDelta
	nsec := int64(v%filetimeTicksPerS) * filetimeUnit
	return time.Unix(sec, nsec).UTC()
}

// TimeToFiletime converts t to a FILETIME. Instants before 1601 clamp to 0.
func TimeToFiletime(t time.Time) uint64 {
	sec := t.Unix() + filetimeEpochDelta
	if sec < 0 {
		return 0
	}
	return uint64(sec)*filetimeTicksPerS + uint64(t.Nanosecond())/filetimeUnit
}

// SystemtimeSize is the on-disk size of a SYSTEMTIME structure.
const SystemtimeSize = 16

// SystemtimeToTime decodes a SYSTEMTIME (eight little-endian uint16: year,
// month, day of week, day, hour, minute, second, milliseconds).
func SystemtimeToTime(b []byte) (time.Time, error) {
	if len(b) < SystemtimeSize {
		return time.Time{}, ErrTruncated
	}
	f := func(i int) int { return int(b[i*2]) | int(b[i*2+1])<<8 }
	return time.Date(f(0), time.Month(f(1)), f(3), f(4), f(5), f(6), f(7)*int(time.Millisecond), time.UTC), nil
}
