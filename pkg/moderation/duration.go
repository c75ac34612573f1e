package moderation

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Minutes per calendar unit used by FormatDuration. A month is a flat 30 days.
const (
	MinutesPerHour  = 60
	MinutesPerDay   = 24 * MinutesPerHour
	MinutesPerMonth = 30 * MinutesPerDay
)

// MaxDurationMinutes caps a single punishment request at one year.
const MaxDurationMinutes = 365 * MinutesPerDay

// maxParsedSeconds is where ParseDuration saturates instead of overflowing.
const maxParsedSeconds = math.MaxInt64 / 2

// durationToken matches a number and the word glued or spaced after it. The
// word only counts as a unit when it is one of durationUnits.
var durationToken = regexp.MustCompile(`(\d+)\s*([a-zA-Z]*)`)

var durationUnits = map[string]int64{
	"s": 1, "sec": 1, "secs": 1, "second": 1, "seconds": 1,
	"m": 60, "min": 60, "mins": 60, "minute": 60, "minutes": 60,
	"h": 3600, "hr": 3600, "hrs": 3600, "hour": 3600, "hours": 3600,
	"d": MinutesPerDay * 60, "day": MinutesPerDay * 60, "days": MinutesPerDay * 60,
	"month": MinutesPerMonth * 60, "months": MinutesPerMonth * 60,
}

// ParseDuration converts strings like "1h30m", "45", "2d" or "1 hour 30 minutes"
// into whole minutes. Numbers without a unit are minutes, and so are numbers
// followed by a word that is not a unit. Anything else is ignored; an input
// with no tokens yields 0. Huge inputs saturate rather than wrap.
func ParseDuration(input string) int {
	var seconds int64
	for _, match := range durationToken.FindAllStringSubmatch(input, -1) {
		unit, ok := durationUnits[strings.ToLower(match[2])]
		if !ok {
			unit = 60
		}
		amount, err := strconv.ParseInt(match[1], 10, 64)
		if err != nil || amount > (maxParsedSeconds-seconds)/unit {
			seconds = maxParsedSeconds
			break
		}
		seconds += amount * unit
	}
	if seconds <= 0 {
		return 0
	}
	minutes := math.Round(float64(seconds) / 60)
	if minutes >= math.MaxInt32 {
		return math.MaxInt32
	}
	return int(minutes)
}

var formatUnits = []struct {
	name    string
	minutes int
}{
	{"month", MinutesPerMonth},
	{"day", MinutesPerDay},
	{"hour", MinutesPerHour},
	{"minute", 1},
}

// FormatDuration renders minutes as "1 day 2 hours 5 minutes", largest unit
// first, skipping zero components.
func FormatDuration(minutes int) string {
	if minutes <= 0 {
		return "0 minutes"
	}

	parts := make([]string, 0, len(formatUnits))
	for _, u := range formatUnits {
		amount := minutes / u.minutes
		if amount == 0 {
			continue
		}
		minutes -= amount * u.minutes

		name := u.name
		if amount != 1 {
			name += "s"
		}
		parts = append(parts, strconv.Itoa(amount)+" "+name)
	}
	return strings.Join(parts, " ")
}
