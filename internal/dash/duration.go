package dash

import (
	"regexp"
	"strconv"
)

// Seconds per ISO 8601 duration unit. Years and months use fixed lengths
// (365 and 30 days).
const (
	secondsPerYear   = 31536000
	secondsPerMonth  = 2592000
	secondsPerWeek   = 604800
	secondsPerDay    = 86400
	secondsPerHour   = 3600
	secondsPerMinute = 60
)

var durationPattern = regexp.MustCompile(
	`P(?:(\d*\.?\d+)Y)?(?:(\d*\.?\d+)M)?(?:(\d*\.?\d+)W)?(?:(\d*\.?\d+)D)?` +
		`(?:T(?:(\d*\.?\d+)H)?(?:(\d*\.?\d+)M)?(?:(\d*\.?\d+)S)?)?`)

var durationMultipliers = [...]float64{
	secondsPerYear,
	secondsPerMonth,
	secondsPerWeek,
	secondsPerDay,
	secondsPerHour,
	secondsPerMinute,
	1,
}

// ParseDuration parses an ISO 8601 duration such as "PT1H30M" or "P1DT12.5S"
// into seconds. It never fails: input that does not match the grammar, and
// any component that is missing, counts as zero.
func ParseDuration(duration string) float64 {
	match := durationPattern.FindStringSubmatch(duration)
	if match == nil {
		return 0
	}

	var total float64
	for i, multiplier := range durationMultipliers {
		total += parseComponent(match[i+1]) * multiplier
	}
	return total
}

// parseComponent converts the digits of one component, unit letter already
// stripped by the pattern.
func parseComponent(value string) float64 {
	if value == "" {
		return 0
	}
	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return n
}
