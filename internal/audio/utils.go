package audio

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// parseProbeDuration converts ffprobe's bare seconds output ("612.345000")
// into a duration.
func parseProbeDuration(output string) (time.Duration, error) {
	value := strings.TrimSpace(output)
	if value == "" || value == "N/A" {
		return 0, fmt.Errorf("no duration in output %q", output)
	}

	seconds, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration: %w", err)
	}
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return 0, fmt.Errorf("unusable duration: %s", value)
	}

	return time.Duration(seconds * float64(time.Second)), nil
}

// formatSeconds renders an offset the way ffplay's -ss flag expects it.
func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}
