package vision

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const linePrefix = "L"

// ParseLine decodes one "L,<lk_norm>,<valid>" message with the newline already
// removed.  The lookahead is clamped to [0,1]; ok is false for anything that
// doesn't decode.
func ParseLine(line string) (lk float64, valid bool, ok bool) {
	fields := strings.Split(line, ",")
	if len(fields) != 3 || strings.TrimSpace(fields[0]) != linePrefix {
		return 0, false, false
	}

	lk, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
	if err != nil || math.IsNaN(lk) {
		return 0, false, false
	}
	flag, err := strconv.Atoi(strings.TrimSpace(fields[2]))
	if err != nil {
		return 0, false, false
	}

	return clampUnit(lk), flag != 0, true
}

// FormatLine encodes a message the way the vision sender puts it on the wire.
func FormatLine(lk float64, valid bool) string {
	flag := 0
	if valid {
		flag = 1
	}
	return fmt.Sprintf("%s,%.3f,%d\n", linePrefix, lk, flag)
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
