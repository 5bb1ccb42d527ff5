package countcmp

import (
	"math"
	"strconv"
	"strings"
)

// thresholdParam is the parameter name reported in threshold errors.
const thresholdParam = "number_of_rows"

// Threshold converts an untyped threshold to an int64.
//
// Only Go integer kinds are accepted. Floats (even integral ones), booleans,
// nil, strings and every other type fail with *InvalidArgumentError, as do
// unsigned values too large for int64. Use ParseThreshold for textual input.
func Threshold(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint:
		return unsignedThreshold(uint64(n), v)
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint64:
		return unsignedThreshold(n, v)
	default:
		return 0, &InvalidArgumentError{Param: thresholdParam, Value: v}
	}
}

func unsignedThreshold(n uint64, v any) (int64, error) {
	if n > math.MaxInt64 {
		return 0, &InvalidArgumentError{Param: thresholdParam, Value: v}
	}
	return int64(n), nil
}

// ParseThreshold parses a base-10 integer threshold from text, such as a
// command-line argument or an environment variable.
func ParseThreshold(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, &InvalidArgumentError{Param: thresholdParam, Value: s}
	}
	return n, nil
}
