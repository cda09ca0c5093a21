package zosfs

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseSizeSpec parses a format() size argument of the form
// "<num>[KB|MB|GB]": the number is base 10, the suffix (case-insensitive)
// is a base-1024 multiplier. A bare number with no suffix is taken as
// bytes.
func ParseSizeSpec(spec string) (int64, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return 0, fmt.Errorf("empty size")
	}
	upper := strings.ToUpper(spec)
	mult := int64(1)
	numPart := upper
	switch {
	case strings.HasSuffix(upper, "GB"):
		mult = 1024 * 1024 * 1024
		numPart = upper[:len(upper)-2]
	case strings.HasSuffix(upper, "MB"):
		mult = 1024 * 1024
		numPart = upper[:len(upper)-2]
	case strings.HasSuffix(upper, "KB"):
		mult = 1024
		numPart = upper[:len(upper)-2]
	}
	n, err := strconv.ParseInt(strings.TrimSpace(numPart), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", spec, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("size must be positive, got %d", n)
	}
	return n * mult, nil
}
