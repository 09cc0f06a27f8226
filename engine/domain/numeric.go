package domain

import "strconv"

// Magnitude extracts the numeric magnitude from a unit-tagged catalog value
// such as "1497cc", "113 bhp", or "18.5 km/l". Everything outside digits and
// the decimal point is stripped before parsing. Unparsable or empty input
// yields 0.
func Magnitude(s string) float64 {
	if s == "" {
		return 0
	}
	buf := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= '0' && c <= '9') || c == '.' {
			buf = append(buf, c)
		}
	}
	if len(buf) == 0 {
		return 0
	}
	n, err := strconv.ParseFloat(string(buf), 64)
	if err != nil {
		return 0
	}
	return n
}
