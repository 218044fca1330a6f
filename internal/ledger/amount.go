package ledger

import (
	"fmt"
	"strconv"
	"strings"
)

// Amounts are stored in milli-tokens: "0.1" is 100.
const (
	// Symbol is the display unit for registration fees.
	Symbol = "MON"

	milliPerToken = 1000
	milliDigits   = 3
)

// ParseAmount converts a decimal token amount such as "0.1" into milli-tokens.
// At most three fractional digits are accepted.
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("ledger: empty amount")
	}
	if strings.HasPrefix(s, "-") {
		return 0, fmt.Errorf("ledger: negative amount %q", s)
	}

	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if hasFrac && frac == "" {
		return 0, fmt.Errorf("ledger: invalid amount %q", s)
	}
	if !isDigits(whole) || (hasFrac && !isDigits(frac)) {
		return 0, fmt.Errorf("ledger: invalid amount %q", s)
	}
	if len(frac) > milliDigits {
		return 0, fmt.Errorf("ledger: amount %q has more than %d decimal places", s, milliDigits)
	}

	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("ledger: invalid amount %q", s)
	}
	var f int64
	if frac != "" {
		f, err = strconv.ParseInt(frac+strings.Repeat("0", milliDigits-len(frac)), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("ledger: invalid amount %q", s)
		}
	}

	if w > (1<<62)/milliPerToken {
		return 0, fmt.Errorf("ledger: amount %q too large", s)
	}
	return w*milliPerToken + f, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// FormatAmount renders milli-tokens as a short decimal ("0.1", "2", "1.25").
func FormatAmount(milli int64) string {
	sign := ""
	if milli < 0 {
		sign = "-"
		milli = -milli
	}
	whole := milli / milliPerToken
	frac := milli % milliPerToken
	if frac == 0 {
		return fmt.Sprintf("%s%d", sign, whole)
	}
	digits := strings.TrimRight(fmt.Sprintf("%03d", frac), "0")
	return fmt.Sprintf("%s%d.%s", sign, whole, digits)
}
