package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ParsePesos parses "500", "500.00" or "1,500.5" into integer centavos.
func ParsePesos(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "₱")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}

	whole := s
	frac := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("amount has more than two decimal places")
	}
	for len(frac) < 2 {
		frac += "0"
	}
	if whole == "" {
		whole = "0"
	}

	p, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || p < 0 {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	c, err := strconv.ParseInt(frac, 10, 64)
	if err != nil || c < 0 {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	total := p*100 + c
	if neg {
		total = -total
	}
	return total, nil
}

// CentavosToDecimal renders centavos as a plain two-decimal string ("500.00").
func CentavosToDecimal(c int64) string {
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}

// FormatPesos renders centavos with thousand separators for documents.
// Core PDF fonts lack the peso sign, so the currency code is spelled out.
func FormatPesos(c int64) string {
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%sPHP %s.%02d", sign, formatThousand(c/100), c%100)
}

func formatThousand(n int64) string {
	if n == 0 {
		return "0"
	}
	str := strconv.FormatInt(n, 10)
	var out strings.Builder
	for i, ch := range str {
		if i != 0 && (len(str)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(ch)
	}
	return out.String()
}
