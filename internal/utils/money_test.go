package utils

import "testing"

func TestParsePesos(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"500", 50000},
		{"500.00", 50000},
		{"500.5", 50050},
		{"1,500.25", 150025},
		{"₱1,500", 150000},
		{" 250.75 ", 25075},
		{".50", 50},
		{"-10.25", -1025},
		{"-0.50", -50},
		{"-0.05", -5},
	}
	for _, c := range cases {
		got, err := ParsePesos(c.in)
		if err != nil {
			t.Errorf("ParsePesos(%q) error: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParsePesos(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestParsePesosRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "-", "abc", "10.123", "1.2.3", "10.x", "--5", "5.-5"} {
		if _, err := ParsePesos(in); err == nil {
			t.Errorf("ParsePesos(%q) should fail", in)
		}
	}
}

func TestCentavosToDecimal(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{50000, "500.00"},
		{50, "0.50"},
		{5, "0.05"},
		{150025, "1500.25"},
		{-1025, "-10.25"},
		{0, "0.00"},
	}
	for _, c := range cases {
		if got := CentavosToDecimal(c.in); got != c.want {
			t.Errorf("CentavosToDecimal(%d) = %s, want %s", c.in, got, c.want)
		}
	}
}

func TestFormatPesos(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{50000, "PHP 500.00"},
		{150000000, "PHP 1,500,000.00"},
		{0, "PHP 0.00"},
		{-25050, "-PHP 250.50"},
	}
	for _, c := range cases {
		if got := FormatPesos(c.in); got != c.want {
			t.Errorf("FormatPesos(%d) = %s, want %s", c.in, got, c.want)
		}
	}
}
