package money

import "testing"

func TestFormat(t *testing.T) {
	cases := []struct {
		minor int64
		want  string
	}{
		{15050, "150.50"},
		{100, "1.00"},
		{5, "0.05"},
		{0, "0.00"},
		{-250, "-2.50"},
	}
	for _, c := range cases {
		if got := Format(c.minor); got != c.want {
			t.Errorf("Format(%d) = %q, want %q", c.minor, got, c.want)
		}
	}
}

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"150", 15000},
		{"150.5", 15050},
		{"150.50", 15050},
		{"0.01", 1},
		{" 20 ", 2000},
	}
	for _, c := range cases {
		got, err := Parse(c.in)
		if err != nil {
			t.Errorf("Parse(%q) failed: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("Parse(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	for _, in := range []string{"", "abc", "-5", "+5", "0", "0.00", "1.234", ".50", "1.2.3"} {
		if _, err := Parse(in); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", in)
		}
	}
}

func TestParseRejectsOverflow(t *testing.T) {
	// Whole parts that survive ParseInt but would wrap when scaled to minor
	// units must be rejected, not accepted as a wrapped positive value.
	cases := []string{
		"92233720368547759",    // units*100 exceeds int64
		"92233720368547758.08", // units*100 fits, adding cents does not
		"9223372036854775807",  // math.MaxInt64 as units
	}
	for _, in := range cases {
		if _, err := Parse(in); err != ErrInvalidAmount {
			t.Errorf("Parse(%q) = %v, want ErrInvalidAmount", in, err)
		}
	}

	// The largest representable amount still parses.
	got, err := Parse("92233720368547758.07")
	if err != nil {
		t.Fatalf("max amount failed: %v", err)
	}
	if got != 9223372036854775807 {
		t.Fatalf("max amount = %d", got)
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	got, err := Parse(Format(987654321))
	if err != nil {
		t.Fatalf("round trip parse failed: %v", err)
	}
	if got != 987654321 {
		t.Fatalf("round trip = %d, want 987654321", got)
	}
}
