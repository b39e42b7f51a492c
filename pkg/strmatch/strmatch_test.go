package strmatch

import "testing"

func TestMatch(t *testing.T) {
	cases := []struct {
		pattern, s string
		want       bool
	}{
		{"Reflectivity", "Reflectivity", true},
		{"Reflectivity", "Velocity", false},
		{"Refl*", "Reflectivity", true},
		{"*ectivity", "Reflectivity", true},
		{"Ref*ity", "Reflectivity", true},
		{"Ref*ity", "Refzzzz", false},
		{"*", "anything", true},
		{"00.50", "00.50", true},
		{"00.*", "00.50", true},
	}
	for _, c := range cases {
		if got := Match(c.pattern, c.s); got != c.want {
			t.Errorf("Match(%q, %q) = %v, want %v", c.pattern, c.s, got, c.want)
		}
	}
}
