package language

import "testing"

func TestBase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en-US", "en"},
		{"en_GB", "en"},
		{"EN", "en"},
		{"pt-BR", "pt"},
		{"", "und"},
		{"  ", "und"},
	}
	for _, tc := range tests {
		if got := Base(tc.input); got != tc.expected {
			t.Errorf("Base(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}

func TestToISO2(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en", "en"},
		{"eng", "en"},
		{"en-US", "en"},
		{"fra", "fr"},
		{"fre", "fr"},
		{"ger", "de"},
		{"chi", "zh"},
		{"xx", "xx"},
		{"xyz", ""},
		{"", ""},
	}
	for _, tc := range tests {
		if got := ToISO2(tc.input); got != tc.expected {
			t.Errorf("ToISO2(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}

func TestToISO3(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en", "eng"},
		{"en-US", "eng"},
		{"fr", "fra"},
		{"fre", "fra"},
		{"xyz", "xyz"},
		{"xx", "und"},
		{"", "und"},
	}
	for _, tc := range tests {
		if got := ToISO3(tc.input); got != tc.expected {
			t.Errorf("ToISO3(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}

func TestMatches(t *testing.T) {
	tests := []struct {
		preferred string
		tag       string
		expected  bool
	}{
		{"en", "en", true},
		{"en", "en-US", true},
		{"en", "eng", true},
		{"en", "fr", false},
		{"en", "und", false},
		{"en", "", false},
		{"", "en", false},
	}
	for _, tc := range tests {
		if got := Matches(tc.preferred, tc.tag); got != tc.expected {
			t.Errorf("Matches(%q, %q) = %v, want %v", tc.preferred, tc.tag, got, tc.expected)
		}
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName("en-US"); got != "English" {
		t.Errorf("DisplayName(en-US) = %q", got)
	}
	if got := DisplayName(""); got != "Unknown" {
		t.Errorf("DisplayName(empty) = %q", got)
	}
	if got := DisplayName("xx"); got != "XX" {
		t.Errorf("DisplayName(xx) = %q", got)
	}
}
