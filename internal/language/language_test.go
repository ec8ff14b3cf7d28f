package language

import (
	"reflect"
	"testing"
)

func TestMatches(t *testing.T) {
	tests := []struct {
		track  string
		filter string
		want   bool
	}{
		{"eng", "English", true},
		{"en", "eng", true},
		{"English", "english", true},
		{"jpn", "Japanese", true},
		{"fre", "fra", true},
		{"ger", "German", true},
		{"eng", "Japanese", false},
		{"", "English", false},
		{"eng", "", false},
		// Unrecognized values still match literally, case-insensitive.
		{"tlh", "TLH", true},
		{"tlh", "Klingon", false},
	}
	for _, tt := range tests {
		if got := Matches(tt.track, tt.filter); got != tt.want {
			t.Errorf("Matches(%q, %q) = %v, want %v", tt.track, tt.filter, got, tt.want)
		}
	}
}

func TestMatchesAny(t *testing.T) {
	filters := []string{"English", "Arabic"}
	if !MatchesAny("eng", filters) {
		t.Error("expected eng to match English filter")
	}
	if !MatchesAny("ara", filters) {
		t.Error("expected ara to match Arabic filter")
	}
	if MatchesAny("jpn", filters) {
		t.Error("did not expect jpn to match")
	}
	if MatchesAny("eng", nil) {
		t.Error("empty filter list must match nothing")
	}
}

func TestToISO2(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en", "en"},
		{"EN", "en"},
		{"eng", "en"},
		{"fre", "fr"},
		{"fra", "fr"},
		{"ger", "de"},
		{"chi", "zh"},
		{"english", "en"},
		{"xx", "xx"},
		{"xyz", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ToISO2(tt.input); got != tt.expected {
			t.Errorf("ToISO2(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestToISO3(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en", "eng"},
		{"fr", "fra"},
		{"fre", "fra"},
		{"dut", "nld"},
		{"xyz", "xyz"},
		{"xx", "und"},
		{"", "und"},
	}
	for _, tt := range tests {
		if got := ToISO3(tt.input); got != tt.expected {
			t.Errorf("ToISO3(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName("eng"); got != "English" {
		t.Errorf("DisplayName(eng) = %q", got)
	}
	if got := DisplayName(""); got != "Unknown" {
		t.Errorf("DisplayName(empty) = %q", got)
	}
	if got := DisplayName("xyz"); got != "XYZ" {
		t.Errorf("DisplayName(xyz) = %q", got)
	}
}

func TestNormalizeList(t *testing.T) {
	got := NormalizeList([]string{" English ", "english", "", "Arabic", "ARABIC", "jpn"})
	want := []string{"English", "Arabic", "jpn"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeList = %v, want %v", got, want)
	}
	if NormalizeList(nil) != nil {
		t.Error("expected nil for empty input")
	}
}
