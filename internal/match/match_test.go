package match_test

import (
	"testing"

	"trailgrab/internal/match"
)

func TestScoreExactTitle(t *testing.T) {
	got := match.Score("Spider-Man: No Way Home", "spiderman no way home", 0, 0, false)
	if got != 200 {
		t.Fatalf("score = %d, want 200", got)
	}
}

func TestScoreExactTitleAndYear(t *testing.T) {
	got := match.Score("TRON: Ares", "Tron Ares", 2025, 2025, false)
	if got != 230 {
		t.Fatalf("score = %d, want 230", got)
	}
}

func TestScoreContainment(t *testing.T) {
	got := match.Score("TRON: Ares — Official Trailer", "TRON: Ares", 0, 0, false)
	if got != 150 {
		t.Fatalf("score = %d, want 150", got)
	}
}

func TestScorePartialWordContainment(t *testing.T) {
	// Containment is substring-level on the normalized titles, so a
	// pluralized candidate still scores as containing the search title.
	got := match.Score("Aliens", "Alien", 0, 0, false)
	if got != 150 {
		t.Fatalf("score = %d, want 150", got)
	}
}

func TestScoreWordOverlap(t *testing.T) {
	// "the last stand" vs "last stand rising": overlap 2, sets of 3, pct 2/3.
	got := match.Score("The Last Stand", "Last Stand Rising", 0, 0, false)
	if got != 66 {
		t.Fatalf("score = %d, want 66", got)
	}
}

func TestScoreLowOverlapIsZero(t *testing.T) {
	got := match.Score("Completely Different Film", "Another Unrelated Title", 0, 0, false)
	if got != 0 {
		t.Fatalf("score = %d, want 0", got)
	}
}

func TestScoreYearAdjustments(t *testing.T) {
	tests := []struct {
		name          string
		candidateYear int
		searchYear    int
		want          int
	}{
		{"same year", 2020, 2020, 230},
		{"off by one", 2021, 2020, 215},
		{"off by two", 2022, 2020, 205},
		{"off by four", 2024, 2020, 200},
		{"off by six", 2026, 2020, 150},
		{"candidate year unknown", 0, 2020, 200},
		{"search year unknown", 2020, 0, 200},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := match.Score("Dune", "Dune", tc.candidateYear, tc.searchYear, false)
			if got != tc.want {
				t.Fatalf("score = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestScorePreviewBonus(t *testing.T) {
	without := match.Score("Dune", "Dune", 2021, 2021, false)
	with := match.Score("Dune", "Dune", 2021, 2021, true)
	if with-without != 5 {
		t.Fatalf("preview bonus = %d, want 5", with-without)
	}
}

func TestScoreEmptyTitles(t *testing.T) {
	if got := match.Score("", "Dune", 0, 0, false); got != 0 {
		t.Fatalf("score = %d, want 0", got)
	}
	if got := match.Score("Dune", "", 0, 0, false); got != 0 {
		t.Fatalf("score = %d, want 0", got)
	}
}

func TestAccept(t *testing.T) {
	if !match.Accept(50, 50) {
		t.Fatal("score at threshold must be accepted")
	}
	if match.Accept(49, 50) {
		t.Fatal("score below threshold must be rejected")
	}
	if !match.Accept(60, 0) {
		t.Fatal("zero threshold must fall back to the default")
	}
	if match.Accept(49, 0) {
		t.Fatal("default threshold is 50")
	}
}
