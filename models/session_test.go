package models

import "testing"

func TestClassifyPerformance(t *testing.T) {
	tests := []struct {
		name     string
		score    int
		total    int
		expected PerformanceLevel
	}{
		{name: "perfect score", score: 5, total: 5, expected: LevelAdvanced},
		{name: "exactly eighty percent", score: 4, total: 5, expected: LevelAdvanced},
		{name: "just under eighty percent", score: 7, total: 9, expected: LevelIntermediate},
		{name: "exactly fifty percent", score: 3, total: 6, expected: LevelIntermediate},
		{name: "just under fifty percent", score: 2, total: 5, expected: LevelBeginner},
		{name: "zero score", score: 0, total: 5, expected: LevelBeginner},
		{name: "zero total", score: 0, total: 0, expected: LevelBeginner},
		{name: "negative total", score: 1, total: -1, expected: LevelBeginner},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyPerformance(tt.score, tt.total); got != tt.expected {
				t.Errorf("ClassifyPerformance(%d, %d) = %s, expected %s", tt.score, tt.total, got, tt.expected)
			}
		})
	}
}

func TestDifficultyFor(t *testing.T) {
	tests := []struct {
		level    PerformanceLevel
		expected Difficulty
	}{
		{level: LevelAdvanced, expected: DifficultyHard},
		{level: LevelIntermediate, expected: DifficultyMedium},
		{level: LevelBeginner, expected: DifficultyEasy},
		{level: PerformanceLevel("unknown"), expected: DifficultyEasy},
	}

	for _, tt := range tests {
		if got := tt.level.DifficultyFor(); got != tt.expected {
			t.Errorf("%s.DifficultyFor() = %s, expected %s", tt.level, got, tt.expected)
		}
	}
}

func TestDifficultyValid(t *testing.T) {
	valid := []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}
	for _, d := range valid {
		if !d.Valid() {
			t.Errorf("%s should be valid", d)
		}
	}

	invalid := []Difficulty{"", "EASY", "expert", "medium "}
	for _, d := range invalid {
		if d.Valid() {
			t.Errorf("%q should be invalid", d)
		}
	}
}

func TestNormalizeLanguage(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "en", expected: LanguageEn},
		{input: "hi", expected: LanguageHindi},
		{input: "auto", expected: LanguageAuto},
		{input: "", expected: LanguageAuto},
		{input: "fr", expected: LanguageAuto},
	}

	for _, tt := range tests {
		if got := NormalizeLanguage(tt.input); got != tt.expected {
			t.Errorf("NormalizeLanguage(%q) = %s, expected %s", tt.input, got, tt.expected)
		}
	}
}
