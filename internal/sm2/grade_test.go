package sm2

import (
	"errors"
	"testing"
)

func TestParseGrade(t *testing.T) {
	testCases := []struct {
		input   string
		want    Grade
		wantErr bool
	}{
		{"0", Blackout, false},
		{" 3 ", Hard, false},
		{"5", Perfect, false},
		{"6", 0, true},
		{"-1", 0, true},
		{"2.5", 0, true},
		{"good", 0, true},
		{"", 0, true},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseGrade(tc.input)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidGrade) {
					t.Errorf("Expected ErrInvalidGrade, but got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseGrade() returned an unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("Expected %d, but got %d", tc.want, got)
			}
		})
	}
}

func TestGradePassed(t *testing.T) {
	for _, g := range Grades() {
		if want := g >= 3; g.Passed() != want {
			t.Errorf("grade %d: Expected Passed() = %t", g, want)
		}
		if g.Description() == "" {
			t.Errorf("grade %d: Expected a description", g)
		}
	}
	if Grade(9).Description() != "" {
		t.Error("Expected no description for an invalid grade")
	}
}
