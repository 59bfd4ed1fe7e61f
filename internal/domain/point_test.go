package domain

import (
	"errors"
	"testing"
)

func TestDistance(t *testing.T) {
	if d := Distance(Point{0, 0}, Point{3, 4}); d != 5 {
		t.Fatalf("distance = %v, want 5", d)
	}
	if d := Distance(Point{-2, 7}, Point{-2, 7}); d != 0 {
		t.Fatalf("distance = %v, want 0", d)
	}
}

func TestParsePoint(t *testing.T) {
	tests := []struct {
		in   string
		want Point
	}{
		{"(1,2)", Point{1, 2}},
		{"(-50.1,80.0)", Point{-50.1, 80}},
		{"3.5,-4", Point{3.5, -4}},
		{" ( 0 , 10 ) ", Point{0, 10}},
	}

	for _, tc := range tests {
		got, err := ParsePoint(tc.in)
		if err != nil {
			t.Fatalf("ParsePoint(%q): unexpected error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParsePoint(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParsePointMalformed(t *testing.T) {
	for _, in := range []string{"", "()", "(1)", "(1,2,3)", "(a,2)", "(1,b)", "(NaN,1)", "(1,Inf)"} {
		if _, err := ParsePoint(in); !errors.Is(err, ErrMalformedPoint) {
			t.Errorf("ParsePoint(%q) err = %v, want ErrMalformedPoint", in, err)
		}
	}
}

func TestValidateLoadsDuplicate(t *testing.T) {
	loads := []Load{{ID: 1}, {ID: 2}, {ID: 1}}
	if err := ValidateLoads(loads); !errors.Is(err, ErrDuplicateLoad) {
		t.Fatalf("err = %v, want ErrDuplicateLoad", err)
	}
	if err := ValidateLoads(loads[:2]); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
