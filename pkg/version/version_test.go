package version

import (
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    Version
		wantErr bool
	}{
		{"0.8.20", Version{0, 8, 20}, false},
		{"0.8.0", Version{0, 8, 0}, false},
		{"0.8", Version{0, 8, 0}, false},
		{"1.0.0", Version{1, 0, 0}, false},
		{"invalid", Version{}, true},
		{"0.8.20.1", Version{}, true},
		{"a.b.c", Version{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestVersionCompare(t *testing.T) {
	tests := []struct {
		v1, v2 Version
		want   int
	}{
		{Version{0, 8, 0}, Version{0, 8, 0}, 0},
		{Version{0, 8, 0}, Version{0, 8, 1}, -1},
		{Version{0, 8, 1}, Version{0, 8, 0}, 1},
		{Version{0, 7, 0}, Version{0, 8, 0}, -1},
		{Version{0, 9, 0}, Version{0, 8, 0}, 1},
		{Version{0, 8, 0}, Version{1, 0, 0}, -1},
		{Version{1, 0, 0}, Version{0, 8, 0}, 1},
	}

	for _, tt := range tests {
		got := tt.v1.Compare(tt.v2)
		if got != tt.want {
			t.Errorf("(%v).Compare(%v) = %d, want %d", tt.v1, tt.v2, got, tt.want)
		}
	}
}

func TestVersionComparisons(t *testing.T) {
	v1 := Version{0, 8, 0}
	v2 := Version{0, 8, 20}
	v3 := Version{0, 8, 0}

	if !v1.LessThan(v2) {
		t.Errorf("%v should be less than %v", v1, v2)
	}
	if !v2.GreaterThan(v1) {
		t.Errorf("%v should be greater than %v", v2, v1)
	}
	if !v1.Equal(v3) {
		t.Errorf("%v should equal %v", v1, v3)
	}
	if !v1.LessThanOrEqual(v2) {
		t.Errorf("%v should be <= %v", v1, v2)
	}
	if !v1.LessThanOrEqual(v3) {
		t.Errorf("%v should be <= %v", v1, v3)
	}
	if !v2.GreaterThanOrEqual(v1) {
		t.Errorf("%v should be >= %v", v2, v1)
	}
	if !v1.GreaterThanOrEqual(v3) {
		t.Errorf("%v should be >= %v", v1, v3)
	}
}

func TestVersionString(t *testing.T) {
	v := Version{0, 8, 20}
	if v.String() != "0.8.20" {
		t.Errorf("String() = %q, want %q", v.String(), "0.8.20")
	}
}

func TestVersionIsZero(t *testing.T) {
	zero := Version{}
	nonZero := Version{0, 8, 0}

	if !zero.IsZero() {
		t.Error("zero version should be zero")
	}
	if nonZero.IsZero() {
		t.Error("non-zero version should not be zero")
	}
}

func TestNew(t *testing.T) {
	v := New(0, 8, 20)
	if v.Major != 0 || v.Minor != 8 || v.Patch != 20 {
		t.Errorf("New(0, 8, 20) = %v", v)
	}
}

func TestMustParse(t *testing.T) {
	v := MustParse("0.8.20")
	if v.String() != "0.8.20" {
		t.Errorf("MustParse failed")
	}

	defer func() {
		if r := recover(); r == nil {
			t.Error("MustParse should panic on invalid input")
		}
	}()
	MustParse("invalid")
}

func TestVersionSatisfies(t *testing.T) {
	tests := []struct {
		v, min Version
		want   bool
	}{
		{Version{0, 3, 0}, Version{0, 2, 0}, true},
		{Version{0, 2, 0}, Version{0, 2, 0}, true},
		{Version{0, 1, 9}, Version{0, 2, 0}, false},
	}

	for _, tt := range tests {
		if got := tt.v.Satisfies(tt.min); got != tt.want {
			t.Errorf("(%v).Satisfies(%v) = %v, want %v", tt.v, tt.min, got, tt.want)
		}
	}
}
