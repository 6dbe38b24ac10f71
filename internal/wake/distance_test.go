package wake

import "testing"

func TestBoundedDistance(t *testing.T) {
	tests := []struct {
		a, b   string
		limit  int
		want   int
		wantOK bool
	}{
		{"ardomis", "ardomis", 2, 0, true},
		{"ardomus", "ardomis", 2, 1, true},
		{"ardmis", "ardomis", 2, 1, true},
		{"artomiss", "ardomis", 2, 2, true},
		{"banana", "ardomis", 2, 0, false},
		{"a", "ardomisxyz", 2, 0, false},
		{"", "ab", 2, 2, true},
		{"abc", "", 2, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			got, ok := boundedDistance(tt.a, tt.b, tt.limit, 4)
			if ok != tt.wantOK {
				t.Fatalf("boundedDistance(%q, %q) ok = %v, want %v", tt.a, tt.b, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("boundedDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestBoundedDistanceLengthGap(t *testing.T) {
	if _, ok := boundedDistance("ab", "abcdefgh", 10, 4); ok {
		t.Error("length gap beyond maxGap must reject without computing")
	}
	if d, ok := boundedDistance("ab", "abcdef", 10, 4); !ok || d != 4 {
		t.Errorf("gap of exactly 4 should compute, got %d %v", d, ok)
	}
}
