package engine

import "testing"

func TestLevelEncoding(t *testing.T) {
	for code := 0; code <= 25; code++ {
		if got := DecodeLevel(EncodeLevel(code)); got != code {
			t.Errorf("DecodeLevel(EncodeLevel(%d)) = %d", code, got)
		}
	}
	if got := DecodeLevel(27); got != 2 {
		t.Errorf("DecodeLevel(27) = %d, want 2", got)
	}
	if got := DecodeLevel(-10); got != -1 {
		t.Errorf("DecodeLevel(-10) = %d, want -1", got)
	}
}

func TestMainLevel(t *testing.T) {
	tests := []struct {
		power bool
		mode  string
		want  int
	}{
		{true, ModePause, 10},
		{true, ModePlay, 20},
		{true, ModeStop, 30},
		{true, "", 0},
		{false, ModePlay, 0},
		{false, ModePause, 0},
	}
	for _, tt := range tests {
		if got := MainLevel(tt.power, tt.mode); got != tt.want {
			t.Errorf("MainLevel(%v, %q) = %d, want %d", tt.power, tt.mode, got, tt.want)
		}
	}
}
