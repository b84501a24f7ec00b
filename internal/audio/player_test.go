package audio

import (
	"context"
	"testing"
)

func TestNewPlayerRejectsBadFormat(t *testing.T) {
	tests := []struct {
		name     string
		rate     int
		channels int
	}{
		{"zero rate", 0, 1},
		{"negative rate", -22050, 1},
		{"zero channels", 22050, 0},
		{"too many channels", 22050, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewPlayer(tt.rate, tt.channels); err == nil {
				t.Errorf("NewPlayer(%d, %d) succeeded, want error", tt.rate, tt.channels)
			}
		})
	}
}

func TestPlayWAVRejectsGarbage(t *testing.T) {
	err := PlayWAV(context.Background(), []byte("not a wav"))
	if err == nil {
		t.Fatal("PlayWAV accepted garbage input")
	}
}
