package wave

import (
	"bytes"
	"testing"
	"time"
)

// tone builds a mono segment with a repeating sample value so segment
// boundaries are observable after assembly.
func tone(value int16, frames, rate int) Segment {
	samples := make([]int16, frames)
	for i := range samples {
		samples[i] = value
	}
	return FromInt16(samples, rate)
}

func TestSilenceByteLength(t *testing.T) {
	tests := []struct {
		name     string
		d        time.Duration
		rate     int
		width    int
		channels int
		want     int
	}{
		{"half second mono 16-bit", 500 * time.Millisecond, 22050, 2, 1, 22050},
		{"one second mono 16-bit", time.Second, 8000, 2, 1, 16000},
		{"stereo", 250 * time.Millisecond, 16000, 2, 2, 16000},
		{"zero", 0, 22050, 2, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Silence(tt.d, tt.rate, tt.width, tt.channels)
			if len(got) != tt.want {
				t.Errorf("Silence() = %d bytes, want %d", len(got), tt.want)
			}
			for _, b := range got {
				if b != 0 {
					t.Fatal("silence must be all zero bytes")
				}
			}
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	seg := tone(1000, 800, 8000)
	encoded := seg.Encode()

	if !bytes.HasPrefix(encoded, []byte("RIFF")) {
		t.Fatal("encoded data missing RIFF magic")
	}

	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if decoded.Rate != 8000 || decoded.Width != 2 || decoded.Channels != 1 {
		t.Errorf("decoded format = (%d, %d, %d), want (8000, 2, 1)",
			decoded.Rate, decoded.Width, decoded.Channels)
	}
	if !bytes.Equal(decoded.Data, seg.Data) {
		t.Error("decoded frames differ from original")
	}
}

func TestDecodeUnsigned8Bit(t *testing.T) {
	// 8-bit WAV stores unsigned samples: 0x80 is digital silence.
	data := make([]byte, 400)
	for i := range data {
		data[i] = 0x80
	}
	encoded := Segment{Data: data, Rate: 8000, Width: 1, Channels: 1}.Encode()

	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if decoded.Width != 1 {
		t.Fatalf("decoded width = %d, want 1", decoded.Width)
	}

	mono := decoded.ToMono16(8000)
	for i, v := range mono.samples() {
		if v != 0 {
			t.Fatalf("sample %d = %d, want 0 (8-bit silence)", i, v)
		}
	}

	// A positive 8-bit value keeps its sign after widening.
	loud := Segment{Data: []byte{0xFF, 0x00}, Rate: 8000, Width: 1, Channels: 1}.Encode()
	decoded, err = Decode(loud)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	got := decoded.ToMono16(8000).samples()
	if len(got) != 2 || got[0] != 127<<8 || got[1] != -128<<8 {
		t.Errorf("widened samples = %v, want [%d %d]", got, 127<<8, -128<<8)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode([]byte("definitely not a wav file")); err == nil {
		t.Error("Decode() accepted garbage input")
	}
}

func TestAssembleOrdering(t *testing.T) {
	a := NewAssembler()
	a.AddSegment(tone(100, 10, 8000))
	a.AddSegment(tone(200, 10, 8000))
	a.AddSegment(tone(300, 10, 8000))

	out, err := a.Assemble()
	if err != nil {
		t.Fatalf("Assemble() error: %v", err)
	}

	samples := out.samples()
	if len(samples) != 30 {
		t.Fatalf("got %d samples, want 30", len(samples))
	}
	for i, want := range []int{100, 200, 300} {
		for j := 0; j < 10; j++ {
			if samples[i*10+j] != want {
				t.Fatalf("sample %d = %d, want %d (ordering broken)", i*10+j, samples[i*10+j], want)
			}
		}
	}
}

func TestAssembleSampleRatePromotion(t *testing.T) {
	a := NewAssembler()
	a.AddSegment(tone(500, 16000, 16000)) // 1s at 16kHz
	a.AddSegment(tone(500, 22050, 22050)) // 1s at 22.05kHz

	out, err := a.Assemble()
	if err != nil {
		t.Fatalf("Assemble() error: %v", err)
	}
	if out.Rate != 22050 {
		t.Errorf("output rate = %d, want 22050", out.Rate)
	}

	// Both one-second segments should contribute ~22050 frames each.
	frames := len(out.Data) / 2
	if frames < 43000 || frames > 45000 {
		t.Errorf("output frames = %d, want ~44100 (16kHz segment must be rescaled)", frames)
	}
}

func TestAssemblePauseInsertion(t *testing.T) {
	a := NewAssembler()
	a.AddSegment(tone(100, 100, 8000))
	a.AddPause(500 * time.Millisecond)
	a.AddSegment(tone(200, 100, 8000))

	out, err := a.Assemble()
	if err != nil {
		t.Fatalf("Assemble() error: %v", err)
	}

	wantSilence := 8000 // ceil(0.5 * 8000 * 2 * 1)
	wantTotal := 100*2 + wantSilence + 100*2
	if len(out.Data) != wantTotal {
		t.Errorf("output = %d bytes, want %d", len(out.Data), wantTotal)
	}

	// The pause region must be all zeros.
	for i := 200; i < 200+wantSilence; i++ {
		if out.Data[i] != 0 {
			t.Fatalf("byte %d in pause region is %d, want 0", i, out.Data[i])
		}
	}
}

func TestAssembleEmpty(t *testing.T) {
	if _, err := NewAssembler().Assemble(); err == nil {
		t.Error("Assemble() on empty input should fail")
	}
}

func TestToMono16Downmix(t *testing.T) {
	// Stereo frames with channel values 100/300 should average to 200.
	stereo := Segment{Rate: 8000, Width: 2, Channels: 2}
	samples := []int{100, 300, 100, 300}
	stereo.Data = samplesToBytes(samples, 2)

	mono := stereo.ToMono16(8000)
	if mono.Channels != 1 {
		t.Fatalf("channels = %d, want 1", mono.Channels)
	}
	for i, v := range mono.samples() {
		if v != 200 {
			t.Errorf("sample %d = %d, want 200", i, v)
		}
	}
}

func TestSegmentDuration(t *testing.T) {
	seg := tone(0, 8000, 8000)
	if d := seg.Duration(); d != time.Second {
		t.Errorf("Duration() = %v, want 1s", d)
	}
}
