package glowspeak

import (
	"math"
	"math/cmplx"
	"testing"
)

func TestDenormalizeRange(t *testing.T) {
	mels := []float32{-1, 0, 1}
	denormalize(mels)

	// -1 maps to min dB plus the reference level, +1 to the reference
	// level itself.
	want := []float32{-80, -30, 20}
	for i := range mels {
		if math.Abs(float64(mels[i]-want[i])) > 1e-4 {
			t.Errorf("denormalize[%d] = %v, want %v", i, mels[i], want[i])
		}
	}
}

func TestDenormalizeClips(t *testing.T) {
	a := []float32{5}
	b := []float32{1}
	denormalize(a)
	denormalize(b)
	if a[0] != b[0] {
		t.Errorf("values above max norm should clip: %v vs %v", a[0], b[0])
	}
}

func TestDBToAmp(t *testing.T) {
	mels := []float32{0, 2}
	dbToAmp(mels)
	if mels[0] != 1 {
		t.Errorf("0 dB should be amplitude 1, got %v", mels[0])
	}
	if math.Abs(float64(mels[1])-100) > 1e-3 {
		t.Errorf("2 dB units = 10^2 = 100, got %v", mels[1])
	}
}

func TestDynamicRangeCompressionFloor(t *testing.T) {
	mels := []float32{0, 1}
	dynamicRangeCompression(mels)
	if math.IsInf(float64(mels[0]), -1) {
		t.Error("zero input must be floored, not -Inf")
	}
	if mels[1] != 0 {
		t.Errorf("log(1) = 0, got %v", mels[1])
	}
}

func TestFloatToInt16Scaling(t *testing.T) {
	samples := floatToInt16([]float32{0.5, -0.5, 0.25})
	if samples[0] != 32767 {
		t.Errorf("peak should scale to full range, got %d", samples[0])
	}
	if samples[1] != -32767 {
		t.Errorf("negative peak: got %d", samples[1])
	}
	if got := samples[2]; got < 16000 || got > 16500 {
		t.Errorf("half peak out of range: %d", got)
	}
}

func TestFloatToInt16SilenceStaysQuiet(t *testing.T) {
	samples := floatToInt16([]float32{0.0001, -0.0001})
	for _, s := range samples {
		if s > 400 || s < -400 {
			t.Errorf("near-silence boosted to %d", s)
		}
	}
}

func TestFFTKnownSpectrum(t *testing.T) {
	// A pure cosine at bin 8 should concentrate energy there.
	const n = 1024
	x := make([]complex128, n)
	for i := range x {
		x[i] = complex(math.Cos(2*math.Pi*8*float64(i)/n), 0)
	}
	bins := fft(x)

	if mag := cmplx.Abs(bins[8]); math.Abs(mag-n/2) > 1e-6 {
		t.Errorf("bin 8 magnitude = %v, want %v", mag, float64(n)/2)
	}
	if mag := cmplx.Abs(bins[3]); mag > 1e-6 {
		t.Errorf("bin 3 should be empty, got %v", mag)
	}
}

func TestIFFTInvertsFFT(t *testing.T) {
	const n = 64
	x := make([]complex128, n)
	for i := range x {
		x[i] = complex(math.Sin(float64(i)*0.37), 0)
	}
	back := ifft(fft(x))
	for i := range x {
		if math.Abs(real(back[i])-real(x[i])) > 1e-9 {
			t.Fatalf("sample %d: %v != %v", i, real(back[i]), real(x[i]))
		}
	}
}

func TestSTFTRoundTripPreservesTone(t *testing.T) {
	// Overlap-add with a Hann window reconstructs the interior of the
	// signal up to a constant gain.
	n := fftSize * 8
	x := make([]float64, n)
	for i := range x {
		x[i] = math.Sin(2 * math.Pi * 440 * float64(i) / 22050)
	}

	y := istft(stft(x))

	// Estimate the gain on a mid-signal window and check shape there.
	start, end := fftSize*2, fftSize*4
	var num, den float64
	for i := start; i < end; i++ {
		num += y[i] * x[i]
		den += x[i] * x[i]
	}
	gain := num / den
	if gain <= 0 {
		t.Fatalf("degenerate gain %v", gain)
	}
	for i := start; i < end; i++ {
		if math.Abs(y[i]/gain-x[i]) > 0.05 {
			t.Fatalf("sample %d deviates: %v vs %v", i, y[i]/gain, x[i])
		}
	}
}

func TestDenoiseZeroStrengthPassthrough(t *testing.T) {
	audio := []float32{0.1, 0.2, 0.3}
	out := denoise(audio, []float64{1, 2, 3}, 0)
	for i := range audio {
		if out[i] != audio[i] {
			t.Fatal("zero strength must not touch audio")
		}
	}
}

func TestDenoiseReducesBiasEnergy(t *testing.T) {
	// A tone plus nothing else: subtracting its own spectrum as bias
	// should lower the output energy.
	n := fftSize * 6
	audio := make([]float32, n)
	x := make([]float64, n)
	for i := range audio {
		v := 0.5 * math.Sin(2*math.Pi*1000*float64(i)/22050)
		audio[i] = float32(v)
		x[i] = v
	}

	spec := stft(x)
	bias := make([]float64, nBins)
	copy(bias, spec.mag[1])

	out := denoise(audio, bias, 1.0)

	var before, after float64
	for i := fftSize; i < n-fftSize; i++ {
		before += float64(audio[i]) * float64(audio[i])
		after += float64(out[i]) * float64(out[i])
	}
	if after >= before {
		t.Errorf("denoise did not reduce energy: %v >= %v", after, before)
	}
}
