package glowspeak

import "math"

// Mel-spectrogram post-processing between the acoustic model and the
// vocoder. The acoustic model emits symmetrically normalized dB values;
// the vocoder expects log-compressed amplitudes.

const (
	melMaxNorm    = 1.0
	melRefLevelDB = 20.0
	melMinLevelDB = -100.0

	// compressionFloor keeps the log out of -Inf territory.
	compressionFloor = 1e-5
)

// denormalize pulls mel values out of [-maxNorm, maxNorm] back to dB.
func denormalize(mels []float32) {
	for i, v := range mels {
		x := float64(v)
		if x > melMaxNorm {
			x = melMaxNorm
		} else if x < -melMaxNorm {
			x = -melMaxNorm
		}
		x = ((x+melMaxNorm)*-melMinLevelDB)/(2*melMaxNorm) + melMinLevelDB
		mels[i] = float32(x + melRefLevelDB)
	}
}

// dbToAmp converts decibel values to linear amplitude.
func dbToAmp(mels []float32) {
	for i, v := range mels {
		mels[i] = float32(math.Pow(10.0, float64(v)/1.0))
	}
}

// dynamicRangeCompression applies the log compression the vocoder was
// trained with.
func dynamicRangeCompression(mels []float32) {
	for i, v := range mels {
		x := float64(v)
		if x < compressionFloor {
			x = compressionFloor
		}
		mels[i] = float32(math.Log(x))
	}
}

// prepareMels runs the full chain in place.
func prepareMels(mels []float32) {
	denormalize(mels)
	dbToAmp(mels)
	dynamicRangeCompression(mels)
}

// floatToInt16 normalizes float audio to int16 range. Peak values below
// 0.01 are not boosted, so silence stays silent.
func floatToInt16(audio []float32) []int16 {
	const maxWav = 32767.0

	peak := 0.01
	for _, v := range audio {
		if a := math.Abs(float64(v)); a > peak {
			peak = a
		}
	}

	scale := maxWav / peak
	out := make([]int16, len(audio))
	for i, v := range audio {
		x := float64(v) * scale
		if x > maxWav {
			x = maxWav
		} else if x < -maxWav {
			x = -maxWav
		}
		out[i] = int16(x)
	}
	return out
}
