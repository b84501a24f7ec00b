package glowspeak

// Spectral-subtraction denoiser. The vocoder has a characteristic hum
// it produces even for an all-zero mel input; capturing that output's
// spectrum once gives a bias that can be subtracted from real audio.

// biasFrames is the synthetic mel length used to capture the hum.
const biasFrames = 88

// biasFromAudio extracts the per-bin bias magnitudes from the audio
// the vocoder produced for a zero mel input. Only the first frame is
// kept.
func biasFromAudio(biasAudio []float32) []float64 {
	x := make([]float64, len(biasAudio))
	for i, v := range biasAudio {
		x[i] = float64(v)
	}

	spec := stft(x)
	if len(spec.mag) == 0 {
		return nil
	}
	bias := make([]float64, nBins)
	copy(bias, spec.mag[0])
	return bias
}

// denoise subtracts the scaled bias from the magnitude spectrum of
// audio, clipping at zero, and resynthesizes with the original phase.
func denoise(audio []float32, bias []float64, strength float64) []float32 {
	if strength <= 0 || len(bias) == 0 {
		return audio
	}

	x := make([]float64, len(audio))
	for i, v := range audio {
		x[i] = float64(v)
	}

	spec := stft(x)
	for _, frame := range spec.mag {
		for k := range frame {
			frame[k] -= bias[k] * strength
			if frame[k] < 0 {
				frame[k] = 0
			}
		}
	}

	clean := istft(spec)
	out := make([]float32, len(audio))
	for i := range out {
		if i < len(clean) {
			out[i] = float32(clean[i])
		}
	}
	return out
}
