package glowspeak

import "math"

// Short-time Fourier transform used by the spectral-subtraction
// denoiser. Window and hop sizes are fixed to the values the vocoder
// bias spectrum was computed with.

const (
	fftSize = 1024
	hopSize = 256
)

// spectrogram holds magnitude and phase per frame, nBins values each.
type spectrogram struct {
	mag   [][]float64
	phase [][]float64
}

const nBins = fftSize/2 + 1

// hannWindow matches the symmetric cosine window of the training code.
func hannWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return w
}

// stft computes the windowed spectrogram of x. Frames advance by
// hopSize; trailing samples that do not fill a window are dropped.
func stft(x []float64) spectrogram {
	window := hannWindow(fftSize)

	var spec spectrogram
	buf := make([]complex128, fftSize)
	for i := 0; i+fftSize < len(x); i += hopSize {
		for j := 0; j < fftSize; j++ {
			buf[j] = complex(window[j]*x[i+j], 0)
		}
		bins := fft(buf)

		mag := make([]float64, nBins)
		phase := make([]float64, nBins)
		for k := 0; k < nBins; k++ {
			re, im := real(bins[k]), imag(bins[k])
			mag[k] = math.Hypot(re, im)
			phase[k] = math.Atan2(im, re)
		}
		spec.mag = append(spec.mag, mag)
		spec.phase = append(spec.phase, phase)
	}
	return spec
}

// istft reconstructs a time-domain signal by windowed overlap-add.
func istft(spec spectrogram) []float64 {
	window := hannWindow(fftSize)
	frames := len(spec.mag)
	out := make([]float64, frames*hopSize+fftSize)

	full := make([]complex128, fftSize)
	for n := 0; n < frames; n++ {
		// Rebuild the full hermitian spectrum from the real-input bins.
		for k := 0; k < nBins; k++ {
			m, p := spec.mag[n][k], spec.phase[n][k]
			full[k] = complex(m*math.Cos(p), m*math.Sin(p))
		}
		for k := nBins; k < fftSize; k++ {
			c := full[fftSize-k]
			full[k] = complex(real(c), -imag(c))
		}

		frame := ifft(full)
		offset := n * hopSize
		for j := 0; j < fftSize; j++ {
			out[offset+j] += window[j] * real(frame[j])
		}
	}
	return out
}

// fft is an iterative radix-2 Cooley-Tukey transform. len(x) must be a
// power of two; fftSize satisfies that.
func fft(x []complex128) []complex128 {
	n := len(x)
	out := make([]complex128, n)
	copy(out, x)

	// Bit-reversal permutation.
	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j |= bit
		if i < j {
			out[i], out[j] = out[j], out[i]
		}
	}

	for size := 2; size <= n; size <<= 1 {
		angle := -2 * math.Pi / float64(size)
		wStep := complex(math.Cos(angle), math.Sin(angle))
		for start := 0; start < n; start += size {
			w := complex(1, 0)
			for k := 0; k < size/2; k++ {
				even := out[start+k]
				odd := out[start+k+size/2] * w
				out[start+k] = even + odd
				out[start+k+size/2] = even - odd
				w *= wStep
			}
		}
	}
	return out
}

// ifft inverts fft via conjugation, including the 1/n scale.
func ifft(x []complex128) []complex128 {
	n := len(x)
	conj := make([]complex128, n)
	for i, v := range x {
		conj[i] = complex(real(v), -imag(v))
	}
	out := fft(conj)
	for i, v := range out {
		out[i] = complex(real(v)/float64(n), -imag(v)/float64(n))
	}
	return out
}
