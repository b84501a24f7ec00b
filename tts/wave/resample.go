package wave

// downmix averages interleaved channels into one.
func downmix(samples []int, channels int) []int {
	if channels <= 1 {
		return samples
	}
	frames := len(samples) / channels
	out := make([]int, frames)
	for i := 0; i < frames; i++ {
		sum := 0
		for c := 0; c < channels; c++ {
			sum += samples[i*channels+c]
		}
		out[i] = sum / channels
	}
	return out
}

// rescaleWidth converts sample values between bit depths.
func rescaleWidth(samples []int, from, to int) []int {
	if from == to {
		return samples
	}
	shift := (to - from) * 8
	out := make([]int, len(samples))
	for i, v := range samples {
		if shift > 0 {
			out[i] = v << shift
		} else {
			out[i] = v >> -shift
		}
	}
	return out
}

// resampleLinear converts mono samples from one rate to another using
// linear interpolation between neighboring source samples.
func resampleLinear(samples []int, fromRate, toRate int) []int {
	if fromRate == toRate || len(samples) == 0 {
		return samples
	}
	ratio := float64(fromRate) / float64(toRate)
	n := int(float64(len(samples)) / ratio)
	out := make([]int, n)
	for i := 0; i < n; i++ {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx >= len(samples)-1 {
			out[i] = samples[len(samples)-1]
			continue
		}
		frac := pos - float64(idx)
		a := float64(samples[idx])
		b := float64(samples[idx+1])
		out[i] = int(a + (b-a)*frac)
	}
	return out
}

// ToMono16 transcodes the segment to 16-bit mono at the target rate.
// Segments already in the target form are returned unchanged.
func (s Segment) ToMono16(rate int) Segment {
	if s.Rate == rate && s.Width == 2 && s.Channels == 1 {
		return s
	}
	samples := s.samples()
	samples = downmix(samples, s.Channels)
	samples = rescaleWidth(samples, s.Width, 2)
	samples = resampleLinear(samples, s.Rate, rate)
	for i, v := range samples {
		if v > 32767 {
			samples[i] = 32767
		} else if v < -32768 {
			samples[i] = -32768
		}
	}
	return Segment{
		Data:     samplesToBytes(samples, 2),
		Rate:     rate,
		Width:    2,
		Channels: 1,
	}
}
