package wave

import "time"

// Assembler collects ordered segments and pause directives and
// concatenates them into one 16-bit mono waveform. The output rate is
// the maximum rate among the collected segments, so no segment is ever
// downsampled below its native rate.
type Assembler struct {
	items []assemblyItem
}

type assemblyItem struct {
	seg   *Segment
	pause time.Duration
}

// NewAssembler creates an empty assembler.
func NewAssembler() *Assembler {
	return &Assembler{}
}

// AddSegment appends a segment in input order.
func (a *Assembler) AddSegment(seg Segment) {
	a.items = append(a.items, assemblyItem{seg: &seg})
}

// AddPause appends a silence directive in input order. Zero and negative
// durations are ignored.
func (a *Assembler) AddPause(d time.Duration) {
	if d <= 0 {
		return
	}
	a.items = append(a.items, assemblyItem{pause: d})
}

// Len returns the number of collected items.
func (a *Assembler) Len() int {
	return len(a.items)
}

// Assemble produces the final segment. Silence is rendered at the output
// rate; mismatched segments are transcoded before concatenation.
func (a *Assembler) Assemble() (Segment, error) {
	rate := 0
	for _, item := range a.items {
		if item.seg != nil && item.seg.Rate > rate {
			rate = item.seg.Rate
		}
	}
	if rate == 0 {
		return Segment{}, ErrNoSegments
	}

	out := Segment{Rate: rate, Width: 2, Channels: 1}
	for _, item := range a.items {
		if item.seg != nil {
			converted := item.seg.ToMono16(rate)
			out.Data = append(out.Data, converted.Data...)
			continue
		}
		out.Data = append(out.Data, Silence(item.pause, rate, 2, 1)...)
	}
	return out, nil
}
