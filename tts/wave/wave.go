package wave

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Errors returned by decoding and assembly.
var (
	ErrNotWAV      = errors.New("data is not a valid WAV file")
	ErrNoSegments  = errors.New("no segments to assemble")
	ErrEmptyFrames = errors.New("segment contains no frames")
)

// Segment is the canonical in-memory audio form: raw little-endian PCM
// frames plus the triple that describes them.
type Segment struct {
	Data     []byte // interleaved PCM frames
	Rate     int    // sample rate in Hz
	Width    int    // bytes per sample
	Channels int
}

// Duration returns the playback time of the segment.
func (s Segment) Duration() time.Duration {
	if s.Rate == 0 || s.Width == 0 || s.Channels == 0 {
		return 0
	}
	frames := len(s.Data) / (s.Width * s.Channels)
	return time.Duration(float64(frames) / float64(s.Rate) * float64(time.Second))
}

// Decode parses a WAV file into a canonical segment.
func Decode(data []byte) (Segment, error) {
	decoder := wav.NewDecoder(bytes.NewReader(data))
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return Segment{}, fmt.Errorf("%w: %v", ErrNotWAV, err)
	}
	if buf == nil || len(buf.Data) == 0 {
		return Segment{}, ErrEmptyFrames
	}

	width := int(decoder.BitDepth) / 8
	if width == 0 {
		width = 2
	}
	if width == 1 {
		centerUnsigned8(buf)
	}
	seg := Segment{
		Rate:     buf.Format.SampleRate,
		Width:    width,
		Channels: buf.Format.NumChannels,
	}
	seg.Data = samplesToBytes(buf.Data, width)
	return seg, nil
}

// centerUnsigned8 shifts 8-bit samples to signed. The decoder hands
// 8-bit PCM through as unsigned 0..255, while the rest of the package
// works with zero-centered values.
func centerUnsigned8(buf *audio.IntBuffer) {
	for i, v := range buf.Data {
		buf.Data[i] = v - 128
	}
}

// Encode renders the segment as a RIFF/WAVE file with a PCM fmt chunk.
func (s Segment) Encode() []byte {
	var b bytes.Buffer
	writeHeader(&b, len(s.Data), s.Rate, s.Width, s.Channels)
	b.Write(s.Data)
	return b.Bytes()
}

// Silence returns ceil(seconds * rate * width * channels) zero bytes,
// rounded up to a whole frame.
func Silence(d time.Duration, rate, width, channels int) []byte {
	seconds := d.Seconds()
	if seconds <= 0 {
		return nil
	}
	n := int(seconds * float64(rate) * float64(width) * float64(channels))
	if float64(n) < seconds*float64(rate)*float64(width)*float64(channels) {
		n++
	}
	frame := width * channels
	if rem := n % frame; rem != 0 {
		n += frame - rem
	}
	return make([]byte, n)
}

// samples unpacks the PCM frames into one int per sample.
func (s Segment) samples() []int {
	return bytesToSamples(s.Data, s.Width)
}

func bytesToSamples(data []byte, width int) []int {
	n := len(data) / width
	out := make([]int, n)
	for i := 0; i < n; i++ {
		switch width {
		case 1:
			// 8-bit WAV is unsigned; center it.
			out[i] = int(data[i]) - 128
		case 2:
			out[i] = int(int16(binary.LittleEndian.Uint16(data[i*2:])))
		case 3:
			v := int32(data[i*3]) | int32(data[i*3+1])<<8 | int32(data[i*3+2])<<16
			if v&0x800000 != 0 {
				v |= ^int32(0xffffff)
			}
			out[i] = int(v)
		case 4:
			out[i] = int(int32(binary.LittleEndian.Uint32(data[i*4:])))
		}
	}
	return out
}

func samplesToBytes(samples []int, width int) []byte {
	out := make([]byte, len(samples)*width)
	for i, v := range samples {
		switch width {
		case 1:
			out[i] = byte(v + 128)
		case 2:
			binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(v)))
		case 3:
			out[i*3] = byte(v)
			out[i*3+1] = byte(v >> 8)
			out[i*3+2] = byte(v >> 16)
		case 4:
			binary.LittleEndian.PutUint32(out[i*4:], uint32(int32(v)))
		}
	}
	return out
}

func writeHeader(b *bytes.Buffer, dataLen, rate, width, channels int) {
	byteRate := rate * channels * width
	blockAlign := channels * width

	b.WriteString("RIFF")
	binary.Write(b, binary.LittleEndian, uint32(36+dataLen)) //nolint:errcheck
	b.WriteString("WAVE")
	b.WriteString("fmt ")
	binary.Write(b, binary.LittleEndian, uint32(16))         //nolint:errcheck
	binary.Write(b, binary.LittleEndian, uint16(1))          //nolint:errcheck
	binary.Write(b, binary.LittleEndian, uint16(channels))   //nolint:errcheck
	binary.Write(b, binary.LittleEndian, uint32(rate))       //nolint:errcheck
	binary.Write(b, binary.LittleEndian, uint32(byteRate))   //nolint:errcheck
	binary.Write(b, binary.LittleEndian, uint16(blockAlign)) //nolint:errcheck
	binary.Write(b, binary.LittleEndian, uint16(width*8))    //nolint:errcheck
	b.WriteString("data")
	binary.Write(b, binary.LittleEndian, uint32(dataLen)) //nolint:errcheck
}

// FromInt16 wraps a mono int16 sample slice as a segment at the given
// rate.
func FromInt16(samples []int16, rate int) Segment {
	data := make([]byte, len(samples)*2)
	for i, v := range samples {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(v))
	}
	return Segment{Data: data, Rate: rate, Width: 2, Channels: 1}
}
