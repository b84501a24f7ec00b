// Package audio plays synthesized WAV clips on the local audio device
// using oto/v3.
package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/dgnsrekt/voxgate/tts/wave"
)

// Player holds an audio device context for one PCM format. The oto
// context cannot be torn down, so a Player is created once per process.
type Player struct {
	ctx      *oto.Context
	rate     int
	channels int
	width    int
}

// NewPlayer opens the audio device for 16-bit little-endian PCM at the
// given rate and channel count.
func NewPlayer(rate, channels int) (*Player, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", rate)
	}
	if channels != 1 && channels != 2 {
		return nil, fmt.Errorf("channels must be 1 or 2, got %d", channels)
	}

	op := &oto.NewContextOptions{
		SampleRate:   rate,
		ChannelCount: channels,
		Format:       oto.FormatSignedInt16LE,
	}
	otoCtx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("opening audio device: %w", err)
	}
	<-ready

	return &Player{ctx: otoCtx, rate: rate, channels: channels, width: 2}, nil
}

// Play blocks until the PCM clip finishes or ctx is canceled. The data
// is copied so the caller's buffer can be reused immediately.
func (p *Player) Play(ctx context.Context, pcm []byte) error {
	if len(pcm) == 0 {
		return errors.New("no audio data")
	}

	// The reader's backing slice must outlive playback.
	data := make([]byte, len(pcm))
	copy(data, pcm)

	player := p.ctx.NewPlayer(bytes.NewReader(data))
	defer player.Close()
	player.Play()

	frames := len(data) / (p.width * p.channels)
	duration := time.Duration(float64(frames) / float64(p.rate) * float64(time.Second))
	deadline := time.NewTimer(duration + time.Second)
	defer deadline.Stop()

	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			player.Pause()
			return ctx.Err()
		case <-deadline.C:
			return nil
		case <-tick.C:
			if !player.IsPlaying() {
				return nil
			}
		}
	}
}

// PlayWAV decodes a complete WAV and plays it, opening the device with
// the clip's own format.
func PlayWAV(ctx context.Context, wavBytes []byte) error {
	seg, err := wave.Decode(wavBytes)
	if err != nil {
		return fmt.Errorf("decoding wav: %w", err)
	}
	if seg.Width != 2 {
		return fmt.Errorf("unsupported sample width %d", seg.Width)
	}

	player, err := NewPlayer(seg.Rate, seg.Channels)
	if err != nil {
		return err
	}
	return player.Play(ctx, seg.Data)
}
