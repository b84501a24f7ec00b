package tts

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/voxgate/internal/cache"
	"github.com/dgnsrekt/voxgate/tts/segment"
	"github.com/dgnsrekt/voxgate/tts/wave"
)

// Request is one synthesis call into the gateway.
type Request struct {
	Text    string
	Voice   string // voice string or language shorthand; Lang is used when empty
	Lang    string
	SSML    bool
	NoCache bool

	Options SynthesisOptions
}

// Synthesizer is the orchestrator: it resolves voices, segments input,
// dispatches units to engines in input order, assembles the output
// waveform and consults the result cache. It is safe for concurrent
// use; per-request state lives on the stack.
type Synthesizer struct {
	registry *Registry
	resolver *Resolver
	cache    Cache // nil disables caching
	logger   *log.Logger

	// Timeout bounds one whole request; zero means no deadline, which
	// matches the historical behavior of waiting on engines forever.
	Timeout time.Duration
}

// NewSynthesizer wires the orchestrator. cache may be nil.
func NewSynthesizer(registry *Registry, resolver *Resolver, c Cache, logger *log.Logger) *Synthesizer {
	if logger == nil {
		logger = log.Default()
	}
	return &Synthesizer{
		registry: registry,
		resolver: resolver,
		cache:    c,
		logger:   logger.With("component", "synthesizer"),
	}
}

// Resolver exposes the voice resolver for callers that only need
// resolution.
func (s *Synthesizer) Resolver() *Resolver {
	return s.resolver
}

// Voices lists the filtered catalog across all registered engines.
func (s *Synthesizer) Voices(ctx context.Context, filter VoiceFilter) ([]CatalogEntry, error) {
	return s.registry.Voices(ctx, filter)
}

// Languages lists the distinct language codes, optionally per engine.
func (s *Synthesizer) Languages(ctx context.Context, engine string) ([]string, error) {
	return s.registry.Languages(ctx, engine)
}

// Synthesize turns a request into one complete WAV: 16-bit mono at the
// maximum sample rate of the constituent segments. Any unit failing to
// produce audio fails the whole request; no partial output is returned.
func (s *Synthesizer) Synthesize(ctx context.Context, req Request) ([]byte, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, NewError(ErrEmptyText, "synthesizer", "segment")
	}
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	voice := req.Voice
	if voice == "" {
		voice = req.Lang
	}
	if voice == "" {
		voice = "en"
	}
	resolved, err := s.resolver.Resolve(voice, "")
	if err != nil {
		return nil, err
	}

	opts := req.Options
	if opts.Quality == "" && opts.NoiseScale == 0 && opts.LengthScale == 0 {
		explicit := opts.Explicit
		opts = DefaultOptions()
		opts.Explicit = explicit
	}
	opts.SSML = req.SSML

	var key string
	if s.cache != nil && !req.NoCache {
		key = cache.Key(req.Text, resolved, opts.settingsString())
		if data, ok := s.cache.Get(key); ok {
			s.logger.Debug("cache hit", "voice", resolved, "chars", len(req.Text))
			return data, nil
		}
	}

	var units []segment.Unit
	if req.SSML {
		units, err = segment.SSML(req.Text)
		if err != nil {
			return nil, NewError(ErrSynthesisFailed, "synthesizer", "parse ssml").
				WithContext("cause", err.Error())
		}
	} else {
		units = segment.Lines(req.Text)
	}
	if len(units) == 0 {
		return nil, NewError(ErrEmptyText, "synthesizer", "segment")
	}

	assembler := wave.NewAssembler()
	for _, unit := range units {
		seg, err := s.synthesizeUnit(ctx, unit, resolved, req.Lang, opts)
		if err != nil {
			return nil, err
		}
		assembler.AddPause(unit.PauseBefore)
		assembler.AddSegment(seg)
		assembler.AddPause(unit.PauseAfter)
	}

	final, err := assembler.Assemble()
	if err != nil {
		return nil, NewError(ErrEmptyAudio, "synthesizer", "assemble")
	}
	out := final.Encode()

	if s.cache != nil && !req.NoCache {
		if err := s.cache.Put(key, out); err != nil {
			// Cache failures never fail the request.
			s.logger.Warn("cache write failed", "err", err)
		}
	}

	s.logger.Debug("synthesized request",
		"voice", resolved, "units", len(units), "duration", final.Duration())
	return out, nil
}

// synthesizeUnit resolves the unit's effective voice and dispatches it
// to its engine, returning the decoded canonical segment.
func (s *Synthesizer) synthesizeUnit(ctx context.Context, unit segment.Unit, defaultVoice, requestLang string, opts SynthesisOptions) (wave.Segment, error) {
	voice := defaultVoice
	switch {
	case unit.Voice != "":
		resolved, err := s.resolver.Resolve(unit.Voice, defaultVoice)
		if err != nil {
			return wave.Segment{}, err
		}
		voice = resolved
	case unit.Lang != "" && !strings.EqualFold(unit.Lang, requestLang):
		resolved, err := s.resolver.Resolve(unit.Lang, defaultVoice)
		if err != nil {
			return wave.Segment{}, err
		}
		voice = resolved
	}

	ref := ParseVoiceRef(voice)
	engine, ok := s.registry.Engine(ref.Engine)
	if !ok {
		return wave.Segment{}, NewError(ErrUnknownEngine, "synthesizer", "dispatch").
			WithContext("engine", ref.Engine)
	}

	// A multi-speaker selection must not bleed into a voice that
	// resolved without one.
	unitOpts := opts
	unitOpts.SpeakerID = ref.Speaker

	if record, found := s.registry.Voice(ctx, ref.Engine, ref.Voice); found {
		unitOpts = unitOpts.Merge(record.Tag)
		unitOpts.SpeakerID = resolveSpeaker(record, ref.Speaker)
	}

	data, err := engine.Say(ctx, unit.Text, ref.Voice, unitOpts)
	if err != nil {
		return wave.Segment{}, NewError(ErrSynthesisFailed, ref.Engine, "say").
			WithContext("voice", ref.Voice).
			WithContext("cause", err.Error())
	}
	if len(data) == 0 {
		return wave.Segment{}, NewError(ErrEmptyAudio, ref.Engine, "say").
			WithContext("voice", ref.Voice)
	}

	seg, err := wave.Decode(data)
	if err != nil {
		return wave.Segment{}, NewError(ErrSynthesisFailed, ref.Engine, "decode").
			WithContext("voice", ref.Voice).
			WithContext("cause", err.Error())
	}
	return seg, nil
}

// resolveSpeaker maps a "#speaker" selection through a multispeaker
// voice's name table. Numeric ids and unknown names pass through
// untouched; a multispeaker voice with no selection gets its
// lowest-indexed speaker.
func resolveSpeaker(voice Voice, speaker string) string {
	if !voice.Multispeaker || len(voice.Speakers) == 0 {
		return speaker
	}
	if speaker == "" {
		lowest := -1
		for _, idx := range voice.Speakers {
			if lowest < 0 || idx < lowest {
				lowest = idx
			}
		}
		return strconv.Itoa(lowest)
	}
	if idx, ok := voice.Speakers[speaker]; ok {
		return strconv.Itoa(idx)
	}
	return speaker
}
