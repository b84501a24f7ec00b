package tts_test

import (
	"errors"
	"testing"

	"github.com/dgnsrekt/voxgate/tts"
	"github.com/dgnsrekt/voxgate/tts/engines/mock"
)

func newResolver(t *testing.T, engineNames ...string) (*tts.Registry, *tts.Resolver) {
	t.Helper()
	registry := tts.NewRegistry(nil)
	for _, name := range engineNames {
		registry.Register(mock.New(name, 22050))
	}
	return registry, tts.NewResolver(registry, nil)
}

func TestResolveExplicitReference(t *testing.T) {
	_, resolver := newResolver(t, "espeak")

	got, err := resolver.Resolve("espeak:en-gb", "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "espeak:en-gb" {
		t.Errorf("got %q", got)
	}
}

func TestResolveAliasFirstRegisteredWins(t *testing.T) {
	_, resolver := newResolver(t, "nanotts")
	resolver.SetAliases(map[string][]string{
		"en": {"glow-speak:en-us_mary_ann", "nanotts:en-GB"},
	})

	// glow-speak is not registered, so the second candidate wins.
	got, err := resolver.Resolve("en", "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "nanotts:en-GB" {
		t.Errorf("got %q, want nanotts:en-GB", got)
	}
}

func TestSetAliasesKeepsBuiltinFallback(t *testing.T) {
	_, resolver := newResolver(t, "nanotts")
	resolver.SetAliases(map[string][]string{
		"en": {"larynx:harvard-glow_tts"},
	})

	// larynx is not registered; resolution falls through the override
	// to the built-in candidates instead of failing.
	got, err := resolver.Resolve("en", "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "nanotts:en-GB" {
		t.Errorf("got %q, want nanotts:en-GB", got)
	}
}

func TestSetAliasesOverrideWinsWhenAvailable(t *testing.T) {
	_, resolver := newResolver(t, "glow-speak", "nanotts")
	resolver.SetAliases(map[string][]string{
		"en": {"nanotts:en-US", "nanotts:en-GB"},
	})

	// Override candidates outrank the built-ins and keep their order.
	got, err := resolver.Resolve("en", "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "nanotts:en-US" {
		t.Errorf("got %q, want nanotts:en-US", got)
	}
}

func TestSetAliasesReapplyIsStable(t *testing.T) {
	_, resolver := newResolver(t, "glow-speak", "nanotts")
	overrides := map[string][]string{"en": {"nanotts:en-US"}}

	// Config reloads reapply the same override file; the ordering must
	// not drift.
	resolver.SetAliases(overrides)
	resolver.SetAliases(overrides)

	got, err := resolver.Resolve("en", "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "nanotts:en-US" {
		t.Errorf("got %q, want nanotts:en-US", got)
	}
}

func TestResolveDeterministic(t *testing.T) {
	_, resolver := newResolver(t, "glow-speak", "nanotts")

	first, err := resolver.Resolve("en", "")
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		got, err := resolver.Resolve("en", "")
		if err != nil || got != first {
			t.Fatalf("iteration %d: %q (%v), want stable %q", i, got, err, first)
		}
	}
}

func TestResolvePrimarySubtagFallback(t *testing.T) {
	_, resolver := newResolver(t, "glow-speak")

	// en-US has no alias entry; it falls back to the "en" entry.
	got, err := resolver.Resolve("en-US", "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "glow-speak:en-us_mary_ann" {
		t.Errorf("got %q", got)
	}
}

func TestResolveSpeakerRoundTrip(t *testing.T) {
	_, resolver := newResolver(t, "nanotts")
	resolver.SetAliases(map[string][]string{"en": {"nanotts:en-GB"}})

	got, err := resolver.Resolve("en#3", "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "nanotts:en-GB#3" {
		t.Errorf("speaker not reattached: %q", got)
	}
}

func TestResolveEspeakLastResort(t *testing.T) {
	_, resolver := newResolver(t, "espeak")

	// "xx" has no alias; the bare code falls through to espeak.
	got, err := resolver.Resolve("xx", "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "espeak:xx" {
		t.Errorf("got %q", got)
	}
}

func TestResolveNoEspeakFallbackForPrefixed(t *testing.T) {
	_, resolver := newResolver(t, "espeak")

	// An explicit engine prefix must not be rewritten to espeak.
	_, err := resolver.Resolve("ghost:voice", "")
	if !errors.Is(err, tts.ErrVoiceNotResolved) {
		t.Fatalf("want ErrVoiceNotResolved, got %v", err)
	}
}

func TestResolveCallerFallback(t *testing.T) {
	_, resolver := newResolver(t, "nanotts")

	got, err := resolver.Resolve("zz", "nanotts:en-US")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "nanotts:en-US" {
		t.Errorf("got %q", got)
	}
}

func TestResolvePreferOverridesAliases(t *testing.T) {
	_, resolver := newResolver(t, "glow-speak", "nanotts")
	resolver.Prefer("en", "nanotts:en-US")

	got, err := resolver.Resolve("en", "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "nanotts:en-US" {
		t.Errorf("preferred voice lost: %q", got)
	}
}

func TestResolveUnknownFails(t *testing.T) {
	_, resolver := newResolver(t)

	if _, err := resolver.Resolve("en", ""); !errors.Is(err, tts.ErrVoiceNotResolved) {
		t.Fatalf("want ErrVoiceNotResolved, got %v", err)
	}
}
