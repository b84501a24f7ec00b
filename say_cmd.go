package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/dgnsrekt/voxgate/internal/audio"
	"github.com/dgnsrekt/voxgate/tts"
)

var (
	sayVoice    string
	sayLang     string
	saySSML     bool
	sayNoCache  bool
	sayPlay     bool
	sayOutput   string
	sayQuality  string
	sayNoise    float64
	sayLength   float64
	sayDenoiser float64

	sayCmd = &cobra.Command{
		Use:   "say [TEXT]",
		Short: "Synthesize text to a WAV file or the speakers",
		Long: "\nSynthesize the given text (or stdin when the argument is - or\n" +
			"missing) and write the WAV to a file, to stdout, or play it with\n" +
			"--play.",
		Example: "  voxgate say -v glow-speak:en-us_mary_ann \"It is ready.\"\n" +
			"  echo hello | voxgate say --lang de -o hello.wav\n" +
			"  voxgate say --play \"All systems nominal.\"",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := sayInput(args)
			if err != nil {
				return err
			}

			logger := log.Default()
			gw, err := buildGateway(logger)
			if err != nil {
				return err
			}
			defer gw.Close()

			opts := gw.cfg.DefaultOptionsFromConfig()
			opts.Explicit = make(map[string]bool)
			if cmd.Flags().Changed("quality") {
				opts.Quality = sayQuality
				opts.Explicit["quality"] = true
			}
			if cmd.Flags().Changed("noise-scale") {
				opts.NoiseScale = sayNoise
				opts.Explicit["noise_scale"] = true
			}
			if cmd.Flags().Changed("length-scale") {
				opts.LengthScale = sayLength
				opts.Explicit["length_scale"] = true
			}
			if cmd.Flags().Changed("denoiser-strength") {
				opts.DenoiserStrength = sayDenoiser
				opts.Explicit["denoiser_strength"] = true
			}

			voice := sayVoice
			if voice == "" {
				voice = gw.cfg.DefaultVoice
			}

			wav, err := gw.synth.Synthesize(cmd.Context(), tts.Request{
				Text:    text,
				Voice:   voice,
				Lang:    sayLang,
				SSML:    saySSML,
				NoCache: sayNoCache,
				Options: opts,
			})
			if err != nil {
				return err
			}

			if sayPlay {
				return audio.PlayWAV(cmd.Context(), wav)
			}
			if sayOutput != "" {
				if err := os.WriteFile(sayOutput, wav, 0o644); err != nil { //nolint:gosec
					return fmt.Errorf("unable to write output: %w", err)
				}
				fmt.Fprintln(cmd.ErrOrStderr(), "Wrote", sayOutput)
				return nil
			}
			if isatty.IsTerminal(os.Stdout.Fd()) {
				return errors.New("refusing to write WAV data to a terminal; use --output or --play")
			}
			_, err = os.Stdout.Write(wav)
			return err
		},
	}
)

// sayInput picks the text source: the argument, or stdin for "-" and
// for piped input.
func sayInput(args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("unable to read stdin: %w", err)
	}
	text := strings.TrimRight(string(data), "\n")
	if text == "" {
		return "", errors.New("no text to synthesize")
	}
	return text, nil
}

func init() {
	sayCmd.Flags().StringVarP(&sayVoice, "voice", "v", "", "voice as engine:voice[#speaker], a language code, or an alias")
	sayCmd.Flags().StringVar(&sayLang, "lang", "", "language used when no voice is given")
	sayCmd.Flags().BoolVar(&saySSML, "ssml", false, "treat the input as SSML")
	sayCmd.Flags().BoolVar(&sayNoCache, "no-cache", false, "bypass the result cache")
	sayCmd.Flags().BoolVarP(&sayPlay, "play", "p", false, "play through the local audio device")
	sayCmd.Flags().StringVarP(&sayOutput, "output", "o", "", "write the WAV to this file")
	sayCmd.Flags().StringVar(&sayQuality, "quality", "high", "vocoder quality: high, medium or low")
	sayCmd.Flags().Float64Var(&sayNoise, "noise-scale", 0.667, "prosodic variability")
	sayCmd.Flags().Float64Var(&sayLength, "length-scale", 1.0, "speaking rate, lower is faster")
	sayCmd.Flags().Float64Var(&sayDenoiser, "denoiser-strength", 0.005, "vocoder denoiser strength")
}
