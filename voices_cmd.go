package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/charmbracelet/log"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/dgnsrekt/voxgate/tts"
)

var (
	voicesLanguage string
	voicesLocale   string
	voicesGender   string
	voicesEngine   string
	voicesSearch   string

	voicesCmd = &cobra.Command{
		Use:   "voices",
		Short: "List the available voices",
		Long: "\nList every voice the enabled engines offer, one per line, with\n" +
			"optional filtering and fuzzy search.",
		Example: "  voxgate voices --language de\n" +
			"  voxgate voices --engine espeak --search mary",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gw, err := buildGateway(log.Default())
			if err != nil {
				return err
			}
			defer gw.Close()

			entries, err := gw.synth.Voices(cmd.Context(), tts.VoiceFilter{
				Language: voicesLanguage,
				Locale:   voicesLocale,
				Gender:   voicesGender,
				Engine:   voicesEngine,
			})
			if err != nil {
				return err
			}

			if voicesSearch != "" {
				entries = searchVoices(entries, voicesSearch)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, entry := range entries {
				v := entry.Voice
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					entry.FullID, v.Language, v.Locale, v.Gender, v.Name)
			}
			return w.Flush()
		},
	}
)

// voiceHaystack adapts catalog entries for fuzzy matching over the
// full id and display name.
type voiceHaystack []tts.CatalogEntry

func (h voiceHaystack) String(i int) string {
	return h[i].FullID + " " + h[i].Voice.Name
}

func (h voiceHaystack) Len() int { return len(h) }

func searchVoices(entries []tts.CatalogEntry, query string) []tts.CatalogEntry {
	matches := fuzzy.FindFrom(query, voiceHaystack(entries))
	out := make([]tts.CatalogEntry, 0, len(matches))
	for _, m := range matches {
		out = append(out, entries[m.Index])
	}
	return out
}

func init() {
	voicesCmd.Flags().StringVar(&voicesLanguage, "language", "", "filter by language code")
	voicesCmd.Flags().StringVar(&voicesLocale, "locale", "", "filter by locale")
	voicesCmd.Flags().StringVar(&voicesGender, "gender", "", "filter by gender (M/F)")
	voicesCmd.Flags().StringVar(&voicesEngine, "engine", "", "filter by engine name")
	voicesCmd.Flags().StringVarP(&voicesSearch, "search", "s", "", "fuzzy-search voice ids and names")
}
