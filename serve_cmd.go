package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgnsrekt/voxgate/internal/server"
	"github.com/dgnsrekt/voxgate/tts"
)

var (
	serveHost string
	servePort int

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP speech gateway",
		Long: "\nServe the /api/tts, /api/voices and /api/languages endpoints plus\n" +
			"the MaryTTS-compatible /process and /voices endpoints.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := log.Default()

			gw, err := buildGateway(logger)
			if err != nil {
				return err
			}
			defer gw.Close()

			srvCfg, err := env.ParseAs[server.Config]()
			if err != nil {
				return fmt.Errorf("error parsing environment: %w", err)
			}
			if cmd.Flags().Changed("host") || srvCfg.Host == "" {
				srvCfg.Host = serveHost
			}
			if cmd.Flags().Changed("port") || srvCfg.Port == 0 {
				srvCfg.Port = servePort
			}
			if gw.cfg.DefaultVoice != "" && srvCfg.DefaultLang == "" {
				srvCfg.DefaultLang = gw.cfg.DefaultVoice
			}
			if gw.store != nil {
				srvCfg.CacheDefault = true
			}

			// Alias overrides follow the config file while serving.
			viper.OnConfigChange(func(fsnotify.Event) {
				cfg, err := tts.LoadConfigFromViper()
				if err != nil || cfg.AliasFile == "" {
					return
				}
				aliases, err := tts.LoadAliasFile(cfg.AliasFile)
				if err != nil {
					logger.Warn("could not reload alias file", "path", cfg.AliasFile, "err", err)
					return
				}
				gw.synth.Resolver().SetAliases(aliases)
				logger.Info("reloaded voice aliases", "path", cfg.AliasFile)
			})
			viper.WatchConfig()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := server.New(srvCfg, gw.synth, gw.cfg.DefaultOptionsFromConfig(), Version, logger)
			return srv.ListenAndServe(ctx)
		},
	}
)

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "0.0.0.0", "address to bind")
	serveCmd.Flags().IntVar(&servePort, "port", 5500, "port to listen on")
}
