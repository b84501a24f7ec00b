package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

// setupLog configures the global logger. Logs go to stderr, or to the
// file named by VOXGATE_LOGFILE. The returned closer flushes the file.
func setupLog() (func() error, error) {
	closer := func() error { return nil }

	if file := os.Getenv("VOXGATE_LOGFILE"); file != "" {
		f, err := os.OpenFile(file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, fmt.Errorf("unable to open log file: %w", err)
		}
		log.SetOutput(f)
		closer = f.Close
	}

	if viper.GetBool("debug") || os.Getenv("VOXGATE_DEBUG") != "" {
		log.SetLevel(log.DebugLevel)
	}
	log.SetReportTimestamp(true)

	return closer, nil
}
