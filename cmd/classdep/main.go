package main

import (
	"os"

	"github.com/classdep/classdep/internal/obslog"
)

func main() {
	logger := obslog.New(obslog.Config{Format: obslog.FormatHuman, Level: obslog.LevelInfo})

	if err := rootCmd.Execute(); err != nil {
		logger.Error("command failed", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}
