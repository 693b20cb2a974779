package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/classdep/classdep/analyzer"
	"github.com/classdep/classdep/config"
	"github.com/classdep/classdep/filter"
	"github.com/classdep/classdep/internal/obslog"
	"github.com/classdep/classdep/reporter"
)

var (
	componentsFlag string
	fileFlag       string
	configFlag     string
	verboseFlag    bool
)

var rootCmd = &cobra.Command{
	Use:   "classdep <root>...",
	Short: "Analyze VM class-file dependencies and design metrics",
	Long: `classdep parses compiled class files from one or more directories or
archives (.jar/.zip/.war), builds the inter-package dependency graph, and
reports afferent/efferent coupling, abstractness, instability, distance
from the main sequence, and dependency cycles for every package found.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.Flags().StringVar(&componentsFlag, "components", "", "comma-separated component prefix list for merging packages")
	rootCmd.Flags().StringVar(&fileFlag, "file", "", "write the JSON report to this file instead of stdout")
	rootCmd.Flags().StringVar(&configFlag, "config", "", "explicit path to a classdep.properties file")
	rootCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "log per-class parse failures")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return err
	}

	components := cfg.ComponentPrefixes
	if componentsFlag != "" {
		components = splitTrim(componentsFlag, ",")
	}

	level := obslog.LevelError
	if verboseFlag {
		level = obslog.LevelWarn
	}
	logger := obslog.New(obslog.Config{Format: obslog.FormatHuman, Level: level, Output: cmd.ErrOrStderr()})

	session := analyzer.New(analyzer.Options{
		Filter:     filter.New(cfg.FilterPrefixes...),
		Components: components,
		Logger:     logger,
	})

	results, err := session.Analyze(args)
	if err != nil {
		return err
	}

	report := reporter.BuildReport(results)
	if fileFlag != "" {
		if err := reporter.WriteJSONFile(fileFlag, report); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote report for %d packages to %s\n", len(report.Packages), fileFlag)
		return nil
	}
	return reporter.WriteJSON(cmd.OutOrStdout(), report)
}

func splitTrim(value, sep string) []string {
	var out []string
	for _, part := range strings.Split(value, sep) {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
