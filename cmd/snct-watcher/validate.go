package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"snct-watcher/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		cfg, err := config.LoadAndValidate(path)
		if err != nil {
			return err
		}
		fmt.Printf("configuration is valid\n")
		fmt.Printf("  server:   %s:%d\n", cfg.Server.BindAddress, cfg.Server.Port)
		fmt.Printf("  upstream: %s (timeout %s)\n", cfg.Upstream.BaseURL, cfg.Upstream.Timeout.Duration())
		fmt.Printf("  fetcher:  every %s, %d concurrent requests\n", cfg.Fetcher.Interval.Duration(), cfg.Fetcher.Concurrency)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}
