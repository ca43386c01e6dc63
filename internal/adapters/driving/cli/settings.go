package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// settingKeys are the settings shown by "settings show", in display order.
var settingKeys = []string{
	"projects.dir",
	"server.addr",
	"sink.type",
	"sink.sqlite.dir",
	"sink.elastic.addresses",
	"sink.elastic.index_prefix",
	"sink.kafka.brokers",
	"sink.kafka.topic",
	"browser.remote_url",
	"browser.bin",
	"index.concurrency",
	"index.rate_limit",
	"log.level",
	"log.json",
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show application settings",
	Long: `Shows the effective settings: values from the settings file, with
defaults for keys the file does not set.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsStore == nil {
		return errors.New("settings not loaded")
	}

	cmd.Printf("Settings file: %s\n", settingsStore.Path())
	cmd.Println()
	for _, key := range settingKeys {
		val, ok := settingsStore.Get(key)
		if !ok {
			cmd.Printf("  %-26s (not set)\n", key)
			continue
		}
		cmd.Printf("  %-26s %s\n", key, formatSetting(val))
	}
	return nil
}

func formatSetting(val any) string {
	switch v := val.(type) {
	case string:
		if v == "" {
			return `""`
		}
		return v
	case []string:
		return strings.Join(v, ", ")
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(v)
	}
}
