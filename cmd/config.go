package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/dayplan/internal/clierr"
	"github.com/twiced-technology-gmbh/dayplan/internal/config"
	"github.com/twiced-technology-gmbh/dayplan/internal/output"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify planner configuration",
	Long:  `View the full configuration, get a specific key, or set a writable value.`,
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2), //nolint:mnd // key and value
	RunE:  runConfigSet,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

// configValue reads the value behind a settable key.
func configValue(cfg *config.Config, key string) (any, bool) {
	p := cfg.Preferences
	switch key {
	case "work_hours.start":
		return p.WorkHours.Start, true
	case "work_hours.end":
		return p.WorkHours.End, true
	case "timezone":
		return p.Timezone, true
	case "focus_minutes":
		return p.FocusMinutes, true
	case "break_minutes":
		return p.BreakMinutes, true
	case "default_duration_minutes":
		return p.DefaultDuration, true
	case "alert_window_minutes":
		return p.AlertWindow, true
	case "retention_days":
		return p.RetentionDays, true
	case "storage.backend":
		return cfg.Storage.Backend, true
	case "storage.dsn":
		return cfg.Storage.DSN, true
	default:
		return nil, false
	}
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	keys := config.SettableKeys()

	if outputFormat() == output.FormatJSON {
		m := make(map[string]any, len(keys))
		for _, key := range keys {
			v, _ := configValue(cfg, key)
			m[key] = v
		}
		return output.JSON(os.Stdout, m)
	}

	// Table mode: key-value pairs.
	for _, key := range keys {
		v, _ := configValue(cfg, key)
		fmt.Fprintf(os.Stdout, "%-26s %v\n", key, v)
	}
	return nil
}

func runConfigGet(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	key := args[0]
	val, ok := configValue(cfg, key)
	if !ok {
		return clierr.Newf(clierr.InvalidInput, "unknown config key %q; valid: %s",
			key, strings.Join(config.SettableKeys(), ", "))
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, val)
	}

	fmt.Fprintln(os.Stdout, val)
	return nil
}

func runConfigSet(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	key, value := args[0], args[1]
	if err := cfg.Set(key, value); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := cfg.Save(); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	val, _ := configValue(cfg, key)
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{"key": key, "value": val})
	}

	output.Messagef(os.Stdout, "Set %s = %v", key, val)
	return nil
}
