package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/glassroot/glassroot/internal/settings"
)

// settingKeys are the names accepted by "settings set".
var settingKeys = []string{"api_key", "model", "system_prompt", "temperature"}

func (a *app) settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change chat settings",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the current chat settings",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				repo := a.settingsRepo()
				s, err := repo.Load()
				if err != nil {
					return err
				}
				model := s.Model
				if model == "" {
					model = a.cfg.Chat.DefaultModel + " (default)"
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "file:          %s\n", repo.Path())
				fmt.Fprintf(out, "api_key:       %s\n", settings.Masked(s.APIKey))
				fmt.Fprintf(out, "model:         %s\n", model)
				fmt.Fprintf(out, "system_prompt: %s\n", s.SystemPrompt)
				fmt.Fprintf(out, "temperature:   %g\n", s.Temperature)
				return nil
			},
		},
		&cobra.Command{
			Use:       "set <key> <value>",
			Short:     "Change one chat setting",
			Long:      "Keys: " + strings.Join(settingKeys, ", ") + `. An empty value clears the setting.`,
			Args:      cobra.ExactArgs(2),
			ValidArgs: settingKeys,
			RunE: func(cmd *cobra.Command, args []string) error {
				repo := a.settingsRepo()
				s, err := repo.Load()
				if err != nil {
					return err
				}
				if err := applySetting(&s, args[0], args[1]); err != nil {
					return err
				}
				if err := repo.Save(s); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s updated\n", args[0])
				return nil
			},
		},
	)
	return cmd
}

func (a *app) settingsRepo() *settings.FileRepository {
	return settings.NewFileRepository(a.cfg.Chat.SettingsPath)
}

func applySetting(s *settings.Settings, key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "api_key":
		s.APIKey = value
	case "model":
		s.Model = value
	case "system_prompt":
		s.SystemPrompt = value
	case "temperature":
		if value == "" {
			s.Temperature = settings.DefaultTemperature
			return nil
		}
		t, err := strconv.ParseFloat(value, 64)
		if err != nil || t < 0 || t > 2 {
			return fmt.Errorf("temperature must be a number between 0 and 2, got %q", value)
		}
		s.Temperature = t
	default:
		return fmt.Errorf("unknown setting %q (want one of %s)", key, strings.Join(settingKeys, ", "))
	}
	return nil
}
