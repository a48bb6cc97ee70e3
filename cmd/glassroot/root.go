package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/glassroot/glassroot/internal/apiclient"
	"github.com/glassroot/glassroot/internal/cli"
	"github.com/glassroot/glassroot/internal/config"
	"github.com/glassroot/glassroot/pkg/utils"
)

// localConfigName is picked up from the working directory when no --config is given.
const localConfigName = "glassroot.yaml"

// app carries the persistent flags and the loaded config into every command.
type app struct {
	configPath string
	debug      bool
	serverURL  string
	format     string

	cfg          *config.Config
	resolvedPath string
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "glassroot",
		Short:         "Semantic document search and streaming chat",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, path, err := loadConfig(a.configPath)
			if err != nil {
				return err
			}
			a.cfg, a.resolvedPath = cfg, path
			return nil
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file path (default ./"+localConfigName+" or ~/.glassroot/config.yaml)")
	flags.BoolVar(&a.debug, "debug", false, "enable debug logging")
	flags.StringVar(&a.serverURL, "server", "", "edge API base URL (default from server host and port)")
	flags.StringVar(&a.format, "format", "text", "output format: text or json")

	root.AddCommand(
		a.serverCmd(),
		a.documentsCmd(),
		a.searchCmd(),
		a.chatCmd(),
		a.settingsCmd(),
		versionCmd(),
	)
	return root
}

// loadConfig loads config from path. With no explicit path it prefers glassroot.yaml in the
// working directory, so running from a project dir uses that project's config, and otherwise
// falls back to ~/.glassroot/config.yaml. Returns the config and the path that was used.
func loadConfig(path string) (*config.Config, string, error) {
	if path == "" {
		path = defaultConfigPath()
		if cwd, err := os.Getwd(); err == nil {
			local := filepath.Join(cwd, localConfigName)
			if _, statErr := os.Stat(local); statErr == nil {
				path = local
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return localConfigName
	}
	return filepath.Join(home, ".glassroot", "config.yaml")
}

func (a *app) debugMode() bool {
	return a.debug || a.cfg.Debug
}

func (a *app) outputFormat() (cli.OutputFormat, error) {
	return cli.ParseOutputFormat(a.format)
}

func (a *app) apiClient() *apiclient.Client {
	url := a.serverURL
	if url == "" {
		url = "http://" + a.cfg.Server.Addr()
	}
	return apiclient.New(url)
}

func (a *app) consoleLogger() *zap.Logger {
	logger, err := utils.NewConsoleLogger(a.debugMode())
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "glassroot version %s\n", version)
		},
	}
}
