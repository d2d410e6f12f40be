// Package cli implements the mcmigrate command-line interface.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"mcmigrate/internal/mc"
	"mcmigrate/internal/migrate"
)

var (
	version = "dev"
	commit  = "none"
)

// DefaultEndpoint is the vendor GraphQL API endpoint.
const DefaultEndpoint = "https://api.getmontecarlo.com/graphql"

// settings holds the resolved connection configuration shared by all
// commands. Resolution precedence: flag > environment > profile > default.
type settings struct {
	profile  string
	endpoint string
	apiID    string
	apiToken string
	output   string
	verbose  bool
}

func (s *settings) client() *mc.Client {
	return mc.NewClient(s.endpoint, s.apiID, s.apiToken)
}

func (s *settings) runner() *migrate.Runner {
	return migrate.NewRunner(s.client(), slog.Default())
}

// Execute runs the CLI.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	s := &settings{}

	rootCmd := &cobra.Command{
		Use:           "mcmigrate",
		Short:         "Workspace configuration migration CLI",
		Long:          "Exports and imports workspace configuration (blocklists, domains, tags, exclusion windows, data products, audiences, monitors) between environments via flat files.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := slog.LevelInfo
			if s.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

			// Load config from profile if flags/env not set.
			cfg, err := LoadUserConfig()
			if err != nil {
				// Config file is optional.
				cfg = &UserConfig{
					CurrentProfile: "default",
					Profiles:       map[string]Profile{},
				}
			}
			p := cfg.ActiveProfile(s.profile)

			if !cmd.Flags().Changed("endpoint") {
				if v := os.Getenv("MCM_ENDPOINT"); v != "" {
					s.endpoint = v
				} else if p.Endpoint != "" {
					s.endpoint = p.Endpoint
				}
			}
			if !cmd.Flags().Changed("api-id") {
				if v := os.Getenv("MCM_API_ID"); v != "" {
					s.apiID = v
				} else if p.APIID != "" {
					s.apiID = p.APIID
				}
			}
			if !cmd.Flags().Changed("api-token") {
				if v := os.Getenv("MCM_API_TOKEN"); v != "" {
					s.apiToken = v
				} else if p.APIToken != "" {
					s.apiToken = p.APIToken
				}
			}
			if !cmd.Flags().Changed("output") {
				if v := os.Getenv("MCM_OUTPUT"); v != "" {
					s.output = v
				} else if p.Output != "" {
					s.output = p.Output
				}
			}
			return validateOutputFormat(s.output)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&s.profile, "profile", "p", "", "Config profile to use")
	rootCmd.PersistentFlags().StringVar(&s.endpoint, "endpoint", DefaultEndpoint, "API endpoint URL")
	rootCmd.PersistentFlags().StringVar(&s.apiID, "api-id", "", "API key ID")
	rootCmd.PersistentFlags().StringVar(&s.apiToken, "api-token", "", "API key token")
	rootCmd.PersistentFlags().StringVarP(&s.output, "output", "o", "text", "Output format (text, json)")
	rootCmd.PersistentFlags().BoolVarP(&s.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		newExportCmd(s),
		newValidateCmd(s),
		newImportCmd(s),
		newMonitorsCmd(s),
		newConfigCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

func validateOutputFormat(output string) error {
	if output != "" && output != "text" && output != "json" {
		return fmt.Errorf("unsupported output format %q: use 'text' or 'json'", output)
	}
	return nil
}
