package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage profiles in ~/.mcmigrate/config.yaml",
	}
	cmd.AddCommand(newConfigSetCmd(), newConfigUseCmd(), newConfigListCmd())
	return cmd
}

func newConfigSetCmd() *cobra.Command {
	var (
		endpoint string
		apiID    string
		apiToken string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "set <profile>",
		Short: "Create or update a named profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			cfg, err := LoadUserConfig()
			if err != nil {
				cfg = &UserConfig{CurrentProfile: name, Profiles: map[string]Profile{}}
			}

			p := cfg.Profiles[name]
			if cmd.Flags().Changed("endpoint") {
				p.Endpoint = endpoint
			}
			if cmd.Flags().Changed("api-id") {
				p.APIID = apiID
			}
			if cmd.Flags().Changed("api-token") {
				p.APIToken = apiToken
			}
			if cmd.Flags().Changed("output") {
				if err := validateOutputFormat(output); err != nil {
					return err
				}
				p.Output = output
			}
			cfg.Profiles[name] = p
			if cfg.CurrentProfile == "" {
				cfg.CurrentProfile = name
			}

			if err := SaveUserConfig(cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Profile %q saved.\n", name)
			return nil
		},
	}

	cmd.Flags().StringVar(&endpoint, "endpoint", "", "API endpoint URL")
	cmd.Flags().StringVar(&apiID, "api-id", "", "API key ID")
	cmd.Flags().StringVar(&apiToken, "api-token", "", "API key token")
	cmd.Flags().StringVar(&output, "output", "", "Default output format (text, json)")
	return cmd
}

func newConfigUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <profile>",
		Short: "Set the current profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadUserConfig()
			if err != nil {
				return err
			}
			name := args[0]
			if _, ok := cfg.Profiles[name]; !ok {
				return fmt.Errorf("profile %q not found", name)
			}
			cfg.CurrentProfile = name
			if err := SaveUserConfig(cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Current profile set to %q.\n", name)
			return nil
		},
	}
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured profiles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := LoadUserConfig()
			if err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No config file found.")
				return nil
			}
			names := make([]string, 0, len(cfg.Profiles))
			for name := range cfg.Profiles {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				marker := " "
				if name == cfg.CurrentProfile {
					marker = "*"
				}
				p := cfg.Profiles[name]
				endpoint := p.Endpoint
				if endpoint == "" {
					endpoint = DefaultEndpoint
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\t%s\n", marker, name, endpoint)
			}
			return nil
		},
	}
}
