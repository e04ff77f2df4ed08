package cmd

import (
	"fmt"
	"os"

	"github.com/docshot/docshot/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// configCmd groups the configuration management subcommands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage docshot configuration",
	Long: `Inspect and manage docshot configuration.

Configuration is resolved from CLI flags, DOCSHOT_* environment
variables, a docshot.yaml config file and built-in defaults, in that
order of precedence.

Examples:
  docshot config init
  docshot config show
  docshot config paths`,
}

// configInitCmd writes a config file populated with defaults.
var configInitCmd = &cobra.Command{
	Use:          "init [file]",
	Short:        "Generate a default configuration file",
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := config.ConfigFileName + ".yaml"
		if len(args) == 1 {
			filename = args[0]
		}

		force, _ := cmd.Flags().GetBool("force")
		if !force {
			if _, err := os.Stat(filename); err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", filename)
			}
		}

		if err := config.GenerateDefaultConfigFile(filename); err != nil {
			return fmt.Errorf("failed to generate config file: %w", err)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", filename)
		return nil
	},
}

// configShowCmd prints the fully resolved configuration tree.
var configShowCmd = &cobra.Command{
	Use:          "show",
	Short:        "Print the resolved configuration",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		loader := GetConfigLoader()
		out, err := yaml.Marshal(loader.ResolvedSettings())
		if err != nil {
			return fmt.Errorf("failed to render configuration: %w", err)
		}
		if used := loader.ConfigFileUsed(); used != "" {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "# loaded from %s\n", used)
		}
		_, _ = fmt.Fprint(cmd.OutOrStdout(), string(out))
		return nil
	},
}

// configPathsCmd lists the config file search paths.
var configPathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "List configuration search paths in lookup order",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, p := range config.GetConfigSearchPaths() {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	},
}

// GetConfigCommand returns the config command for testing purposes.
func GetConfigCommand() *cobra.Command {
	return configCmd
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathsCmd)

	configInitCmd.Flags().Bool("force", false, "overwrite an existing file")
}
