package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var flagDumpPath string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration after defaults, config files and flags are applied.

Use --dump to write it to a file that can be edited and passed back with --config.

Examples:
  flappy config
  flappy config --dump ./flappy.yaml
  flappy --config ./flappy.yaml play`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().StringVar(&flagDumpPath, "dump", "", "Write the configuration to this file")
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if flagDumpPath != "" {
		if err := cfg.WriteYAML(flagDumpPath); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Configuration written to %s\n", flagDumpPath)
		return nil
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_, err = os.Stdout.Write(data)
	return err
}
