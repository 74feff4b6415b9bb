package main

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// newConfigCommand prints the effective renderer configuration after
// applying environment variables and the optional --config file.
func newConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective renderer configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			cmd.Print(string(out))
			return nil
		},
	}
}
