package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/reservoir/config"
	"github.com/wesleyorama2/reservoir/internal/output"
)

func newValidateCmd(a *app) *cobra.Command {
	var printConfig bool

	cmd := &cobra.Command{
		Use:   "validate <config>",
		Short: "Check a configuration file",
		Long: `Checks a YAML or JSON configuration file against the configuration
schema and the semantic rules, applying defaults for unset fields.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			noColor := a.noColor || !output.IsTerminal(out)

			cfg, err := config.LoadConfig(args[0])
			if err == nil {
				if applied := cfg.ApplyDefaults(); len(applied) > 0 {
					a.logger.WithField("fields", applied).Info("applied configuration defaults")
				}
				err = cfg.Validate()
			}
			if err != nil {
				fmt.Fprintf(out, "%s %s is invalid\n", output.ErrorIcon(noColor), args[0])
				return err
			}

			fmt.Fprintf(out, "%s %s is valid\n", output.SuccessIcon(noColor), args[0])
			if printConfig {
				data, err := cfg.Marshal(args[0])
				if err != nil {
					return err
				}
				_, err = out.Write(data)
				return err
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&printConfig, "print", "p", false, "print the effective configuration")
	return cmd
}
