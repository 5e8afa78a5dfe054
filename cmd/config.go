package cmd

import (
	"encoding/json"
	"fmt"

	"sofie/core/app"
	"sofie/core/config"
	"sofie/core/logger"

	"github.com/spf13/cobra"
)

var configJSON bool

// configCmd prints the configuration serve would use.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved listener configuration",
	Long:  `Resolves the configuration exactly as serve does and prints it without binding anything.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logg, err := logger.New(logConfig())
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer logg.Sync()

		cfg := config.Resolve(configSource(), logg)
		listener, host, err := app.Assemble(cfg, app.DefaultHostname)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if configJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"port":      cfg.Port,
				"interface": cfg.Interface,
				"listen":    listener.Addr(),
				"host":      host.Hostname,
			})
		}

		fmt.Fprintf(out, "port:      %d\n", cfg.Port)
		fmt.Fprintf(out, "interface: %s\n", cfg.Interface)
		fmt.Fprintf(out, "listen:    %s\n", listener.Addr())
		fmt.Fprintf(out, "host:      %s\n", host.Hostname)
		return nil
	},
}

func init() {
	configCmd.Flags().BoolVar(&configJSON, "json", false, "print as JSON")
	RootCmd.AddCommand(configCmd)
}
