// Command soultrackctl runs SoulTrack maintenance tasks against the
// configured database: retention sweeps, reconciliation scans, intake links
// and development tokens.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"soultrack/followup/internal/config"
	"soultrack/followup/internal/logging"

	"github.com/spf13/cobra"
)

// Global flags
var (
	jsonOutput bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "soultrackctl",
	Short: "Operate a SoulTrack deployment",
	Long: `soultrackctl runs maintenance tasks with the same configuration as the
server (environment variables, or a .env file in the working directory).

Examples:
  soultrackctl sweep                          # Purge expired refusals now
  soultrackctl reconcile --church 1 --branch 1
  soultrackctl reconcile resolve 42           # Close a reviewed reconciliation row
  soultrackctl intake-link --church 1 --branch 1 --ttl 72h
  soultrackctl token --user admin-1 --ttl 1h  # Development bearer token`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		env := "production"
		if verbose {
			env = "development"
		}
		return logging.Init(env)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(intakeLinkCmd)
	rootCmd.AddCommand(tokenCmd)
}

func main() {
	err := rootCmd.Execute()
	_ = logging.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: "+err.Error())
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// printResult writes v as indented JSON under --json, otherwise the text.
func printResult(cmd *cobra.Command, v interface{}, text string) error {
	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), text)
	return err
}
