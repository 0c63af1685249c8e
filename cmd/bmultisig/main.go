package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"

	initialState = map[string]string{
		"server":   "http://localhost:18000",
		"network":  "mainnet",
		"rootpath": "m/44'/0'",
	}

	datadirFlag string

	rootCmd = &cobra.Command{
		Use:   "bmultisig",
		Short: "CLI for bmultisig coordinator",
		Long: "This CLI lets you interact with a running bmultisig coordinator " +
			"daemon",
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if datadirFlag != "" {
				datadir = cleanAndExpandPath(datadirFlag)
				statePath = filepath.Join(datadir, "state.json")
			}
			if _, err := os.Stat(datadir); os.IsNotExist(err) {
				os.Mkdir(datadir, os.ModeDir|0755)
			}
		},
		Version: formatVersion(),
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(
		&datadirFlag, "datadir", "", "directory where the CLI state is stored",
	)
	rootCmd.AddCommand(configCmd, walletCmd, cosignerCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func formatVersion() string {
	return fmt.Sprintf(
		"\nVersion: %s\nCommit: %s\nDate: %s", version, commit, date,
	)
}
