package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/ukvlib/ukv/cmd/kv"
)

const (
	Version = "0.3.1"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "ukv",
		Short: "uniform typed key-value storage",
		Long: fmt.Sprintf(`uKV (v%s)

A uniform storage abstraction for strings, raw bytes and atomic counters,
with the storage medium (in-memory or Redis) swappable behind one contract.`, Version),
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of uKV",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("uKV v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(kv.KeyValueCommands)
	RootCmd.AddCommand(versionCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
