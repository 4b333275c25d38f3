package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/prefKV/cmd/kv"
	"github.com/ValentinKolb/prefKV/cmd/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	Version = "1.0.0"
)

// NewRootCmd builds the prefkv command tree. Every tree has its own viper instance,
// so that several trees (e.g. in tests) do not share flag values.
func NewRootCmd() *cobra.Command {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:   "prefkv",
		Short: "typed preference store",
		Long: fmt.Sprintf(`prefKV (v%s)

Typed, named preference stores persisted on the local disk.
Every store is one file in the data directory, values keep
their type (string, int, long, float, double, bool, set).`, Version),
		SilenceUsage: true,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number of prefKV",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "prefKV v%s\n", Version)
		},
	}

	util.SetupStoreFlags(rootCmd)

	rootCmd.AddCommand(versionCmd)
	kv.AddCommands(rootCmd, v)

	return rootCmd
}

// Execute builds the command tree and runs it with the process arguments.
// This is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
