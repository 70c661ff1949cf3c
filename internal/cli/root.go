// Package cli implements the maker command line.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/relab/maker/internal/logging"
	"github.com/spf13/cobra"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var (
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "maker",
		Short: "A command-line utility for reliable long multi-step tasks.",
		Long: `maker sizes, runs and simulates first-to-ahead-by-k voting.

For every step of a long task, independent answers are sampled until one of them
leads all others by k votes. The number of steps a task can have while still
succeeding with high probability grows exponentially with k.

Use 'maker plan' to find k and the expected cost for a task,
'maker vote' to vote on a list of answers,
'maker screen' to check answers for red flags, and
'maker simulate' to compare voting with a single sample per step.`,
		SilenceUsage: true,
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.maker.yaml)")

	rootCmd.PersistentFlags().String("log-level", "info", "sets the log level (debug, info, warn, error)")
	cobra.CheckErr(viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level")))
	rootCmd.PersistentFlags().StringSlice("log-pkgs", []string{}, "set the log level on a per-package basis, e.g. runner:debug")
	cobra.CheckErr(viper.BindPFlag("log-pkgs", rootCmd.PersistentFlags().Lookup("log-pkgs")))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".maker" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".maker")
	}

	viper.SetEnvPrefix("maker")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		cobra.CheckErr(err)
	}

	cobra.CheckErr(logging.SetLogLevel(viper.GetString("log-level")))
	cobra.CheckErr(logging.SetPackageLogLevels(viper.GetStringSlice("log-pkgs")))
}

// bindFlags binds the flags of cmd to viper. Commands share flag names,
// so flags are bound when a command runs rather than when it is created.
func bindFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}
