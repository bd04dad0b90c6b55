package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:           "jots",
	Short:         "Serve a Go object graph as an addressable value tree",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default jots.yaml in the working directory)")
	rootCmd.PersistentFlags().String("listen", ":1161", "UDP listen address")
	rootCmd.PersistentFlags().String("community", "public", "community string")
	rootCmd.PersistentFlags().String("prefix", ".1.3.6.1.4.1.53104", "numeric prefix the tree is built under")

	viper.BindPFlag("listen", rootCmd.PersistentFlags().Lookup("listen"))
	viper.BindPFlag("community", rootCmd.PersistentFlags().Lookup("community"))
	viper.BindPFlag("prefix", rootCmd.PersistentFlags().Lookup("prefix"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("jots")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("JOTS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// a missing config file is fine; flags and env cover everything
	_ = viper.ReadInConfig()
}
