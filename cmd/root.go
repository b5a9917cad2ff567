/*
Copyright © 2025 riad@rsworld.eu

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"adlauncher/config"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "adlauncher",
	Short: "Validate bulk ad CSV files and launch them as Facebook ads.",
	Long: `
**********************************************
*              AD LAUNCHER                   *
**********************************************

This CLI reads bulk ad spreadsheets (CSV, Excel), validates every row, and launches the
valid rows into Facebook ad sets through the Graph API. Launch outcomes are kept in a
local SQLite database.

Supported input formats:
- CSV: .csv, .txt
- Excel: .xlsx, .xlsm
`,
	Example: `
  # Create configuration file
  adlauncher config create

  # Download the CSV template
  adlauncher template -o ads.csv

  # Validate a bulk file and write a per-row report
  adlauncher validate -i ads.csv --report ./report.xlsx

  # Preview a launch (no Graph API calls)
  adlauncher launch -i ads.csv --dry-run

  # Launch valid rows
  adlauncher launch -i ads.csv

  # Upload creative media and print its URL
  adlauncher media upload ./hero.png

  # Export launch history
  adlauncher history -o ./history.xlsx

  # Start the local HTTP API
  adlauncher serve
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !requiresConfig(cmd) {
			return nil
		}

		_, err := config.LoadAndValidate()
		return err
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	config.SetDefaults()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "configFile", "", "Config file override (default discovery: $HOME/.adlauncher.yaml, then ./.adlauncher.yaml)")
}

func requiresConfig(cmd *cobra.Command) bool {
	if cmd == nil {
		return false
	}
	switch cmd.Name() {
	case "validate", "launch", "serve":
		return true
	}
	if parent := cmd.Parent(); parent != nil {
		switch parent.Name() {
		case "media", "ads":
			return true
		}
	}
	return false
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".adlauncher" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".adlauncher")
	}

	config.BindEnv(viper.GetViper())

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "No config file found, using defaults and ADLAUNCHER_* environment. Create one with: adlauncher config create")
	}
}
