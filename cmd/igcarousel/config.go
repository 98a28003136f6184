package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"igcarousel/pkg/config"
	"igcarousel/pkg/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Write a configuration file with default values to the given path,
or .igcarousel.yaml in the current directory.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Print the configuration after merging defaults, the config file and
environment variables. Session cookie values are masked.`,
	Run: runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	path := ".igcarousel.yaml"
	if len(args) > 0 {
		path = args[0]
	}

	if _, err := os.Stat(path); err == nil {
		ui.PrintError("File already exists", path)
		os.Exit(1)
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(path); err != nil {
		ui.PrintError("Failed to write configuration", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration written: " + path)
	fmt.Println("\nSession cookies are better kept out of the file; use")
	fmt.Println("'igcarousel auth login' or environment variables instead.")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	// Mask cookie values before printing
	if cfg.Instagram.SessionID != "" {
		cfg.Instagram.SessionID = "********"
	}
	if cfg.Instagram.CSRFToken != "" {
		cfg.Instagram.CSRFToken = "********"
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		ui.PrintError("Failed to render configuration", err.Error())
		os.Exit(1)
	}

	fmt.Print(string(data))
}
