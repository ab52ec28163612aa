package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// ---------------- config ----------------
var configCwd string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Create and validate project-cleaner configuration files",
	Long:  `Commands for creating and validating project-cleaner.config.json(c) files.`,
}

// ---------------- config init ----------------
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new project-cleaner.config.json file",
	Long:  `Create a new project-cleaner.config.json file in the current directory with default settings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd := ResolveAbsoluteCwd(configCwd)
		configPath, err := initConfigFileCore(cwd)
		if err != nil {
			return err
		}
		printInitConfigResults(os.Stdout, configPath)
		return nil
	},
}

// printInitConfigResults prints the results of config initialization
func printInitConfigResults(w io.Writer, configPath string) {
	defaults := DefaultConfig()
	fmt.Fprintf(w, "✅ Created project-cleaner.config.json at %s\n", configPath)
	fmt.Fprintf(w, "📁 Namespace %s, primary classes: %v\n", defaults.Namespace, defaults.PrimaryClasses)
	fmt.Fprintln(w, "Add classes, paths and assets that have to be kept to excludedClasses, excludedPaths and excludedAssets.")
}

// ---------------- config validate ----------------
var configValidateCmd = &cobra.Command{
	Use:   "validate [config-path]",
	Short: "Check a config file for errors",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd := ResolveAbsoluteCwd(configCwd)
		configPath := cwd
		if len(args) == 1 {
			configPath = args[0]
		}
		return runConfigValidate(os.Stdout, configPath)
	},
}

func runConfigValidate(w io.Writer, configPath string) error {
	config, err := LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(w, "❌ Invalid config: %v\n", err)
		return err
	}
	fmt.Fprintf(w, "✅ Config is valid (configVersion %s, namespace %s)\n", config.ConfigVersion, config.Namespace)
	return nil
}

func init() {
	configCmd.PersistentFlags().StringVarP(&configCwd, "cwd", "c", currentDir, "Working directory")
	configCmd.AddCommand(configInitCmd, configValidateCmd)
}
