package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/l3aro/go-pyinspect/internal/config"
	"github.com/l3aro/go-pyinspect/internal/log"
)

// cfg is the configuration loaded before any subcommand runs.
var cfg = config.DefaultConfig()

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "pyinspect",
	Short: "pyinspect - Static introspection of Python source",
	Long: `pyinspect reads Python source text and reports its structure without running it.

Commands:
  blocks         Source text of each function
  names          Function names
  docstrings     Cleaned function docstrings
  signatures     Function signatures
  args           Arguments of the first function
  exceptions     Exceptions handled and raised
  imports        Import statements
  variables      Assigned variable names
  todos          TODO comments
  placeholders   Format-string placeholders
  lengths        Line count of each function
  files          Python files under a directory
  report         Full report for a file or directory
  import-string  Import statement for every function in a file
  init           Create a configuration file interactively

Source arguments are file paths, or "-" to read standard input.

Use "pyinspect [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.PersistentFlags().String("config", "", "Config file path (default: project then global config)")
	RootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	RootCmd.PersistentFlags().Bool("json-log", false, "Write logs as JSON")
	RootCmd.PersistentFlags().BoolP("json", "j", false, "Output as JSON")

	RootCmd.AddCommand(blocksCmd)
	RootCmd.AddCommand(namesCmd)
	RootCmd.AddCommand(docstringsCmd)
	RootCmd.AddCommand(signaturesCmd)
	RootCmd.AddCommand(lengthsCmd)
	RootCmd.AddCommand(argsCmd)
	RootCmd.AddCommand(exceptionsCmd)
	RootCmd.AddCommand(importsCmd)
	RootCmd.AddCommand(importStringCmd)
	RootCmd.AddCommand(variablesCmd)
	RootCmd.AddCommand(todosCmd)
	RootCmd.AddCommand(placeholdersCmd)
	RootCmd.AddCommand(filesCmd)
	RootCmd.AddCommand(reportCmd)
	RootCmd.AddCommand(initCmd)
}

// setup loads configuration and applies the logging flags.
func setup(cmd *cobra.Command) error {
	configPath, _ := cmd.Flags().GetString("config")

	var err error
	if configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	levelName := cfg.LogLevel
	if cmd.Flags().Changed("log-level") {
		levelName, _ = cmd.Flags().GetString("log-level")
	}
	level, err := log.ParseLevel(levelName)
	if err != nil {
		return err
	}
	log.Default().SetLevel(level)

	jsonLog := cfg.LogJSON
	if cmd.Flags().Changed("json-log") {
		jsonLog, _ = cmd.Flags().GetBool("json-log")
	}
	log.Default().SetJSONOutput(jsonLog)

	log.Debug("configuration loaded", "output_format", cfg.OutputFormat, "workers", cfg.Workers)
	return nil
}
