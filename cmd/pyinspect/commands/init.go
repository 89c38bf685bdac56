package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/l3aro/go-pyinspect/internal/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize pyinspect configuration interactively",
	Long: `Guides you through setting up pyinspect configuration step by step and
saves it globally or for the current project.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit(cmd)
	},
}

func runInit(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	c := config.DefaultConfig()

	// === SECTION 1: Function selection ===
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Skip private functions?").
				Description("Functions whose name starts with an underscore").
				Value(&c.IgnorePrivate),
			huh.NewConfirm().
				Title("Skip nested functions?").
				Description("Only consider module-level definitions").
				Value(&c.IgnoreNested),
			huh.NewInput().
				Title("TODO pattern").
				Placeholder(c.TodoPattern).
				Value(&c.TodoPattern).
				Validate(func(s string) error {
					_, err := regexp.Compile(s)
					return err
				}),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	// === SECTION 2: Scanning and reports ===
	exclude := strings.Join(c.Exclude, ", ")
	workers := strconv.Itoa(c.Workers)
	format := string(c.OutputFormat)
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Skip test modules when scanning?").
				Value(&c.ExcludeTests),
			huh.NewInput().
				Title("Exclude globs (comma separated, optional)").
				Placeholder("build/**, migrations/**").
				Value(&exclude),
			huh.NewSelect[string]().
				Title("Report format").
				Options(
					huh.NewOption("Text", string(config.FormatText)),
					huh.NewOption("JSON", string(config.FormatJSON)),
					huh.NewOption("YAML", string(config.FormatYAML)),
					huh.NewOption("MessagePack", string(config.FormatMsgpack)),
				).
				Value(&format),
			huh.NewInput().
				Title("Parallel workers").
				Value(&workers).
				Validate(func(s string) error {
					if n, err := strconv.Atoi(s); err != nil || n <= 0 {
						return fmt.Errorf("enter a positive number")
					}
					return nil
				}),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	c.OutputFormat = config.OutputFormat(format)
	c.Workers, _ = strconv.Atoi(workers)
	c.Exclude = config.SplitList(exclude)

	// === SECTION 3: Config location ===
	var saveLocationChoice string
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Save Configuration").
				Description("Where to save the configuration file?").
				Options(
					huh.NewOption("Global (~/.pyinspect/config.yaml)", "global"),
					huh.NewOption("Project (./.pyinspect/config.yaml)", "project"),
				).
				Value(&saveLocationChoice),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	configPath := config.ProjectConfigPath()
	if saveLocationChoice == "global" {
		configPath = config.GlobalConfigPath()
	}

	if _, err := os.Stat(configPath); err == nil {
		var overwrite bool
		form = huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Config file exists").
					Description(fmt.Sprintf("Overwrite existing config at %s?", configPath)).
					Affirmative("Overwrite").
					Negative("Cancel").
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("interactive prompt failed: %w", err)
		}
		if !overwrite {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	if err := c.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	printConfigPreview(cmd, configPath, c)

	if err := c.Save(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	absPath, _ := filepath.Abs(configPath)
	fmt.Fprintf(out, "Configuration saved to: %s\n", absPath)
	return nil
}

func printConfigPreview(cmd *cobra.Command, path string, c *config.Config) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "\n=== Configuration Preview ===")
	fmt.Fprintf(out, "Config path: %s\n", path)
	fmt.Fprintf(out, "Ignore private: %t\n", c.IgnorePrivate)
	fmt.Fprintf(out, "Ignore nested: %t\n", c.IgnoreNested)
	fmt.Fprintf(out, "TODO pattern: %s\n", c.TodoPattern)
	fmt.Fprintf(out, "Exclude tests: %t\n", c.ExcludeTests)
	if len(c.Exclude) > 0 {
		fmt.Fprintf(out, "Exclude: %s\n", strings.Join(c.Exclude, ", "))
	}
	fmt.Fprintf(out, "Format: %s\n", c.OutputFormat)
	fmt.Fprintf(out, "Workers: %d\n", c.Workers)
	fmt.Fprintln(out, "================================")
}
