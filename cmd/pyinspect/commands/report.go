package commands

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/l3aro/go-pyinspect/internal/config"
	"github.com/l3aro/go-pyinspect/internal/log"
	"github.com/l3aro/go-pyinspect/internal/report"
	"github.com/l3aro/go-pyinspect/internal/scanner"
)

// filesCmd represents the files command
var filesCmd = &cobra.Command{
	Use:   "files [dir]",
	Short: "List Python files under a directory",
	Long: `Lists the base names of Python files under dir, sorted. With --using,
lists the paths of files that call the named function instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) > 0 {
			root = args[0]
		}

		if using, _ := cmd.Flags().GetString("using"); using != "" {
			paths, err := scanner.FilesUsingFunction(root, using)
			if err != nil {
				return err
			}
			return printLines(cmd, paths)
		}

		excludeTests := cfg.ExcludeTests
		if cmd.Flags().Changed("exclude-tests") {
			excludeTests, _ = cmd.Flags().GetBool("exclude-tests")
		}

		names, err := scanner.FileNames(root, excludeTests)
		if err != nil {
			return err
		}
		return printLines(cmd, names)
	},
}

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report [path]",
	Short: "Inspect a file or directory and print a full report",
	Long: `Inspects one Python file, or every Python file under a directory, and
prints functions, imports, exceptions, constants and TODOs per module.

Files that fail to parse are reported with their error; the rest of the
report is still produced.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "."
		if len(args) > 0 {
			path = args[0]
		}

		format := cfg.OutputFormat
		if cmd.Flags().Changed("format") {
			f, _ := cmd.Flags().GetString("format")
			format = config.OutputFormat(f)
		} else if jsonOutput(cmd) {
			format = config.FormatJSON
		}

		workers := cfg.Workers
		if cmd.Flags().Changed("workers") {
			workers, _ = cmd.Flags().GetInt("workers")
		}

		opts := report.DefaultOptions()
		opts.Extract = selection(cmd)
		opts.TodoPattern = cfg.TodoPattern
		opts.Workers = workers
		opts.Scan.Include = cfg.Include
		opts.Scan.Exclude = cfg.Exclude
		opts.Scan.ExcludeTests = cfg.ExcludeTests

		progress, _ := cmd.Flags().GetBool("progress")
		var bar *progressbar.ProgressBar
		if progress && log.IsTerminal(os.Stderr) {
			opts.OnStart = func(total int) {
				bar = progressbar.NewOptions(total,
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionEnableColorCodes(true),
					progressbar.OptionShowBytes(false),
					progressbar.OptionSetWidth(40),
					progressbar.OptionShowCount(),
					progressbar.OptionSetDescription("[cyan]Inspecting[reset]"),
					progressbar.OptionOnCompletion(func() {
						fmt.Fprintln(os.Stderr)
					}),
				)
			}
			opts.OnFile = func(string) {
				_ = bar.Add(1)
			}
		}

		log.Debug("building report", "path", path, "workers", workers)
		rep, err := report.Build(cmd.Context(), path, opts)
		if err != nil {
			return err
		}
		if bar != nil {
			_ = bar.Finish()
		}

		for _, m := range rep.Modules {
			if m.Error != "" {
				log.Warn("unable to inspect module", "path", m.Path, "error", m.Error)
			}
		}

		return report.Encode(cmd.OutOrStdout(), rep, format)
	},
}

func init() {
	filesCmd.Flags().String("using", "", "List files that call this function")
	filesCmd.Flags().Bool("exclude-tests", false, "Skip test modules")

	selectionFlags(reportCmd)
	reportCmd.Flags().StringP("format", "f", "", "Output format: text, json, yaml or msgpack (default from config)")
	reportCmd.Flags().IntP("workers", "w", 0, "Files inspected in parallel (default from config)")
	reportCmd.Flags().Bool("progress", false, "Show a progress bar on stderr")
}

