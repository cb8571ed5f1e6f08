// Command reportgen builds the monthly drought and flood risk slide decks
// from a PPTX template, remote forecast imagery, and a YAML configuration.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/hii-thaiwater/reportgen/internal/config"
	"github.com/hii-thaiwater/reportgen/internal/fetch"
	"github.com/hii-thaiwater/reportgen/internal/logging"
	"github.com/hii-thaiwater/reportgen/internal/output"
	"github.com/hii-thaiwater/reportgen/internal/report"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type rootFlags struct {
	reportType string
	year       int
	month      int
	dev        bool
	configPath string
	outputDir  string
	logDir     string
	logFile    string
	logLevel   string
	quiet      bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:   "reportgen",
		Short: "Generate drought and flood risk analysis slide decks",
		Long: `reportgen fills a PPTX template with forecast imagery and Thai
calendar text for one base month, producing the official monthly
risk-analysis deck. Missing report type, year, or month are prompted
interactively.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.reportType, "report", "r", "", `report type: "drought" or "flood" (prompted when omitted)`)
	f.IntVarP(&flags.year, "year", "y", 0, "Gregorian base year (prompted when omitted)")
	f.IntVarP(&flags.month, "month", "m", 0, "base month 1-12 (prompted when omitted)")
	f.BoolVar(&flags.dev, "dev", false, "write a timestamped file under the _dev output directory")
	f.StringVarP(&flags.configPath, "config", "c", "config.yaml", "configuration file")
	f.StringVarP(&flags.outputDir, "output-dir", "o", "output", "base directory for generated decks")
	f.StringVar(&flags.logDir, "log-dir", "logs", "directory for per-run log files")
	f.StringVar(&flags.logFile, "log-file", "", "explicit log file path (overrides --log-dir naming)")
	f.StringVar(&flags.logLevel, "log-level", "info", "console log level: debug, info, warn, error")
	f.BoolVarP(&flags.quiet, "quiet", "q", false, "suppress console output")

	cmd.AddCommand(newInspectCmd())
	return cmd
}

func runGenerate(cmd *cobra.Command, flags *rootFlags) error {
	if err := promptMissing(flags); err != nil {
		return err
	}

	level, err := parseLevel(flags.logLevel)
	if err != nil {
		return err
	}

	logPath := flags.logFile
	if logPath == "" {
		logPath = logging.RunLogPath(flags.logDir, flags.reportType, flags.year, flags.month, time.Now())
	}
	logger, closeLog, err := logging.New(logging.Options{
		Level:    level,
		Quiet:    flags.quiet,
		FilePath: logPath,
	})
	if err != nil {
		return err
	}
	defer closeLog()

	if err := logging.Prune(filepath.Dir(logPath), logging.KeepRunLogs); err != nil {
		logger.Warn("failed to prune old run logs", "error", err)
	}

	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}
	rpt, err := cfg.Report(flags.reportType)
	if err != nil {
		return err
	}

	mode := output.ModeProd
	if flags.dev {
		mode = output.ModeDev
	}
	outPath, err := output.NewResolver(flags.outputDir).BuildPath(output.Spec{
		ReportType: flags.reportType,
		Year:       flags.year,
		Month:      flags.month,
		Mode:       mode,
	})
	if err != nil {
		return err
	}

	fetcher := fetch.New(logger, fetch.DefaultOptions())
	err = report.Generate(cmd.Context(), logger, flags.reportType, rpt, flags.year, flags.month, outPath, report.Deps{Images: fetcher})
	if err != nil {
		logger.Error("report generation failed", "error", err)
		return err
	}

	if !flags.quiet {
		fmt.Fprintln(cmd.OutOrStdout(), outPath)
		openFolder(filepath.Dir(outPath), logger)
	}
	return nil
}

// promptMissing asks for report type, year, and month when the flags were
// omitted. Quiet runs are non-interactive, so missing values are an error.
func promptMissing(flags *rootFlags) error {
	missing := flags.reportType == "" || flags.year == 0 || flags.month == 0
	if missing && flags.quiet {
		return fmt.Errorf("--report, --year, and --month are required with --quiet")
	}

	now := time.Now()
	if flags.reportType == "" {
		prompt := &survey.Select{
			Message: "Report type:",
			Options: []string{"drought", "flood"},
		}
		if err := survey.AskOne(prompt, &flags.reportType); err != nil {
			return err
		}
	}
	if flags.year == 0 {
		v, err := promptInt("Base year (Gregorian):", now.Year(), 1900, 3000)
		if err != nil {
			return err
		}
		flags.year = v
	}
	if flags.month == 0 {
		v, err := promptInt("Base month (1-12):", int(now.Month()), 1, 12)
		if err != nil {
			return err
		}
		flags.month = v
	}
	return nil
}

func promptInt(message string, def, min, max int) (int, error) {
	prompt := &survey.Input{Message: message, Default: strconv.Itoa(def)}
	validate := func(ans interface{}) error {
		s, _ := ans.(string)
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("enter a number")
		}
		if n < min || n > max {
			return fmt.Errorf("enter a number between %d and %d", min, max)
		}
		return nil
	}

	var answer string
	if err := survey.AskOne(prompt, &answer, survey.WithValidator(validate)); err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(answer))
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}

// openFolder reveals the output directory in the platform file manager.
// Best effort: failure only logs.
func openFolder(dir string, logger *slog.Logger) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("explorer", dir)
	case "darwin":
		cmd = exec.Command("open", dir)
	default:
		cmd = exec.Command("xdg-open", dir)
	}
	if err := cmd.Start(); err != nil {
		logger.Debug("could not open output folder", "dir", dir, "error", err)
	}
}
