// Command ls-ephemeris computes and displays apparent planetary
// positions, interactively or as text output.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	ephemeris "github.com/litescript/ls-ephemeris"
	"github.com/litescript/ls-ephemeris/internal/astro"
	"github.com/litescript/ls-ephemeris/internal/logging"
	"github.com/litescript/ls-ephemeris/internal/report"
	"github.com/litescript/ls-ephemeris/internal/ui"
)

// CLI flags for headless mode
var (
	summaryMode   bool
	jsonPath      string
	watchInterval time.Duration
	siderealName  string
)

func main() {
	configPath := flag.String("config", "", "YAML config file")
	jdFlag := flag.Float64("jd", 0, "Julian day (UT); 0 means now")
	dateFlag := flag.String("date", "", "UT date (2006-01-02 or 2006-01-02T15:04:05)")
	bodyFlag := flag.String("body", "", "Comma-separated body names or asteroid numbers")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.BoolVar(&summaryMode, "summary", false, "Print text table instead of TUI")
	flag.StringVar(&jsonPath, "json", "", "Export positions as JSON to file (use - for stdout)")
	flag.DurationVar(&watchInterval, "watch", 0, "Repeat output at interval (e.g., 30s)")
	flag.StringVar(&siderealName, "sidereal", "", "Sidereal mode (fagan-bradley, lahiri, ...)")
	flag.Parse()

	logger := logging.Setup(*logLevel)

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if cfg.LogLevel != "" && *logLevel == "info" {
		logger = logging.Setup(cfg.LogLevel)
	}

	ctx := ephemeris.New()
	ctx.SetLogger(logger)
	if err := cfg.Apply(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if siderealName != "" {
		mode, err := ephemeris.ParseSidMode(siderealName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		ctx.SetSiderealMode(mode, 0, 0, 0)
	}

	bodies, err := cfg.BodyList(report.DefaultBodies)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *bodyFlag != "" {
		bodies, err = parseBodyList(*bodyFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	jdUT, err := resolveTime(*jdFlag, *dateFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	isTTY := term.IsTerminal(int(os.Stdout.Fd()))
	headless := summaryMode || jsonPath != "" || watchInterval != 0 || !isTTY
	if headless {
		runHeadless(ctx, bodies, jdUT, *jdFlag == 0 && *dateFlag == "")
		return
	}

	model := ui.New(ctx, bodies)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

// resolveTime converts the -jd or -date flag to a UT Julian day,
// defaulting to now.
func resolveTime(jd float64, date string) (float64, error) {
	if jd != 0 && date != "" {
		return 0, fmt.Errorf("-jd and -date are mutually exclusive")
	}
	if jd != 0 {
		return jd, nil
	}
	if date != "" {
		for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, date); err == nil {
				return astro.JulianDay(t.UTC()), nil
			}
		}
		return 0, fmt.Errorf("cannot parse date %q", date)
	}
	return astro.JulianDay(time.Now().UTC()), nil
}

func parseBodyList(s string) ([]ephemeris.Body, error) {
	var out []ephemeris.Body
	for _, name := range strings.Split(s, ",") {
		b, err := ephemeris.ParseBody(name)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// runHeadless prints position tables without starting the TUI.
func runHeadless(ctx *ephemeris.Context, bodies []ephemeris.Body, jdUT float64, followClock bool) {
	sidereal := siderealName != ""

	outputOnce := func(jd float64) error {
		var flags ephemeris.Flag
		if sidereal {
			flags |= ephemeris.FlagSidereal
		}
		tjd := astro.UTToTT(jd)
		rows := report.GenerateRows(ctx, tjd, bodies, flags)

		if jsonPath != "" {
			export := report.ExportRows(ctx, rows, tjd, sidereal)
			if jsonPath == "-" {
				return export.WriteJSON(os.Stdout)
			}
			f, err := os.Create(jsonPath)
			if err != nil {
				return fmt.Errorf("create JSON file: %w", err)
			}
			defer f.Close()
			if err := export.WriteJSON(f); err != nil {
				return fmt.Errorf("write JSON: %w", err)
			}
		}

		if summaryMode || jsonPath == "" {
			report.WriteTable(os.Stdout, rows, tjd, sidereal)
		}
		return nil
	}

	if watchInterval == 0 {
		if err := outputOnce(jdUT); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	if err := outputOnce(jdUT); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-sigCh:
			return
		case <-ticker.C:
			jd := jdUT
			if followClock {
				jd = astro.JulianDay(time.Now().UTC())
			}
			fmt.Println()
			if err := outputOnce(jd); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
		}
	}
}
