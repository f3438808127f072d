// Package cli contains the cobra command tree for coachlab.
package cli

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"coachlab/internal/tui"
)

// options holds the persistent flags shared by every command
type options struct {
	configPath string
	athleteID  string
	jsonOut    bool
}

// NewRootCmd builds the full command tree
func NewRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "coachlab",
		Short: "Daily HRV readiness and critical power modelling for cyclists",
		Long: `coachlab turns a morning RR-interval recording into a readiness call
(Ready / Caution / Recover) against your rolling rMSSD baseline, and fits a
critical power model from your best efforts to produce pacing targets.

Run 'coachlab' with no arguments to open the dashboard.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file path (default: ~/.coachlab/config.json)")
	cmd.PersistentFlags().StringVar(&opts.athleteID, "athlete", "", "Athlete ID (default: the first athlete)")
	cmd.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "Output as JSON")

	cmd.AddCommand(
		newInitCmd(opts),
		newAthleteCmd(opts),
		newReadingCmd(opts),
		newPowerCmd(opts),
		newSyncCmd(opts),
		newAuthCmd(opts),
		newServeCmd(opts),
	)

	return cmd
}

// Execute is the entry point called from main
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// runDashboard opens the TUI on a terminal and prints a summary otherwise
func runDashboard(cmd *cobra.Command, opts *options) error {
	env, err := openEnv(cmd, opts)
	if err != nil {
		return err
	}
	defer env.Close()

	athlete, err := env.athlete()
	if err != nil {
		return err
	}

	if opts.jsonOut || !isatty.IsTerminal(os.Stdout.Fd()) {
		data, err := env.query.Dashboard(athlete.ID, today())
		if err != nil {
			return err
		}
		return printDashboard(env.out, data, opts.jsonOut)
	}

	// Log lines would corrupt the alt screen
	env.log.SetOutput(io.Discard)

	syncService, err := env.syncService(false)
	if err != nil {
		// The sync screen explains how to connect Strava
		syncService = nil
	}

	app := tui.NewApp(*athlete, env.query, env.readiness, syncService)
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}
