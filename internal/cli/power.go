package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"coachlab/internal/analysis"
	"coachlab/internal/api"
	"coachlab/internal/store"
)

func newPowerCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "power",
		Short: "Best efforts, critical power and pacing",
	}
	cmd.AddCommand(
		newEffortCmd(opts),
		newEffortsCmd(opts),
		newFitCmd(opts),
		newPacingCmd(opts),
		newRampCmd(opts),
		newFiveMinuteCmd(opts),
		newTlimCmd(opts),
	)
	return cmd
}

// withAthlete opens the environment and resolves the athlete for a subcommand
func withAthlete(cmd *cobra.Command, opts *options, fn func(env *appEnv, a *store.Athlete) error) error {
	env, err := openEnv(cmd, opts)
	if err != nil {
		return err
	}
	defer env.Close()

	a, err := env.athlete()
	if err != nil {
		return err
	}
	return fn(env, a)
}

func newEffortCmd(opts *options) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "effort DURATION WATTS",
		Short: "Record a best effort, e.g. 'effort 5m 340' or 'effort 20:00 280'",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			seconds, err := parseSeconds(args[0])
			if err != nil {
				return err
			}
			watts, err := parseWatts(args[1])
			if err != nil {
				return err
			}
			var achievedAt time.Time
			if date != "" {
				achievedAt, err = time.Parse(store.DateLayout, date)
				if err != nil {
					return fmt.Errorf("--date must be YYYY-MM-DD")
				}
			}

			return withAthlete(cmd, opts, func(env *appEnv, a *store.Athlete) error {
				updated, err := env.power.RecordEffort(a.ID, seconds, watts, achievedAt)
				if err != nil {
					return err
				}
				if opts.jsonOut {
					return printJSON(env.out, map[string]bool{"new_best": updated})
				}
				if updated {
					fmt.Fprintf(env.out, "New best for %ds: %.0f W\n", seconds, watts)
				} else {
					fmt.Fprintf(env.out, "Kept the existing best for %ds\n", seconds)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Date the effort was achieved (default today)")
	return cmd
}

func newEffortsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "efforts",
		Short: "List best efforts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAthlete(cmd, opts, func(env *appEnv, a *store.Athlete) error {
				efforts, err := env.power.Efforts(a.ID)
				if err != nil {
					return err
				}
				if opts.jsonOut {
					return printJSON(env.out, api.NewEffortResponses(efforts))
				}
				printEfforts(env.out, efforts)
				return nil
			})
		},
	}
}

func newFitCmd(opts *options) *cobra.Command {
	var model string

	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Fit critical power and W' from efforts between 3 and 20 minutes",
		RunE: func(cmd *cobra.Command, args []string) error {
			var cpModel analysis.CPModel
			if model != "" {
				m, err := analysis.ParseCPModel(model)
				if err != nil {
					return err
				}
				cpModel = m
			}

			return withAthlete(cmd, opts, func(env *appEnv, a *store.Athlete) error {
				fit, err := env.power.FitCriticalPower(a.ID, cpModel)
				if err != nil {
					return err
				}
				if opts.jsonOut {
					return printJSON(env.out, api.NewFitResponse(fit))
				}
				fmt.Fprintf(env.out, "CP %.0f W  W' %.0f J  (%s, %d efforts", fit.CP, fit.WPrime, fit.Model, fit.PointsUsed)
				if fit.R2 != nil {
					fmt.Fprintf(env.out, ", R² %.4f", *fit.R2)
				}
				fmt.Fprintln(env.out, ")")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&model, "model", "", "work_time or inverse_time (default from config)")
	return cmd
}

func newPacingCmd(opts *options) *cobra.Command {
	var durations string

	cmd := &cobra.Command{
		Use:   "pacing",
		Short: "Show sustainable power for target durations",
		RunE: func(cmd *cobra.Command, args []string) error {
			seconds, err := api.ParseDurations(durations)
			if err != nil {
				return err
			}

			return withAthlete(cmd, opts, func(env *appEnv, a *store.Athlete) error {
				targets, err := env.power.PacingTable(a.ID, seconds)
				if err != nil {
					return err
				}
				if opts.jsonOut {
					return printJSON(env.out, api.NewPacingResponses(targets))
				}
				printPacing(env.out, targets)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&durations, "durations", "", "Comma separated seconds, e.g. 180,300,1200")
	return cmd
}

func newRampCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "ramp WATTS",
		Short: "Record ramp test peak power (estimates VO2max)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			watts, err := parseWatts(args[0])
			if err != nil {
				return err
			}
			return withAthlete(cmd, opts, func(env *appEnv, a *store.Athlete) error {
				updated, err := env.power.RecordRampTest(a.ID, watts)
				return showAthlete(env, updated, err)
			})
		},
	}
}

func newFiveMinuteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "five-min WATTS",
		Aliases: []string{"5min"},
		Short:   "Record a maximal 5 minute effort (sets pVO2max)",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			watts, err := parseWatts(args[0])
			if err != nil {
				return err
			}
			return withAthlete(cmd, opts, func(env *appEnv, a *store.Athlete) error {
				updated, err := env.power.RecordFiveMinutePower(a.ID, watts)
				return showAthlete(env, updated, err)
			})
		},
	}
}

func newTlimCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tlim DURATION",
		Short: "Record an observed time to exhaustion at pVO2max",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seconds, err := parseSeconds(args[0])
			if err != nil {
				return err
			}
			return withAthlete(cmd, opts, func(env *appEnv, a *store.Athlete) error {
				updated, err := env.power.RecordTlimObservation(a.ID, float64(seconds))
				return showAthlete(env, updated, err)
			})
		},
	}
}

func showAthlete(env *appEnv, a *store.Athlete, err error) error {
	if err != nil {
		return err
	}
	if env.opts.jsonOut {
		return printJSON(env.out, api.NewAthleteResponse(a))
	}
	printAthlete(env.out, a)
	return nil
}

// parseSeconds accepts plain seconds ("300"), Go durations ("5m", "1h30m")
// and clock notation ("20:00", "1:00:00")
func parseSeconds(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n <= 0 {
			return 0, fmt.Errorf("duration %q must be positive", s)
		}
		return n, nil
	}

	if strings.Contains(s, ":") {
		total := 0
		for _, part := range strings.Split(s, ":") {
			n, err := strconv.Atoi(part)
			if err != nil || n < 0 {
				return 0, fmt.Errorf("invalid duration %q", s)
			}
			total = total*60 + n
		}
		if total <= 0 {
			return 0, fmt.Errorf("duration %q must be positive", s)
		}
		return total, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil || d < time.Second {
		return 0, fmt.Errorf("invalid duration %q: use seconds, 5m or 20:00", s)
	}
	return int(d.Seconds()), nil
}

func parseWatts(s string) (float64, error) {
	w, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "W"), 64)
	if err != nil || w <= 0 {
		return 0, fmt.Errorf("invalid power %q: want positive watts", s)
	}
	return w, nil
}
