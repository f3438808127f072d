package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"coachlab/internal/api"
	"coachlab/internal/service"
	"coachlab/internal/store"
)

func newSyncCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Pull power-meter rides from Strava and refresh best efforts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return withAthlete(cmd, opts, func(env *appEnv, a *store.Athlete) error {
				syncService, err := env.syncService(true)
				if err != nil {
					return err
				}
				return runSync(ctx, env, syncService, a.ID)
			})
		},
	}
}

func runSync(ctx context.Context, env *appEnv, svc *service.SyncService, athleteID string) error {
	progress := make(chan service.SyncProgress)
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		phase := ""
		for p := range progress {
			if env.opts.jsonOut {
				continue
			}
			if p.Phase != phase {
				phase = p.Phase
				fmt.Fprintf(env.out, "==> %s\n", phase)
			}
			if p.Phase == "streams" && p.CurrentActivity != "" {
				fmt.Fprintf(env.out, "    [%d/%d] %s\n", p.Completed, p.Total, p.CurrentActivity)
			}
		}
	}()

	result, err := svc.SyncAll(ctx, athleteID, progress)
	<-printed
	if err != nil {
		return err
	}

	if env.opts.jsonOut {
		out := map[string]any{
			"activities_fetched": result.ActivitiesFetched,
			"activities_stored":  result.ActivitiesStored,
			"streams_fetched":    result.StreamsFetched,
			"efforts_updated":    result.EffortsUpdated,
			"errors":             len(result.Errors),
		}
		if result.Fit != nil {
			out["fit"] = api.NewFitResponse(result.Fit)
		}
		return printJSON(env.out, out)
	}

	fmt.Fprintf(env.out, "\n%d rides fetched, %d stored, %d streams analysed, %d bests improved\n",
		result.ActivitiesFetched, result.ActivitiesStored, result.StreamsFetched, result.EffortsUpdated)
	if result.Fit != nil {
		fmt.Fprintf(env.out, "Critical power refitted: CP %.0f W, W' %.0f J\n", result.Fit.CP, result.Fit.WPrime)
	}
	for _, e := range result.Errors {
		fmt.Fprintln(env.out, warningStyle.Render("  ! "+e.Error()))
	}
	short, daily := svc.RateLimitStatus()
	fmt.Fprintln(env.out, mutedStyle.Render(fmt.Sprintf("API requests left: %d (15 min), %d (daily)", short, daily)))
	return nil
}

func newAuthCmd(opts *options) *cobra.Command {
	var logout bool

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Connect coachlab to Strava",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(cmd, opts)
			if err != nil {
				return err
			}
			defer env.Close()

			if logout {
				if err := env.db.DeleteAuth(); err != nil {
					return err
				}
				fmt.Fprintln(env.out, "Strava tokens removed")
				return nil
			}

			if err := env.cfg.ValidateStrava(); err != nil {
				return err
			}
			_, err = env.authenticate(cmd.Context())
			return err
		},
	}
	cmd.Flags().BoolVar(&logout, "logout", false, "Remove stored Strava tokens")
	return cmd
}
