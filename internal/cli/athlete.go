package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"coachlab/internal/api"
	"coachlab/internal/config"
)

func newInitCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create an example config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.CreateExample(); err != nil {
				return fmt.Errorf("creating example config: %w", err)
			}
			dir, err := config.GetConfigDir()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config file at:\n  %s/config.json\n\n", dir)
			fmt.Fprintln(out, "Add your Strava API credentials to sync rides.")
			fmt.Fprintln(out, "Get them from: https://www.strava.com/settings/api")
			return nil
		},
	}
}

func newAthleteCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "athlete",
		Short: "Manage athletes",
	}

	var weight float64
	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Add an athlete",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(strings.Join(args, " "))
			if name == "" {
				return fmt.Errorf("name must not be blank")
			}
			if weight <= 0 {
				return fmt.Errorf("--weight must be positive")
			}

			env, err := openEnv(cmd, opts)
			if err != nil {
				return err
			}
			defer env.Close()

			a, err := env.db.CreateAthlete(name, weight)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return printJSON(env.out, api.NewAthleteResponse(a))
			}
			fmt.Fprintf(env.out, "Added %s (%s)\n", a.Name, a.ID)
			return nil
		},
	}
	add.Flags().Float64Var(&weight, "weight", 70, "Body weight in kg")

	list := &cobra.Command{
		Use:   "list",
		Short: "List athletes",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(cmd, opts)
			if err != nil {
				return err
			}
			defer env.Close()

			athletes, err := env.db.ListAthletes()
			if err != nil {
				return err
			}
			if opts.jsonOut {
				out := make([]api.AthleteResponse, len(athletes))
				for i := range athletes {
					out[i] = api.NewAthleteResponse(&athletes[i])
				}
				return printJSON(env.out, out)
			}

			t := newTable("ID", "NAME", "WEIGHT", "CP", "W'")
			for _, a := range athletes {
				t.addRow(a.ID, a.Name, fmt.Sprintf("%.1f kg", a.WeightKg), optional(a.CP, "%.0f W"), optional(a.WPrime, "%.0f J"))
			}
			t.render(env.out)
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the athlete profile and power model",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(cmd, opts)
			if err != nil {
				return err
			}
			defer env.Close()

			a, err := env.athlete()
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return printJSON(env.out, api.NewAthleteResponse(a))
			}
			printAthlete(env.out, a)
			return nil
		},
	}

	cmd.AddCommand(add, list, show)
	return cmd
}
