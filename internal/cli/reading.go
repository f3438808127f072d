package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"coachlab/internal/api"
	"coachlab/internal/service"
	"coachlab/internal/store"
)

func newReadingCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "reading",
		Aliases: []string{"hrv"},
		Short:   "Record and review morning HRV readings",
	}
	cmd.AddCommand(newReadingAddCmd(opts), newReadingShowCmd(opts), newReadingHistoryCmd(opts))
	return cmd
}

func newReadingAddCmd(opts *options) *cobra.Command {
	var file, date, notes string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Submit an RR-interval recording",
		Long: `Submit a morning RR-interval recording. The file holds one interval per
line or a comma separated list, in milliseconds or seconds. Use --file - to
read from stdin.

Examples:
  coachlab reading add --file rr.txt
  coachlab reading add --file rr.csv --date 2024-03-01 --notes "poor sleep"
  cat rr.txt | coachlab reading add --file -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rr, err := readRRFile(file, cmd.InOrStdin())
			if err != nil {
				return err
			}

			env, err := openEnv(cmd, opts)
			if err != nil {
				return err
			}
			defer env.Close()

			a, err := env.athlete()
			if err != nil {
				return err
			}
			if date == "" {
				date = today()
			}

			result, err := env.readiness.SubmitReading(a.ID, date, rr, notes)
			if errors.Is(err, service.ErrInsufficientData) && result != nil {
				printWarnings(env.out, result.Cleaning.Warnings)
				return fmt.Errorf("reading not stored: %w", err)
			}
			if err != nil {
				return err
			}

			if opts.jsonOut {
				return printJSON(env.out, api.NewReadingResponse(result))
			}
			printReading(env.out, result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "RR interval file, - for stdin")
	cmd.Flags().StringVar(&date, "date", "", "Reading date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-text notes for the day")
	return cmd
}

func newReadingShowCmd(opts *options) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the reading and readiness for a day",
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
			if date == "" {
				date = today()
			}

			entry, err := env.readiness.Today(a.ID, date)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return printJSON(env.out, api.NewDiaryEntryResponse(entry))
			}
			printDiary(env.out, []store.DiaryEntry{*entry})
			fmt.Fprintln(env.out, entry.Recommendation)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Reading date YYYY-MM-DD (default today)")
	return cmd
}

func newReadingHistoryCmd(opts *options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent readings, newest first",
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

			entries, err := env.readiness.History(a.ID, limit)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				out := make([]api.DiaryEntryResponse, len(entries))
				for i := range entries {
					out[i] = api.NewDiaryEntryResponse(&entries[i])
				}
				return printJSON(env.out, out)
			}
			printDiary(env.out, entries)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", service.DiaryHistoryLimit, "Number of readings")
	return cmd
}
