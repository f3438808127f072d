package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"coachlab/internal/auth"
	"coachlab/internal/config"
	"coachlab/internal/logging"
	"coachlab/internal/service"
	"coachlab/internal/store"
	"coachlab/internal/strava"
)

// appEnv is the wired application for one command invocation
type appEnv struct {
	cfg       *config.Config
	log       *logrus.Logger
	db        *store.DB
	readiness *service.ReadinessService
	power     *service.PowerService
	query     *service.QueryService
	opts      *options
	out       io.Writer
}

// openEnv loads the config, opens the database and builds the services
func openEnv(cmd *cobra.Command, opts *options) (*appEnv, error) {
	cfg, err := config.LoadOrDefault(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.NewWithOutput(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)

	path, err := cfg.DBPath()
	if err != nil {
		return nil, err
	}
	db, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	readiness, err := service.NewReadinessService(db, cfg.Engine, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	power := service.NewPowerService(db, cfg.Engine, logger)

	return &appEnv{
		cfg:       cfg,
		log:       logger,
		db:        db,
		readiness: readiness,
		power:     power,
		query:     service.NewQueryService(db, power, readiness.Policy()),
		opts:      opts,
		out:       cmd.OutOrStdout(),
	}, nil
}

func (e *appEnv) Close() {
	if err := e.db.Close(); err != nil {
		e.log.WithError(err).Warn("Closing database")
	}
}

// athlete resolves --athlete, falling back to the first athlete. On first
// run the default athlete from the config is created.
func (e *appEnv) athlete() (*store.Athlete, error) {
	if e.opts.athleteID != "" {
		return e.db.GetAthlete(e.opts.athleteID)
	}

	athletes, err := e.db.ListAthletes()
	if err != nil {
		return nil, err
	}
	if len(athletes) > 0 {
		return &athletes[0], nil
	}

	name := e.cfg.Athlete.Name
	if name == "" {
		name = "Me"
	}
	a, err := e.db.CreateAthlete(name, e.cfg.Athlete.WeightKg)
	if err != nil {
		return nil, fmt.Errorf("creating default athlete: %w", err)
	}
	e.log.WithFields(logrus.Fields{"athlete": a.ID, "name": a.Name}).Info("Created default athlete")
	return a, nil
}

// syncService builds a Strava-backed sync service from the stored tokens.
// With login set, a missing token starts the OAuth flow.
func (e *appEnv) syncService(login bool) (*service.SyncService, error) {
	if err := e.cfg.ValidateStrava(); err != nil {
		return nil, err
	}
	oauthCfg := e.oauthConfig()

	stored, err := e.db.GetAuth()
	if errors.Is(err, store.ErrNoAuth) && login {
		fmt.Fprintln(e.out, "No Strava authentication found. Starting OAuth flow...")
		stored, err = e.authenticate(context.Background())
	}
	if err != nil {
		return nil, fmt.Errorf("loading strava auth: %w", err)
	}

	token := &oauth2.Token{
		AccessToken:  stored.AccessToken,
		RefreshToken: stored.RefreshToken,
		Expiry:       stored.ExpiresAt,
	}
	tokenSource := auth.NewPersistingTokenSource(oauthCfg, token, e.db)
	client := strava.NewClient(tokenSource)

	return service.NewSyncService(client, e.db, e.power, e.log), nil
}

func (e *appEnv) oauthConfig() *oauth2.Config {
	return auth.NewOAuthConfig(auth.Config{
		ClientID:     e.cfg.Strava.ClientID,
		ClientSecret: e.cfg.Strava.ClientSecret,
	})
}

// authenticate runs the browser OAuth flow and stores the tokens
func (e *appEnv) authenticate(ctx context.Context) (*store.Auth, error) {
	result, err := auth.Authenticate(ctx, e.oauthConfig(), e.out)
	if err != nil {
		return nil, err
	}

	stored := &store.Auth{
		StravaAthleteID: result.AthleteID,
		AccessToken:     result.Token.AccessToken,
		RefreshToken:    result.Token.RefreshToken,
		ExpiresAt:       result.Token.Expiry,
	}
	if err := e.db.SaveAuth(stored); err != nil {
		return nil, fmt.Errorf("saving auth: %w", err)
	}

	fmt.Fprintf(e.out, "\nSuccessfully authenticated as Strava athlete %d!\n", result.AthleteID)
	return stored, nil
}

// today is the local date used when --date is not given
func today() string {
	return time.Now().Format(store.DateLayout)
}
