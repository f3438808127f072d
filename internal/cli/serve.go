package cli

import (
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"coachlab/internal/api"
)

func newServeCmd(opts *options) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			env, err := openEnv(cmd, opts)
			if err != nil {
				return err
			}
			defer env.Close()

			if addr == "" {
				addr = env.cfg.Server.Addr
			}
			if env.log.GetLevel() < logrus.DebugLevel {
				gin.SetMode(gin.ReleaseMode)
			}

			router := api.NewRouter(api.Services{
				Store:     env.db,
				Readiness: env.readiness,
				Power:     env.power,
				Query:     env.query,
			}, env.log)

			return api.NewServer(addr, router, env.log).Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :8080)")
	return cmd
}
