package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/abhisek/studyreport/internal/httpapi"
)

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := buildApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.cfg.LogMode == "prod" {
				gin.SetMode(gin.ReleaseMode)
			}
			if addr == "" {
				addr = a.cfg.HTTPAddr
			}
			router := httpapi.NewRouter(httpapi.RouterConfig{
				Log:     a.log,
				Reports: httpapi.NewReportHandler(a.log, a.engine),
				Ping:    a.store.Ping,
			})
			return httpapi.Serve(ctx, a.log, addr, router)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides STUDYREPORT_HTTP_ADDR)")
	return cmd
}
