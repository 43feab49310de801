package commands

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/WSG23/overlayreview/internal/config"
	"github.com/WSG23/overlayreview/internal/logger"
	"github.com/WSG23/overlayreview/internal/server"
)

var (
	flagAddr        string
	flagServeFile   string
	flagAllowOrigin []string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the review API over HTTP",
	Long: `Serves review reports, bulk decisions and the export gate for front-end review
screens. Suggestions come from --api-url, or from --file for offline review, in
which case decisions are disabled.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", ":8080", "Listen address")
	serveCmd.Flags().StringVar(&flagServeFile, "file", "", "Serve suggestions from a JSON export instead of the backend")
	serveCmd.Flags().StringSliceVar(&flagAllowOrigin, "allow-origin", nil, "CORS origins allowed to call the API (default: local dev origins)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd, ".")
	if !cmd.Flags().Changed("addr") && cfg.Addr != "" {
		flagAddr = cfg.Addr
	}
	log := newLogger(cmd)
	defer log.Sync()

	h, err := newServeHandler(cfg, log)
	if err != nil {
		return err
	}
	if flagLogMode == "prod" || flagLogMode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := server.NewServer(server.RouterConfig{
		HealthHandler: server.NewHealthHandler(),
		ReviewHandler: h,
		Log:           log,
		AllowOrigins:  flagAllowOrigin,
	})

	ctx, cancel := contextWithInterrupt()
	defer cancel()

	log.Info("serving review API", "addr", flagAddr)
	return srv.Run(ctx, flagAddr)
}

// newServeHandler picks the suggestion source and resolves the configured
// defaults the API falls back to when a request sets no filters.
func newServeHandler(cfg config.Config, log *logger.Logger) (*server.ReviewHandler, error) {
	statuses, err := cfg.DefaultStatuses()
	if err != nil {
		return nil, err
	}
	severities, err := cfg.DefaultSeverities()
	if err != nil {
		return nil, fmt.Errorf("config severities: %w", err)
	}
	gate, err := cfg.Gate()
	if err != nil {
		return nil, err
	}
	defaults := server.Defaults{
		Statuses:          statuses,
		Severities:        severities,
		UnitSpacePrefixes: cfg.UnitSpacePrefixes,
		Gate:              gate,
	}

	if flagServeFile != "" {
		log.Info("serving suggestions from file; decisions disabled", "file", flagServeFile)
		return server.NewReviewHandler(fileSource{path: flagServeFile}, nil, defaults, flagConcurrency, log), nil
	}
	c, err := newClient()
	if err != nil {
		return nil, err
	}
	return server.NewReviewHandler(c, c, defaults, flagConcurrency, log), nil
}
