package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"db-corrector/core/config"
	"db-corrector/core/loader"
	"db-corrector/core/logger"
	"db-corrector/core/middleware/auth"
	"db-corrector/core/middleware/rayid"
	"db-corrector/core/storage"
	"db-corrector/feature/correction"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "db-corrector/docs/swagger"
)

// @title DB Corrector API
// @version 1.0
// @description API for reconciling a target database against a reference database.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the db-corrector server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(configDir)
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		if !cfg.Server.IsValidMode() {
			logg.Fatal("Invalid server mode", zap.String("mode", cfg.Server.Mode))
		}

		// 3. Resolve Tables
		specs, err := cfg.TableSpecs(configDir)
		if err != nil {
			logg.Fatal("Failed to resolve tables", zap.Error(err))
		}

		// 4. Initialize Storage (Optional)
		var store storage.Client
		if cfg.Storage.Enabled {
			store, err = storage.NewClient(cfg.Storage)
			if err != nil {
				logg.Fatal("Failed to create storage client", zap.Error(err))
			}
			if err := storage.EnsureBucket(cmd.Context(), store, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
				logg.Warn("Report bucket unavailable, reports will not be published", zap.Error(err))
				store = nil
			}
		}

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		// 5. Initialize Feature Loader
		mgr := loader.NewManager()
		mgr.Register(correction.NewFeature(correction.Options{
			Reference:    cfg.Reference,
			Target:       cfg.Target,
			Tables:       specs,
			Run:          cfg.Reconcile.Options(),
			AllowRuns:    cfg.Server.AllowsRuns(),
			Storage:      store,
			Bucket:       cfg.Storage.Bucket,
			ReportPrefix: cfg.Storage.ReportPrefix,
		}, logg))

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Request logging with the ray id
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// 3. Swagger Documentation (Public)
		app.Get("/swagger/*", swagger.HandlerDefault)

		// 4. Auth (Protect API)
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// 6. Load Features
		loaded, err := mgr.LoadAll(app)
		if err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}
		logg.Info("Features loaded", zap.Strings("features", loaded))

		// 7. Start Server
		go func() {
			logg.Info("Starting server",
				zap.String("port", cfg.Server.Port),
				zap.String("mode", cfg.Server.Mode),
				zap.String("reference", cfg.Reference.Label()),
				zap.String("target", cfg.Target.Label()),
			)
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 8. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
