package cmd

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"cycle-count/core/config"
	"cycle-count/core/database"
	"cycle-count/core/loader"
	"cycle-count/core/logger"
	"cycle-count/core/middleware/auth"
	"cycle-count/core/middleware/rayid"
	"cycle-count/core/storage"
	"cycle-count/core/store"

	"cycle-count/feature/catalog"
	"cycle-count/feature/count"
	countmodels "cycle-count/feature/count/models"
	"cycle-count/feature/history"
	"cycle-count/feature/movements"
	"cycle-count/feature/report"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the cycle-count server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		logg = logg.With(zap.String("store_id", cfg.Server.StoreID))
		zap.ReplaceGlobals(logg)

		// 3. Connect to the back-office database (catalog, movements, history)
		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Failed to connect to back-office database", zap.Error(err))
		}

		// 4. Session store. A broken store degrades to memory rather than
		// blocking the count.
		var sessionStore store.Store
		if primary, err := store.New(cfg.Store); err != nil {
			logg.Error("session store misconfigured, continuing in-memory", zap.Error(err))
			sessionStore = store.NewMemoryStore()
		} else {
			sessionStore = store.NewFallback(primary, logg)
		}

		// 5. Object storage for report export
		storageClient, err := storage.NewClient(cfg.Storage)
		if err != nil {
			logg.Fatal("Failed to create storage client", zap.Error(err))
		}

		// 6. Build the count service over catalog and movements
		catalogFeature := catalog.NewFeature(db, logg, cfg.Server.StoreID)
		catalogSvc := catalogFeature.Service()
		oracle := movements.NewOracle(db, logg, cfg.Server.StoreID)

		countSvc, err := count.NewService(ctx, logg, sessionStore,
			catalogLookup(catalogSvc), expectationSource{catalogSvc}, oracle)
		if err != nil {
			logg.Fatal("Failed to initialize count service", zap.Error(err))
		}

		// 7. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// 8. Initialize Feature Loader
		mgr := loader.NewManager()
		mgr.Register(count.NewFeature(countSvc))
		mgr.Register(catalogFeature)
		mgr.Register(history.NewFeature(db, logg, cfg.Server.StoreID))
		mgr.Register(report.NewFeature(storageClient, cfg.Storage.Bucket, sessionStore, logg))

		// Middleware Registration
		// RayID must be first to trace everything
		app.Use(rayid.New())

		// Request logging (Zap + RayID)
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

		// Auth (Protect API)
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

// catalogLookup adapts the catalog service to the count engine's Lookup:
// a missing row becomes a defined miss instead of an error.
func catalogLookup(svc *catalog.Service) count.Lookup {
	return count.LookupFunc(func(ctx context.Context, identifier string) (count.ItemInfo, bool, error) {
		product, err := svc.Lookup(ctx, identifier)
		if errors.Is(err, catalog.ErrNotFound) {
			return count.ItemInfo{}, false, nil
		}
		if err != nil {
			return count.ItemInfo{}, false, err
		}
		return count.ItemInfo{
			SKU:   product.SKU,
			Name:  product.Name,
			Price: product.Price,
		}, true, nil
	})
}

// expectationSource adapts the catalog service to the count engine's
// session-creation source.
type expectationSource struct {
	svc *catalog.Service
}

func (s expectationSource) ListExpected(ctx context.Context) ([]countmodels.Item, error) {
	products, err := s.svc.ListExpected(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]countmodels.Item, len(products))
	for i, p := range products {
		items[i] = countmodels.Item{
			Identifier: p.Identifier,
			SKU:        p.SKU,
			Name:       p.Name,
			Price:      p.Price,
			Mode:       countmodels.CountingMode(p.Mode),
			ImageURL:   p.ImageURL,
		}
	}
	return items, nil
}

func init() {
	RootCmd.AddCommand(startCmd)
}
