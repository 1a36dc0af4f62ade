package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"kicks/internal/config"
	"kicks/internal/database"
	"kicks/internal/flow"
	"kicks/internal/handlers"
	"kicks/internal/middleware"
	"kicks/internal/models"
	"kicks/internal/repositories"
	"kicks/internal/services"
	"kicks/internal/storage"
	"kicks/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"gorm.io/gorm"
)

const redisKeyPrefix = "kicks:"

// deps is everything a command needs, opened from one Config.
type deps struct {
	cfg       *config.Config
	log       *logrus.Logger
	adapter   *storage.Adapter
	products  repositories.ProductRepository
	publisher broker
}

// broker is the order event publisher held by deps.
type broker interface {
	services.Publisher
	Close() error
}

// openDeps opens the snapshot backend and the product repository
// selected by cfg.Storage.Driver.
func openDeps(cfg *config.Config, log *logrus.Logger) (*deps, error) {
	rt := &deps{cfg: cfg, log: log}

	var backend storage.Backend
	var db *gorm.DB
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		backend = storage.NewMemoryBackend()
	case config.DriverFile:
		fb, err := storage.NewFileBackend(afero.NewOsFs(), cfg.Storage.Dir)
		if err != nil {
			return nil, err
		}
		backend = fb
	case config.DriverSQLite, config.DriverPostgres:
		var err error
		db, err = database.Open(cfg.Storage.Driver, cfg.Storage.DSN)
		if err != nil {
			return nil, err
		}
		gb, err := storage.NewGORMBackend(db)
		if err != nil {
			return nil, err
		}
		backend = gb
	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:        cfg.Redis.Addr,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			DialTimeout: 5 * time.Second,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Redis.Addr, err)
		}
		backend = storage.NewRedisBackend(client, redisKeyPrefix)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	rt.adapter = storage.NewAdapter(backend, cfg.Storage.Key, log)

	if db != nil {
		repo, err := repositories.NewGORMProductRepository(db)
		if err != nil {
			rt.adapter.Close()
			return nil, err
		}
		rt.products = repo
	} else {
		rt.products = repositories.NewMemoryProductRepository()
	}

	log.WithFields(logrus.Fields{
		"driver": cfg.Storage.Driver,
		"key":    cfg.Storage.Key,
	}).Info("Storage opened")
	return rt, nil
}

// connectBroker connects the order event publisher. An empty URL leaves
// publishing disabled.
func (rt *deps) connectBroker() error {
	if rt.cfg.RabbitMQ.URL == "" {
		return nil
	}
	client, err := rabbitmq.NewClient(rabbitmq.Config{
		URL:      rt.cfg.RabbitMQ.URL,
		Exchange: rt.cfg.RabbitMQ.Exchange,
	}, rt.log)
	if err != nil {
		return err
	}
	rt.publisher = client
	return nil
}

// storefront seeds the catalog and builds the storefront over rt.
func (rt *deps) storefront(ctx context.Context, scheduler flow.Scheduler) (*services.Storefront, *services.CatalogService) {
	catalog := services.NewCatalogService(rt.products)
	seedProducts(catalog, rt.log)

	cfg := services.StorefrontConfig{
		Storage:   rt.adapter,
		Catalog:   catalog,
		Exchange:  rt.cfg.RabbitMQ.Exchange,
		Scheduler: scheduler,
		Delays: services.Delays{
			Login:    rt.cfg.Delays.Login,
			Signup:   rt.cfg.Delays.Signup,
			Profile:  rt.cfg.Delays.Profile,
			Checkout: rt.cfg.Delays.Checkout,
		},
		Logger: rt.log,
	}
	if rt.publisher != nil {
		cfg.Publisher = rt.publisher
	}
	return services.NewStorefront(ctx, cfg), catalog
}

// Close releases the broker connection and the storage backend.
func (rt *deps) Close() {
	if rt.publisher != nil {
		if err := rt.publisher.Close(); err != nil {
			rt.log.WithError(err).Warn("Error closing RabbitMQ client")
		}
	}
	if err := rt.adapter.Close(); err != nil {
		rt.log.WithError(err).Warn("Error closing storage")
	}
}

// newApp wires the HTTP API, the static site and the SPA fallback.
func newApp(front *services.Storefront, catalog *services.CatalogService, staticDir string, log logrus.FieldLogger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "KICKS",
		DisableStartupMessage: true,
	})

	app.Use(middleware.RequestLogger(log))

	api := app.Group("/api")
	handlers.NewStatusHandler().RegisterRoutes(api)
	handlers.NewCatalogHandler(catalog, log).RegisterRoutes(api)
	handlers.NewCartHandler(front).RegisterRoutes(api)
	handlers.NewAuthHandler(front, log).RegisterRoutes(api)
	handlers.NewAccountHandler(front, log).RegisterRoutes(api, middleware.SessionRequired(front))
	handlers.NewFormHandler(front).RegisterRoutes(api)
	api.All("/*", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Route not found",
		})
	})

	app.Static("/", staticDir)

	// Every other GET is a client-side route of the single page app.
	index := filepath.Join(staticDir, "index.html")
	app.Get("/*", func(c *fiber.Ctx) error {
		return c.SendFile(index)
	})

	return app
}

// seedProducts fills an empty catalog with the storefront's shoes.
func seedProducts(catalog *services.CatalogService, log logrus.FieldLogger) {
	existing, err := catalog.List(services.Filter{})
	if err != nil {
		log.WithError(err).Error("Error reading catalog")
		return
	}
	if len(existing) > 0 {
		return
	}

	products := []models.Product{
		{ID: "nike-air-max-270", Title: "Nike Air Max 270", Brand: "nike", Gender: "men", Image: "images/nike-air-max-270.jpg", Price: 12995, OriginalPrice: 14995},
		{ID: "nike-revolution-6", Title: "Nike Revolution 6", Brand: "nike", Gender: "women", Image: "images/nike-revolution-6.jpg", Price: 3695},
		{ID: "adidas-ultraboost-22", Title: "Adidas Ultraboost 22", Brand: "adidas", Gender: "men", Image: "images/adidas-ultraboost-22.jpg", Price: 16999, OriginalPrice: 18999},
		{ID: "adidas-superstar", Title: "Adidas Superstar", Brand: "adidas", Gender: "unisex", Image: "images/adidas-superstar.jpg", Price: 8999},
		{ID: "puma-rs-x", Title: "Puma RS-X", Brand: "puma", Gender: "unisex", Image: "images/puma-rs-x.jpg", Price: 8999, OriginalPrice: 10999},
		{ID: "puma-carina", Title: "Puma Carina", Brand: "puma", Gender: "women", Image: "images/puma-carina.jpg", Price: 4999},
		{ID: "nb-574", Title: "New Balance 574", Brand: "new-balance", Gender: "men", Image: "images/nb-574.jpg", Price: 9999},
		{ID: "converse-chuck-70", Title: "Converse Chuck 70", Brand: "converse", Gender: "unisex", Image: "images/converse-chuck-70.jpg", Price: 6499},
		{ID: "skechers-go-walk-kids", Title: "Skechers Go Walk Kids", Brand: "skechers", Gender: "kids", Image: "images/skechers-go-walk-kids.jpg", Price: 2999},
	}

	for i := range products {
		if err := catalog.Create(&products[i]); err != nil {
			log.WithError(err).WithField("product", products[i].ID).Error("Error seeding product")
		}
	}
	log.WithField("count", len(products)).Debug("Seeded catalog")
}
