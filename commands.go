package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"kicks/internal/config"
	"kicks/internal/logging"
	"kicks/internal/services"
	"kicks/internal/storage"
	"kicks/pkg/rabbitmq"

	"github.com/spf13/cobra"
)

// newRootCmd builds the kicks CLI. Without a subcommand it serves.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "kicks",
		Short:         "KICKS storefront server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return serve(cfg)
		},
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newSnapshotCmd())
	root.AddCommand(newOrdersCmd())
	root.AddCommand(newCatalogCmd())
	return root
}

// kicks serve
func newServeCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Server.Port = ":" + port
			}
			return serve(cfg)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "port to listen on (overrides APP_PORT)")
	return cmd
}

// kicks snapshot show|reset
func newSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Inspect or reset the stored storefront state",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the stored snapshot as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAdapter(func(ctx context.Context, a *storage.Adapter) error {
				return printSnapshot(ctx, cmd.OutOrStdout(), a)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Replace the stored snapshot with the empty default",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAdapter(func(ctx context.Context, a *storage.Adapter) error {
				if err := a.Reset(ctx); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Snapshot %s reset\n", a.Key())
				return nil
			})
		},
	})
	return cmd
}

func printSnapshot(ctx context.Context, w io.Writer, a *storage.Adapter) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(a.Load(ctx))
}

// withAdapter opens the configured storage for a one-shot command.
func withAdapter(fn func(context.Context, *storage.Adapter) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	rt, err := openDeps(cfg, logging.New(cfg.Logging.Level, cfg.Logging.Format))
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(context.Background(), rt.adapter)
}

// kicks catalog list|price|remove
func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Maintain the product catalog",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print every product with its price",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCatalog(func(catalog *services.CatalogService) error {
				products, err := catalog.List(services.Filter{})
				if err != nil {
					return err
				}
				for _, p := range products {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%s\n", p.ID, p.Price, p.Title)
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "price <id> <price>",
		Short: "Set a product's price, e.g. kicks catalog price puma-rs-x ₹7,499",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCatalog(func(catalog *services.CatalogService) error {
				product, err := catalog.Reprice(args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s now costs %d\n", product.ID, product.Price)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a product from the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCatalog(func(catalog *services.CatalogService) error {
				if err := catalog.Remove(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s removed\n", args[0])
				return nil
			})
		},
	})
	return cmd
}

// withCatalog opens the configured product repository, seeding it when
// empty. Only the sqlite and postgres drivers keep catalog changes.
func withCatalog(fn func(*services.CatalogService) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	rt, err := openDeps(cfg, log)
	if err != nil {
		return err
	}
	defer rt.Close()

	catalog := services.NewCatalogService(rt.products)
	seedProducts(catalog, log)
	return fn(catalog)
}

// kicks orders consume
func newOrdersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Work with order events",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "consume",
		Short: "Log order events from RabbitMQ until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.RabbitMQ.URL == "" {
				return fmt.Errorf("RABBITMQ_URL is not set")
			}
			log := logging.New(cfg.Logging.Level, cfg.Logging.Format)

			client, err := rabbitmq.NewClient(rabbitmq.Config{
				URL:      cfg.RabbitMQ.URL,
				Exchange: cfg.RabbitMQ.Exchange,
			}, log)
			if err != nil {
				return err
			}
			defer client.Close()

			if err := client.ConsumeOrderEvents(rabbitmq.OrderEventLogger(log)); err != nil {
				return err
			}
			log.Info("Waiting for order events. To exit press CTRL+C")

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit
			return nil
		},
	})
	return cmd
}
