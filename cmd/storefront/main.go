// Command storefront is a small headless client for the buyit API:
// it rehydrates persisted state, optionally signs in, and prints the
// catalog and the current cart. Mostly a wiring demo for the stores.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"buyit-client/internal/cart"
	"buyit-client/internal/catalog"
	"buyit-client/internal/checkout"
	"buyit-client/internal/config"
	"buyit-client/internal/gateway"
	"buyit-client/internal/logger"
	"buyit-client/internal/order"
	"buyit-client/internal/persist"
	"buyit-client/internal/session"

	"go.uber.org/zap"
)

func main() {
	email := flag.String("email", "", "sign in with this email")
	password := flag.String("password", "", "password for -email")
	search := flag.String("search", "", "catalog search term")
	flag.Parse()

	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, *email, *password, *search); err != nil {
		logger.L().Error("storefront failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, email, password, search string) error {
	gw := gateway.New(cfg.APIBaseURL, cfg.RequestTimeout)

	tokens, err := persist.NewTokenStore(cfg.StateDir)
	if err != nil {
		return err
	}
	snaps, err := persist.NewStore(cfg.StateDir, "buyit")
	if err != nil {
		return err
	}

	sessions := session.NewStore(gw, tokens)
	carts := cart.NewStore(gw, snaps)
	orders := order.NewStore(gw)
	products := catalog.NewStore(gw)
	flow := checkout.NewFlow(carts, orders, cfg.ConfirmRedirect)
	flow.OnRedirect(func() {
		logger.L().Info("confirmation done, back to orders view")
	})

	// boot: persisted token and cart snapshot first, fresh data second
	if err := sessions.Rehydrate(); err != nil {
		return err
	}
	if err := carts.Rehydrate(); err != nil {
		logger.L().Warn("cart rehydration failed", zap.Error(err))
	}

	if email != "" {
		if err := sessions.Login(ctx, email, password); err != nil {
			return fmt.Errorf("login: %s", sessions.Snapshot().Error)
		}
		fmt.Printf("signed in as %s\n", sessions.Snapshot().User.Name)
	} else if sessions.Snapshot().Token != "" {
		if err := sessions.Me(ctx); err != nil {
			logger.L().Warn("stored session is not valid anymore", zap.Error(err))
		} else {
			fmt.Printf("welcome back, %s\n", sessions.Snapshot().User.Name)
		}
	}

	if err := products.ListProducts(ctx, catalog.ListParams{Search: search}); err != nil {
		return err
	}
	listing := products.Snapshot()
	fmt.Printf("catalog: %d products (page %d/%d)\n", listing.Total, listing.Page, listing.Pages)
	for _, p := range listing.Items {
		fmt.Printf("  %-30s $%.2f  (%d in stock)\n", p.Name, p.Price, p.Stock)
	}

	if sessions.Snapshot().LoggedIn() {
		if err := carts.Fetch(ctx); err != nil {
			return err
		}
		snap := carts.Snapshot()
		fmt.Printf("cart: %d lines, subtotal $%.2f\n", len(snap.Items), snap.Subtotal())
		for _, l := range snap.Items {
			fmt.Printf("  %dx %s\n", l.Quantity, l.Product.Name)
		}
	}
	return nil
}
