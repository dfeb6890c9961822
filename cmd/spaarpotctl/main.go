package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/pebbling/spaarpot/internal/catalog"
	"github.com/pebbling/spaarpot/internal/config"
	"github.com/pebbling/spaarpot/internal/db"
	"github.com/pebbling/spaarpot/internal/gifting"
	"github.com/pebbling/spaarpot/internal/model"
	"github.com/pebbling/spaarpot/internal/setup"
	"github.com/pebbling/spaarpot/internal/store"
)

const usage = "Usage: spaarpotctl <init|grant> [flags]"

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "init":
		err = cmdInit(cfg, os.Args[2:])
	case "grant":
		err = cmdGrant(cfg, os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n%s\n", os.Args[1], usage)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func cmdInit(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	dbPath := fs.String("db", cfg.DBPath, "path to SQLite database file")
	email := fs.String("email", cfg.AdminEmail, "admin account email")
	fs.Parse(args)

	if _, err := os.Stat(*dbPath); err == nil {
		return fmt.Errorf("database file %s already exists", *dbPath)
	}

	database, password, err := setup.InitDatabase(context.Background(), *dbPath, *email)
	if err != nil {
		return err
	}
	database.Close()

	setup.PrintResult(*dbPath, *email, password)
	return nil
}

// cmdGrant stocks gift units into a user's inventory, for example after an
// out-of-band payment.
func cmdGrant(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("grant", flag.ExitOnError)
	dbPath := fs.String("db", cfg.DBPath, "path to SQLite database file")
	email := fs.String("email", "", "email of the receiving user")
	giftTypeID := fs.Int64("gift", 0, "gift type id")
	quantity := fs.Int("qty", 1, "number of units")
	fs.Parse(args)

	if *email == "" || *giftTypeID == 0 {
		fs.Usage()
		return fmt.Errorf("-email and -gift are required")
	}
	addr, err := model.NormalizeEmail(*email)
	if err != nil {
		return err
	}

	ctx := context.Background()
	database, err := db.Open(*dbPath)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		return err
	}

	user, err := store.GetUserByEmail(ctx, database, addr)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("user %s: %w", addr, model.ErrNotFound)
	}

	cat, err := catalog.Load(ctx, database)
	if err != nil {
		return err
	}
	svc := gifting.New(database, cat, store.UserDirectory{DB: database})
	if err := svc.Grant(ctx, user.ID, *giftTypeID, *quantity); err != nil {
		return err
	}

	qty, err := store.GetQuantity(ctx, database, user.ID, *giftTypeID)
	if err != nil {
		return err
	}
	fmt.Printf("Granted %d x gift type %d to %s (now holds %d)\n", *quantity, *giftTypeID, addr, qty)
	return nil
}
