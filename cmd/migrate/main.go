package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kiwabc123/supply-admin/internal/auth"
	"github.com/kiwabc123/supply-admin/internal/store/pg"
)

func main() {
	log.SetFlags(0)
	var (
		dsn  = flag.String("dsn", os.Getenv("SUPPLY_PG_DSN"), "PostgreSQL DSN")
		seed = flag.Bool("seed", false, "create the initial admin account after migrating")
	)
	flag.Parse()

	if *dsn == "" {
		log.Fatal("missing DSN: provide via -dsn or SUPPLY_PG_DSN")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	store, err := pg.Open(*dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	log.Println("migrations applied")

	if *seed {
		if err := seedAdmin(ctx, store); err != nil {
			log.Fatalf("seed: %v", err)
		}
	}
}

// seedAdmin creates the first ADMIN account from SUPPLY_ADMIN_EMAIL and
// SUPPLY_ADMIN_PASSWORD. It is a no-op when the email is already taken.
func seedAdmin(ctx context.Context, store *pg.Store) error {
	email := strings.TrimSpace(os.Getenv("SUPPLY_ADMIN_EMAIL"))
	password := os.Getenv("SUPPLY_ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Fatal("seed requires SUPPLY_ADMIN_EMAIL and SUPPLY_ADMIN_PASSWORD")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	users := pg.NewUserStore(store)
	err = users.Create(ctx, &auth.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Name:         "Administrator",
		Role:         auth.RoleAdmin,
		IsActive:     true,
	})
	if errors.Is(err, auth.ErrConflict) {
		log.Printf("admin %s already exists, skipping", email)
		return nil
	}
	if err == nil {
		log.Printf("admin %s created", email)
	}
	return err
}
