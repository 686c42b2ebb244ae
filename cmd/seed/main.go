// Command seed provisions the initial accounts a fresh deployment needs:
// one admin and one approver, plus optional demo users. Registration only
// ever creates regular users, so without this (or a later role update by
// an existing admin) moderation would be unreachable.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"

	"newsroom/auth"
	"newsroom/domain"
	apperrors "newsroom/errors"
	"newsroom/repositories"
)

type Config struct {
	BadgerFilepath   string `env:"BADGER_FILEPATH,required=true"`
	AdminEmail       string `env:"SEED_ADMIN_EMAIL,default=admin@example.com"`
	AdminPassword    string `env:"SEED_ADMIN_PASSWORD,default=Admin@12345678"`
	ApproverEmail    string `env:"SEED_APPROVER_EMAIL,default=approver@example.com"`
	ApproverPassword string `env:"SEED_APPROVER_PASSWORD,default=Approver@12345678"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	demo := flag.Bool("demo", false, "also create demo user accounts user1..user5")
	flag.Parse()

	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, nil))

	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() { _ = db.Close() }()

	users, err := repositories.NewUserRepository(db, log)
	if err != nil {
		return fmt.Errorf("user repository: %w", err)
	}
	defer func() { _ = users.Close() }()

	seed := func(email, username, password string, role domain.Role) error {
		hash, err := auth.HashPassword(password)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", email, err)
		}
		created, err := users.Create(email, username, hash, role)
		if errors.Is(err, apperrors.ErrUserAlreadyExists) {
			log.Info("User already exists, skipping", "email", email)
			return nil
		}
		if err != nil {
			return fmt.Errorf("create %s: %w", email, err)
		}
		log.Info("User created", "id", created.ID, "email", email, "role", string(role))
		return nil
	}

	if err := seed(config.AdminEmail, "admin", config.AdminPassword, domain.RoleAdmin); err != nil {
		return err
	}
	if err := seed(config.ApproverEmail, "approver", config.ApproverPassword, domain.RoleApprover); err != nil {
		return err
	}

	if *demo {
		for i := 1; i <= 5; i++ {
			email := fmt.Sprintf("user%d@example.com", i)
			username := fmt.Sprintf("user%d", i)
			if err := seed(email, username, fmt.Sprintf("User%d@12345678", i), domain.RoleUser); err != nil {
				return err
			}
		}
	}

	log.Info("Seeding completed")
	return nil
}
