// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"mercato/internal/core/id"
	"mercato/internal/infrastructure/storage/postgres"
	"mercato/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	if err := seedAdminUser(ctx, pool, log); err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoPromotions(ctx, pool, log); err != nil {
			log.Fatalw("failed to seed demo promotions", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func seedAdminUser(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@mercato.local"
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "Admin123!"
	}

	var existingID id.ID
	err := pool.Pool.QueryRow(ctx,
		`SELECT id FROM users WHERE email = $1`,
		adminEmail,
	).Scan(&existingID)
	if err == nil {
		log.Infow("admin user already exists", "email", adminEmail, "user_id", existingID)
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("check admin exists: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	userID := id.New()
	now := time.Now().UTC()

	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO users (
			id, email, password_hash, first_name, last_name,
			is_active, is_admin, roles, permissions,
			failed_login_attempts, created_at, updated_at, version
		)
		VALUES ($1, $2, $3, 'System', 'Admin', true, true, $4, '{}', 0, $5, $5, 1)
	`, userID, adminEmail, string(passwordHash), []string{"admin"}, now)
	if err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}

	log.Infow("admin user created",
		"email", adminEmail,
		"user_id", userID,
	)

	return nil
}

func seedDemoPromotions(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	log.Info("seeding demo promotions...")

	type promoSeed struct {
		name    string
		scope   string
		percent float64
	}

	promos := []promoSeed{
		{"Storewide Sale", "GLOBAL", 10},
		{"Clearance", "GLOBAL", 25},
	}

	now := time.Now().UTC()
	for _, p := range promos {
		tag, err := pool.Pool.Exec(ctx, `
			INSERT INTO promotions (id, name, scope, scope_target, discount_percent, start_date, end_date, active, created_at, updated_at, version)
			VALUES ($1, $2, $3, NULL, $4, NULL, NULL, true, $5, $5, 1)
			ON CONFLICT DO NOTHING
		`, id.New(), p.name, p.scope, p.percent, now)
		if err != nil {
			return fmt.Errorf("insert promotion %q: %w", p.name, err)
		}
		if tag.RowsAffected() > 0 {
			log.Infow("promotion seeded", "name", p.name, "percent", p.percent)
		}
	}

	return nil
}
