// seed creates an admin account and a starter catalog in the local dev
// database. Run: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/ErlanBelekov/credit-market/internal/domain"
	"github.com/ErlanBelekov/credit-market/internal/infrastructure/postgres"
	"github.com/ErlanBelekov/credit-market/internal/password"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultAdminEmail    = "admin@market.local"
	defaultAdminPassword = "admin123"
)

var products = []domain.Product{
	{Name: "Noise Cancelling Earbuds", Image: "https://images.unsplash.com/photo-1590658268037-6bf12165a8df", Credits: 180},
	{Name: "Leather Backpack", Image: "https://images.unsplash.com/photo-1548036328-c9fa89d128fa", Credits: 260},
	{Name: "Espresso Machine", Image: "https://images.unsplash.com/photo-1517668808822-9ebb02f2a0e6", Credits: 540},
	{Name: "Polaroid Camera", Image: "https://images.unsplash.com/photo-1526170375885-4d8ecf77b99f", Credits: 210},
	{Name: "Gaming Mouse", Image: "https://images.unsplash.com/photo-1527814050087-3793815479db", Credits: 90},
}

func main() {
	ctx := context.Background()
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	adminEmail := domain.NormalizeEmail(envOr("SEED_ADMIN_EMAIL", defaultAdminEmail))
	adminPassword := envOr("SEED_ADMIN_PASSWORD", defaultAdminPassword)

	pool, err := postgres.NewPool(ctx, dbURL, 2)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	hash, err := password.NewHasher(bcrypt.DefaultCost).Hash(adminPassword)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	// Upsert admin; re-runs reset the password and role.
	var userID string
	err = pool.QueryRow(ctx, `
		INSERT INTO users (email, user_name, password_hash, role)
		VALUES ($1, 'Admin', $2, $3)
		ON CONFLICT (email) DO UPDATE
		SET password_hash = EXCLUDED.password_hash, role = EXCLUDED.role, updated_at = NOW()
		RETURNING id`,
		adminEmail, hash, string(domain.RoleAdmin),
	).Scan(&userID)
	if err != nil {
		log.Fatalf("upsert admin: %v", err)
	}

	productRepo := postgres.NewProductRepository(pool)
	count, err := productRepo.Count(ctx)
	if err != nil {
		log.Fatalf("count products: %v", err)
	}

	var inserted int
	if count == 0 {
		for i := range products {
			if _, err := productRepo.Create(ctx, &products[i]); err != nil {
				log.Fatalf("insert product %q: %v", products[i].Name, err)
			}
			inserted++
		}
	}

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  Admin:            %s / %s\n", adminEmail, adminPassword)
	fmt.Printf("  Admin ID:         %s\n", userID)
	fmt.Printf("  Products created: %d  (catalog already had %d)\n", inserted, count)
	fmt.Println()
	fmt.Println("Try it:")
	fmt.Println()
	fmt.Printf("  go run ./cmd/market signin -e %s -p %s\n", adminEmail, adminPassword)
	fmt.Println("  export MARKET_TOKEN=...")
	fmt.Println("  go run ./cmd/market products add --name Lamp --image https://example.com/lamp.png --credits 40")
	fmt.Println("  go run ./cmd/market shop")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
