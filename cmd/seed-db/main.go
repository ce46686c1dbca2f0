// Command seed-db populates a sales database with reference customers and
// branches from a JSON fixture and provisions an API key for management
// endpoints.
package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/gabrielatds/ambev/internal/domain/auth"
	"github.com/gabrielatds/ambev/internal/domain/branch"
	"github.com/gabrielatds/ambev/internal/domain/customer"
	"github.com/gabrielatds/ambev/internal/storage/postgres"
)

type referenceJSON struct {
	Customers []customerJSON `json:"customers"`
	Branches  []branchJSON   `json:"branches"`
}

type customerJSON struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Phone string    `json:"phone"`
}

type branchJSON struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Address string    `json:"address"`
	City    string    `json:"city"`
}

func main() {
	var (
		databaseURL   string
		referenceFile string
		apiKey        string
		apiKeyPepper  string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&referenceFile, "reference-file", "db/seed/reference.json", "path to customers/branches JSON file")
	flag.StringVar(&apiKey, "api-key", "", "API key to seed (or SALES_SEED_API_KEY env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or SALES_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKey == "" {
		apiKey = os.Getenv("SALES_SEED_API_KEY")
	}
	if apiKey == "" {
		slog.Error("API key is required: set --api-key or SALES_SEED_API_KEY")
		os.Exit(1)
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("SALES_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, referenceFile, apiKey, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, referenceFile, apiKey, pepper string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	ref, err := readReference(referenceFile)
	if err != nil {
		return errors.Wrap(err, "read reference data")
	}

	if err := seedCustomers(ctx, postgres.NewCustomerRepository(pool), ref.Customers); err != nil {
		return errors.Wrap(err, "seed customers")
	}

	if err := seedBranches(ctx, postgres.NewBranchRepository(pool), ref.Branches); err != nil {
		return errors.Wrap(err, "seed branches")
	}

	if err := seedAPIKey(ctx, postgres.NewAPIKeyRepository(pool), apiKey, pepper); err != nil {
		return errors.Wrap(err, "seed api key")
	}

	return nil
}

func readReference(path string) (*referenceJSON, error) {
	slog.Info("reading reference file", slog.String("path", path))

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	var ref referenceJSON
	if err := json.Unmarshal(data, &ref); err != nil {
		return nil, errors.Wrap(err, "parse JSON")
	}
	return &ref, nil
}

func seedCustomers(ctx context.Context, repo *postgres.CustomerRepository, customers []customerJSON) error {
	slog.Info("upserting customers", slog.Int("count", len(customers)))

	for _, c := range customers {
		err := repo.Upsert(ctx, customer.Customer{
			ID:    c.ID,
			Name:  c.Name,
			Email: c.Email,
			Phone: c.Phone,
		})
		if err != nil {
			return errors.Wrapf(err, "upsert customer %s", c.ID)
		}

		slog.Info("upserted customer", slog.String("id", c.ID.String()), slog.String("name", c.Name))
	}

	return nil
}

func seedBranches(ctx context.Context, repo *postgres.BranchRepository, branches []branchJSON) error {
	slog.Info("upserting branches", slog.Int("count", len(branches)))

	for _, b := range branches {
		err := repo.Upsert(ctx, branch.Branch{
			ID:      b.ID,
			Name:    b.Name,
			Address: b.Address,
			City:    b.City,
		})
		if err != nil {
			return errors.Wrapf(err, "upsert branch %s", b.ID)
		}

		slog.Info("upserted branch", slog.String("id", b.ID.String()), slog.String("name", b.Name))
	}

	return nil
}

func seedAPIKey(ctx context.Context, repo *postgres.APIKeyRepository, apiKey, pepper string) error {
	slog.Info("seeding default API key")

	mac := hmac.New(sha256.New, []byte(pepper))
	mac.Write([]byte(apiKey))
	keyHash := hex.EncodeToString(mac.Sum(nil))

	err := repo.Upsert(ctx, auth.APIKeyInfo{
		ID:      "default",
		KeyHash: keyHash,
		Name:    "Default management key",
		Scopes:  []string{auth.ScopeManageOrders},
	})
	if err != nil {
		return errors.Wrap(err, "upsert default API key")
	}

	slog.Info("upserted API key", slog.String("id", "default"))

	return nil
}
