// Command order-import bulk-loads historical order exports into the sales
// database. Export files (ordersN.jsonl.gz) may overlap, so the import is a
// two-pass run: pass 1 builds a bloom filter of order numbers per file, pass
// 2 streams each file again and inserts orders whose number has not been
// seen in an earlier file or in the database.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/gabrielatds/ambev/internal/domain/money"
	"github.com/gabrielatds/ambev/internal/domain/order"
	"github.com/gabrielatds/ambev/internal/storage/postgres"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	progressEvery = 100_000
)

// orderLine is one exported order in JSONL form.
type orderLine struct {
	ID           uuid.UUID       `json:"id"`
	Number       int64           `json:"number"`
	Date         time.Time       `json:"date"`
	CustomerID   uuid.UUID       `json:"customerId"`
	CustomerName string          `json:"customerName"`
	BranchID     uuid.UUID       `json:"branchId"`
	BranchName   string          `json:"branchName"`
	Cancelled    bool            `json:"cancelled"`
	Items        []orderLineItem `json:"items"`
}

type orderLineItem struct {
	ID           uuid.UUID       `json:"id"`
	ProductID    uuid.UUID       `json:"productId"`
	ProductTitle string          `json:"productTitle"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	Currency     string          `json:"currency"`
	Quantity     int             `json:"quantity"`
	Discount     decimal.Decimal `json:"discount"`
	Total        decimal.Decimal `json:"total"`
}

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing ordersN.jsonl.gz files")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("order import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("order import completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "orders*.jsonl.gz"))
	if err != nil {
		return errors.Wrap(err, "glob export files")
	}
	if len(files) == 0 {
		return errors.Errorf("no orders*.jsonl.gz files in %s", dataDir)
	}
	sort.Strings(files)

	slog.Info("pass 1: building bloom filters", slog.Int("files", len(files)))

	filters, err := buildBloomFilters(ctx, files)
	if err != nil {
		return errors.Wrap(err, "build bloom filters")
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	slog.Info("pass 2: importing orders")

	return importOrders(ctx, files, filters, postgres.NewOrderRepository(pool))
}

// buildBloomFilters creates one bloom filter of order numbers per file,
// concurrently.
func buildBloomFilters(ctx context.Context, files []string) ([]*bloom.BloomFilter, error) {
	filters := make([]*bloom.BloomFilter, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(buildFilterForFile(ctx, i, f, filters))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return filters, nil
}

func buildFilterForFile(ctx context.Context, idx int, path string, filters []*bloom.BloomFilter) func() error {
	return func() error {
		filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
		var count uint64

		if err := streamFile(ctx, path, func(line orderLine) error {
			filter.AddString(fmt.Sprintf("%d", line.Number))
			count++
			if count%progressEvery == 0 {
				slog.Info("pass 1 progress",
					slog.Int("file", idx+1),
					slog.Uint64("orders", count),
				)
			}
			return nil
		}); err != nil {
			return errors.Wrapf(err, "build filter for file %d", idx+1)
		}

		slog.Info("pass 1 complete",
			slog.Int("file", idx+1),
			slog.Uint64("total_orders", count),
		)

		filters[idx] = filter
		return nil
	}
}

// importOrders streams the files in order, skipping numbers that earlier
// files probably contain. Bloom false positives and numbers already in the
// database are resolved with a repository lookup before insert.
func importOrders(ctx context.Context, files []string, filters []*bloom.BloomFilter, repo *postgres.OrderRepository) error {
	var imported, skipped uint64

	for idx, path := range files {
		err := streamFile(ctx, path, func(line orderLine) error {
			number := fmt.Sprintf("%d", line.Number)

			maybeDup := false
			for j := 0; j < idx; j++ {
				if filters[j].TestString(number) {
					maybeDup = true
					break
				}
			}
			if maybeDup {
				skipped++
				return nil
			}

			// The export may still collide with orders already in the
			// database, or with an earlier line of this same file.
			if _, err := repo.GetByNumber(ctx, line.Number); err == nil {
				skipped++
				return nil
			} else if !errors.Is(err, order.ErrNotFound) {
				return errors.Wrapf(err, "check order %d", line.Number)
			}

			o, err := restoreOrder(line)
			if err != nil {
				return errors.Wrapf(err, "restore order %d", line.Number)
			}
			if err := repo.Create(ctx, o); err != nil {
				return errors.Wrapf(err, "insert order %d", line.Number)
			}

			imported++
			if imported%progressEvery == 0 {
				slog.Info("pass 2 progress",
					slog.Uint64("imported", imported),
					slog.Uint64("skipped", skipped),
				)
			}
			return nil
		})
		if err != nil {
			return errors.Wrapf(err, "import file %d", idx+1)
		}

		slog.Info("pass 2 file complete",
			slog.Int("file", idx+1),
			slog.Uint64("imported", imported),
			slog.Uint64("skipped", skipped),
		)
	}

	slog.Info("import summary",
		slog.Uint64("imported", imported),
		slog.Uint64("skipped", skipped),
	)
	return nil
}

// restoreOrder rebuilds a persisted order aggregate from one export line.
func restoreOrder(line orderLine) (*order.Order, error) {
	items := make([]*order.Item, 0, len(line.Items))
	for _, it := range line.Items {
		unitPrice, err := money.New(it.UnitPrice, it.Currency)
		if err != nil {
			return nil, errors.Wrapf(err, "item %s unit price", it.ProductID)
		}
		discount, err := money.New(it.Discount, it.Currency)
		if err != nil {
			return nil, errors.Wrapf(err, "item %s discount", it.ProductID)
		}
		total, err := money.New(it.Total, it.Currency)
		if err != nil {
			return nil, errors.Wrapf(err, "item %s total", it.ProductID)
		}

		id := it.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		items = append(items, order.RestoreItem(id, it.ProductID, it.ProductTitle, unitPrice, it.Quantity, discount, total))
	}

	id := line.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	return order.Restore(id, line.Number, line.Date, line.CustomerID, line.CustomerName, line.BranchID, line.BranchName, line.Cancelled, items), nil
}

// streamFile decodes a gzip-compressed JSONL export, calling fn per line.
func streamFile(ctx context.Context, path string, fn func(line orderLine) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 0, 1<<20), 1<<20)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(scanner.Bytes()) == 0 {
			continue
		}

		var line orderLine
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			return errors.Wrapf(err, "parse line in %s", path)
		}
		if err := fn(line); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}

	return nil
}
