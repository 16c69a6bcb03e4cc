// Package main seeds the database with schema and demo data for local
// development.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"

	"shopper/internal/config"
	"shopper/internal/core/id"
	"shopper/internal/domain/auth"
	"shopper/internal/infrastructure/storage/postgres"
	"shopper/pkg/logger"
)

const schema = `
CREATE TABLE IF NOT EXISTS admin_users (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	name          TEXT NOT NULL DEFAULT '',
	is_admin      BOOLEAN NOT NULL DEFAULT FALSE,
	is_active     BOOLEAN NOT NULL DEFAULT TRUE,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS brands (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	slug       TEXT NOT NULL UNIQUE,
	is_enabled BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS categories (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	slug       TEXT NOT NULL UNIQUE,
	parent_id  TEXT REFERENCES categories(id),
	is_enabled BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS products (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	sku         TEXT NOT NULL UNIQUE,
	slug        TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT '',
	price       NUMERIC(12,2) NOT NULL DEFAULT 0,
	status      TEXT NOT NULL DEFAULT 'draft',
	brand_id    TEXT REFERENCES brands(id),
	category_id TEXT REFERENCES categories(id),
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS customers (
	id         TEXT PRIMARY KEY,
	email      TEXT NOT NULL UNIQUE,
	name       TEXT NOT NULL,
	phone      TEXT NOT NULL DEFAULT '',
	is_enabled BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS orders (
	id          TEXT PRIMARY KEY,
	number      TEXT NOT NULL UNIQUE,
	customer_id TEXT NOT NULL REFERENCES customers(id),
	status      TEXT NOT NULL DEFAULT 'pending',
	total       NUMERIC(12,2) NOT NULL DEFAULT 0,
	placed_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS order_items (
	id         TEXT PRIMARY KEY,
	order_id   TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
	product_id TEXT NOT NULL REFERENCES products(id),
	quantity   INTEGER NOT NULL DEFAULT 1,
	unit_price NUMERIC(12,2) NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS sys_audit (
	id                 TEXT PRIMARY KEY,
	entity_type        TEXT NOT NULL,
	action             TEXT NOT NULL,
	user_id            TEXT NOT NULL DEFAULT '',
	user_email         TEXT NOT NULL DEFAULT '',
	changes            JSONB,
	changes_compressed BYTEA,
	compression_algo   TEXT NOT NULL DEFAULT 'none',
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_products_status ON products(status);
CREATE INDEX IF NOT EXISTS idx_products_brand ON products(brand_id);
CREATE INDEX IF NOT EXISTS idx_orders_customer ON orders(customer_id);
CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id);
CREATE INDEX IF NOT EXISTS idx_audit_entity ON sys_audit(entity_type, created_at);
`

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Development: true})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DB.DSN))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, schema); err != nil {
		log.Fatalw("failed to apply schema", "error", err)
	}
	log.Info("schema applied")

	gofakeit.Seed(42)

	if err := seedAdmin(ctx, pool); err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}
	if err := seedCatalog(ctx, pool, log); err != nil {
		log.Fatalw("failed to seed catalog", "error", err)
	}
	log.Info("seed complete")
}

func seedAdmin(ctx context.Context, pool *postgres.Pool) error {
	hash, err := auth.HashPassword("admin123")
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, `
		INSERT INTO admin_users (id, email, password_hash, name, is_admin)
		VALUES ($1, $2, $3, $4, TRUE)
		ON CONFLICT (email) DO NOTHING
	`, id.NewString(), "admin@shopper.local", hash, "Administrator")
	return err
}

func seedCatalog(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	var brandIDs []string
	for i := 0; i < 12; i++ {
		bid := id.NewString()
		name := gofakeit.Company()
		_, err := pool.Exec(ctx, `
			INSERT INTO brands (id, name, slug, is_enabled)
			VALUES ($1, $2, $3, $4)
		`, bid, name, slugify(name, i), rand.Intn(10) > 1)
		if err != nil {
			return err
		}
		brandIDs = append(brandIDs, bid)
	}

	var categoryIDs []string
	for i := 0; i < 8; i++ {
		cid := id.NewString()
		name := gofakeit.ProductCategory()
		_, err := pool.Exec(ctx, `
			INSERT INTO categories (id, name, slug)
			VALUES ($1, $2, $3)
		`, cid, name, slugify(name, i))
		if err != nil {
			return err
		}
		categoryIDs = append(categoryIDs, cid)
	}

	statuses := []string{"active", "active", "active", "draft", "disabled"}
	var productIDs []string
	var prices []decimal.Decimal
	for i := 0; i < 200; i++ {
		pid := id.NewString()
		name := gofakeit.ProductName()
		price := decimal.NewFromFloat(gofakeit.Price(5, 500)).Round(2)
		_, err := pool.Exec(ctx, `
			INSERT INTO products (id, name, sku, slug, description, price, status, brand_id, category_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`,
			pid,
			name,
			fmt.Sprintf("SKU-%06d", i+1),
			slugify(name, i),
			gofakeit.ProductDescription(),
			price,
			statuses[rand.Intn(len(statuses))],
			brandIDs[rand.Intn(len(brandIDs))],
			categoryIDs[rand.Intn(len(categoryIDs))],
		)
		if err != nil {
			return err
		}
		productIDs = append(productIDs, pid)
		prices = append(prices, price)
	}
	log.Infow("products seeded", "count", len(productIDs))

	var customerIDs []string
	for i := 0; i < 50; i++ {
		cid := id.NewString()
		_, err := pool.Exec(ctx, `
			INSERT INTO customers (id, email, name, phone)
			VALUES ($1, $2, $3, $4)
		`, cid, fmt.Sprintf("%d.%s", i, gofakeit.Email()), gofakeit.Name(), gofakeit.Phone())
		if err != nil {
			return err
		}
		customerIDs = append(customerIDs, cid)
	}

	orderStatuses := []string{"pending", "paid", "shipped", "cancelled"}
	for i := 0; i < 120; i++ {
		oid := id.NewString()
		total := decimal.Zero
		itemCount := 1 + rand.Intn(4)

		type item struct {
			productID string
			qty       int
			price     decimal.Decimal
		}
		items := make([]item, 0, itemCount)
		for j := 0; j < itemCount; j++ {
			idx := rand.Intn(len(productIDs))
			qty := 1 + rand.Intn(3)
			items = append(items, item{productIDs[idx], qty, prices[idx]})
			total = total.Add(prices[idx].Mul(decimal.NewFromInt(int64(qty))))
		}

		_, err := pool.Exec(ctx, `
			INSERT INTO orders (id, number, customer_id, status, total, placed_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`,
			oid,
			fmt.Sprintf("ORD-%06d", i+1),
			customerIDs[rand.Intn(len(customerIDs))],
			orderStatuses[rand.Intn(len(orderStatuses))],
			total,
			gofakeit.DateRange(time.Now().AddDate(0, -6, 0), time.Now()),
		)
		if err != nil {
			return err
		}

		for _, it := range items {
			_, err := pool.Exec(ctx, `
				INSERT INTO order_items (id, order_id, product_id, quantity, unit_price)
				VALUES ($1, $2, $3, $4, $5)
			`, id.NewString(), oid, it.productID, it.qty, it.price)
			if err != nil {
				return err
			}
		}
	}
	log.Info("orders seeded")

	return nil
}

// slugify builds a unique URL slug from a display name.
func slugify(name string, n int) string {
	s := strings.ToLower(name)
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, s)
	s = strings.Trim(s, "-")
	return fmt.Sprintf("%s-%d", s, n)
}
