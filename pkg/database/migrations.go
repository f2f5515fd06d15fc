package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Migration struct {
	Version     int
	Description string
	Up          func(*mongo.Database) error
	Down        func(*mongo.Database) error
}

type Migrator struct {
	db         *mongo.Database
	migrations []Migration
}

func NewMigrator(db *mongo.Database) *Migrator {
	return &Migrator{
		db:         db,
		migrations: getMigrations(),
	}
}

func (m *Migrator) Up() error {
	// Create migrations collection if it doesn't exist
	err := m.createMigrationsCollection()
	if err != nil {
		return err
	}

	// Get current version
	currentVersion, err := m.getCurrentVersion()
	if err != nil {
		return err
	}

	// Run migrations
	for _, migration := range m.migrations {
		if migration.Version > currentVersion {
			log.Printf("Running migration %d: %s", migration.Version, migration.Description)

			err := migration.Up(m.db)
			if err != nil {
				return fmt.Errorf("migration %d failed: %w", migration.Version, err)
			}

			err = m.updateVersion(migration.Version)
			if err != nil {
				return fmt.Errorf("failed to update migration version: %w", err)
			}

			log.Printf("Migration %d completed successfully", migration.Version)
		}
	}

	return nil
}

func (m *Migrator) Down(targetVersion int) error {
	currentVersion, err := m.getCurrentVersion()
	if err != nil {
		return err
	}

	for i := len(m.migrations) - 1; i >= 0; i-- {
		migration := m.migrations[i]
		if migration.Version <= currentVersion && migration.Version > targetVersion {
			log.Printf("Reverting migration %d: %s", migration.Version, migration.Description)

			err := migration.Down(m.db)
			if err != nil {
				return fmt.Errorf("migration %d rollback failed: %w", migration.Version, err)
			}

			previousVersion := targetVersion
			if i > 0 {
				previousVersion = m.migrations[i-1].Version
			}

			err = m.updateVersion(previousVersion)
			if err != nil {
				return fmt.Errorf("failed to update migration version: %w", err)
			}

			log.Printf("Migration %d reverted successfully", migration.Version)
		}
	}

	return nil
}

func (m *Migrator) createMigrationsCollection() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collections, err := m.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return err
	}

	for _, name := range collections {
		if name == "migrations" {
			return nil
		}
	}

	return m.db.CreateCollection(ctx, "migrations")
}

func (m *Migrator) getCurrentVersion() (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var result struct {
		Version int `bson:"version"`
	}

	err := m.db.Collection("migrations").FindOne(ctx, bson.D{}).Decode(&result)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return 0, nil
		}
		return 0, err
	}

	return result.Version, nil
}

func (m *Migrator) updateVersion(version int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := m.db.Collection("migrations").ReplaceOne(
		ctx,
		bson.D{},
		bson.D{{Key: "version", Value: version}, {Key: "updated_at", Value: time.Now()}},
		options.Replace().SetUpsert(true),
	)

	return err
}

func getMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Create products collection with indexes",
			Up: func(db *mongo.Database) error {
				return createProductsIndexes(db)
			},
			Down: func(db *mongo.Database) error {
				return db.Collection("products").Drop(context.Background())
			},
		},
		{
			Version:     2,
			Description: "Create orders collection with indexes",
			Up: func(db *mongo.Database) error {
				return createOrdersIndexes(db)
			},
			Down: func(db *mongo.Database) error {
				return db.Collection("orders").Drop(context.Background())
			},
		},
		{
			Version:     3,
			Description: "Create payments collection with indexes",
			Up: func(db *mongo.Database) error {
				return createPaymentsIndexes(db)
			},
			Down: func(db *mongo.Database) error {
				return db.Collection("payments").Drop(context.Background())
			},
		},
		{
			Version:     4,
			Description: "Create coupons collection with indexes",
			Up: func(db *mongo.Database) error {
				return createCouponsIndexes(db)
			},
			Down: func(db *mongo.Database) error {
				return db.Collection("coupons").Drop(context.Background())
			},
		},
		{
			Version:     5,
			Description: "Create coupon usage ledger with indexes",
			Up: func(db *mongo.Database) error {
				return createCouponUsagesIndexes(db)
			},
			Down: func(db *mongo.Database) error {
				return db.Collection("coupon_usages").Drop(context.Background())
			},
		},
		{
			Version:     6,
			Description: "Create auto coupon rules and redemptions with indexes",
			Up: func(db *mongo.Database) error {
				return createAutoCouponIndexes(db)
			},
			Down: func(db *mongo.Database) error {
				if err := db.Collection("auto_coupon_rules").Drop(context.Background()); err != nil {
					return err
				}
				return db.Collection("coupon_redemptions").Drop(context.Background())
			},
		},
		{
			Version:     7,
			Description: "Create carts collection with indexes",
			Up: func(db *mongo.Database) error {
				return createCartsIndexes(db)
			},
			Down: func(db *mongo.Database) error {
				return db.Collection("carts").Drop(context.Background())
			},
		},
	}
}

func createProductsIndexes(db *mongo.Database) error {
	ctx := context.Background()
	collection := db.Collection("products")

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "category_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "brand_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "is_active", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "variants.sku", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

func createOrdersIndexes(db *mongo.Database) error {
	ctx := context.Background()
	collection := db.Collection("orders")

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "order_code", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "payment_status", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

func createPaymentsIndexes(db *mongo.Database) error {
	ctx := context.Background()
	collection := db.Collection("payments")

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "order_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "order_code", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "request_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

func createCouponsIndexes(db *mongo.Database) error {
	ctx := context.Background()
	collection := db.Collection("coupons")

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "is_active", Value: 1}, {Key: "end_date", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "applicable_users", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "auto_rule_id", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

func createCouponUsagesIndexes(db *mongo.Database) error {
	ctx := context.Background()
	collection := db.Collection("coupon_usages")

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "coupon_id", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "order_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

func createAutoCouponIndexes(db *mongo.Database) error {
	ctx := context.Background()

	ruleIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "is_active", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "trigger_type", Value: 1}},
		},
	}
	if _, err := db.Collection("auto_coupon_rules").Indexes().CreateMany(ctx, ruleIndexes); err != nil {
		return err
	}

	// The unique pair is what guarantees a rule fires at most once per user,
	// even under concurrent evaluation.
	redemptionIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "rule_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := db.Collection("coupon_redemptions").Indexes().CreateMany(ctx, redemptionIndexes)
	return err
}

func createCartsIndexes(db *mongo.Database) error {
	ctx := context.Background()
	collection := db.Collection("carts")

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
