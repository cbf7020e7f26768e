// Package testdb opens in-memory SQLite databases carrying the application
// schema. It is only imported from tests.
package testdb

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Tables are created from raw SQLite DDL instead of AutoMigrate because the
// model tags use PostgreSQL-specific defaults like gen_random_uuid().
var Tables = []string{
	`CREATE TABLE IF NOT EXISTS "users" (
		"id" TEXT PRIMARY KEY, "email" TEXT NOT NULL UNIQUE, "password" TEXT NOT NULL,
		"first_name" TEXT, "last_name" TEXT, "phone" TEXT, "role" TEXT DEFAULT 'customer',
		"is_active" INTEGER NOT NULL DEFAULT 0, "is_verified" INTEGER NOT NULL DEFAULT 0,
		"created_at" DATETIME, "updated_at" DATETIME, "deleted_at" DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS "store_owner_profiles" (
		"id" TEXT PRIMARY KEY, "user_id" TEXT NOT NULL UNIQUE, "business_name" TEXT NOT NULL,
		"tax_id" TEXT, "created_at" DATETIME, "updated_at" DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS "driver_profiles" (
		"id" TEXT PRIMARY KEY, "user_id" TEXT NOT NULL UNIQUE, "license_number" TEXT NOT NULL,
		"vehicle_type" TEXT, "vehicle_plate" TEXT, "created_at" DATETIME, "updated_at" DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS "locations" (
		"id" TEXT PRIMARY KEY, "address" TEXT, "city" TEXT,
		"latitude" REAL NOT NULL, "longitude" REAL NOT NULL,
		"created_at" DATETIME, "updated_at" DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS "favorite_locations" (
		"id" TEXT PRIMARY KEY, "user_id" TEXT NOT NULL, "location_id" TEXT NOT NULL,
		"label" TEXT, "created_at" DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS "stores" (
		"id" TEXT PRIMARY KEY, "name" TEXT NOT NULL, "description" TEXT, "type" TEXT NOT NULL,
		"location_id" TEXT NOT NULL, "phone" TEXT, "email" TEXT, "operating_hours" TEXT,
		"is_active" INTEGER NOT NULL DEFAULT 0, "is_temporarily_closed" INTEGER NOT NULL DEFAULT 0,
		"closure_reason" TEXT, "owner_id" TEXT NOT NULL,
		"created_at" DATETIME, "updated_at" DATETIME, "deleted_at" DATETIME,
		CONSTRAINT fk_stores_location FOREIGN KEY ("location_id") REFERENCES "locations"("id")
	)`,
	`CREATE TABLE IF NOT EXISTS "products" (
		"id" TEXT PRIMARY KEY, "store_id" TEXT NOT NULL, "name" TEXT NOT NULL, "description" TEXT,
		"price" REAL NOT NULL, "stock_quantity" INTEGER NOT NULL DEFAULT 0,
		"min_stock_level" INTEGER NOT NULL DEFAULT 0, "category" TEXT, "sku" TEXT,
		"image_url" TEXT, "is_available" INTEGER NOT NULL DEFAULT 0,
		"created_at" DATETIME, "updated_at" DATETIME, "deleted_at" DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS "store_staff" (
		"id" TEXT PRIMARY KEY, "store_id" TEXT NOT NULL, "user_id" TEXT, "name" TEXT NOT NULL,
		"email" TEXT, "phone" TEXT, "role" TEXT NOT NULL, "is_active" INTEGER NOT NULL DEFAULT 0,
		"created_at" DATETIME, "updated_at" DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS "business_hours" (
		"id" TEXT PRIMARY KEY, "store_id" TEXT NOT NULL, "day_of_week" INTEGER NOT NULL,
		"open_time" TEXT NOT NULL, "close_time" TEXT NOT NULL, "is_closed" INTEGER NOT NULL DEFAULT 0,
		"created_at" DATETIME, "updated_at" DATETIME
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_store_day ON "business_hours"("store_id","day_of_week")`,
	`CREATE TABLE IF NOT EXISTS "taxi_stands" (
		"id" TEXT PRIMARY KEY, "name" TEXT NOT NULL, "description" TEXT,
		"capacity" INTEGER NOT NULL, "location_id" TEXT NOT NULL,
		"is_active" INTEGER NOT NULL DEFAULT 0,
		"created_at" DATETIME, "updated_at" DATETIME, "deleted_at" DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS "orders" (
		"id" TEXT PRIMARY KEY, "store_id" TEXT NOT NULL, "user_id" TEXT NOT NULL,
		"order_number" TEXT NOT NULL UNIQUE, "status" TEXT NOT NULL, "total" REAL NOT NULL,
		"created_at" DATETIME, "updated_at" DATETIME, "deleted_at" DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS "order_items" (
		"id" TEXT PRIMARY KEY, "order_id" TEXT NOT NULL, "product_id" TEXT NOT NULL,
		"quantity" INTEGER NOT NULL, "price" REAL NOT NULL,
		"created_at" DATETIME, "updated_at" DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS "services" (
		"id" TEXT PRIMARY KEY, "user_id" TEXT NOT NULL, "driver_id" TEXT,
		"service_type" TEXT NOT NULL, "status" TEXT NOT NULL, "price" REAL,
		"created_at" DATETIME, "updated_at" DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS "payments" (
		"id" TEXT PRIMARY KEY, "user_id" TEXT NOT NULL, "service_id" TEXT,
		"amount" REAL NOT NULL, "method" TEXT NOT NULL, "status" TEXT NOT NULL,
		"created_at" DATETIME, "updated_at" DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS "reviews" (
		"id" TEXT PRIMARY KEY, "service_id" TEXT NOT NULL, "reviewer_id" TEXT NOT NULL,
		"driver_id" TEXT, "rating" INTEGER NOT NULL, "punctuality_rating" INTEGER,
		"cleanliness_rating" INTEGER, "courtesy_rating" INTEGER, "comment" TEXT,
		"created_at" DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS "notifications" (
		"id" TEXT PRIMARY KEY, "user_id" TEXT NOT NULL, "title" TEXT NOT NULL,
		"message" TEXT, "is_read" INTEGER NOT NULL DEFAULT 0, "created_at" DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS "audit_logs" (
		"id" TEXT PRIMARY KEY, "user_id" TEXT NOT NULL, "action" TEXT NOT NULL,
		"entity_type" TEXT NOT NULL, "entity_id" TEXT NOT NULL,
		"old_values" TEXT, "new_values" TEXT, "ip_address" TEXT, "user_agent" TEXT,
		"created_at" DATETIME
	)`,
}

// Truncate lists the tables in delete order.
var Truncate = []string{
	"audit_logs", "notifications", "reviews", "payments", "services",
	"order_items", "orders", "business_hours", "store_staff", "products",
	"stores", "taxi_stands", "favorite_locations", "locations",
	"driver_profiles", "store_owner_profiles", "users",
}

// Open returns a fresh private in-memory database with every table created.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := OpenDSN(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	return db
}

// OpenDSN opens dsn with SQLite and creates the schema. A single connection
// is kept so every caller sees the same in-memory database.
func OpenDSN(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	for _, stmt := range Tables {
		if err := db.Exec(stmt).Error; err != nil {
			return nil, err
		}
	}
	return db, nil
}

// Reset deletes every row, keeping the schema.
func Reset(db *gorm.DB) *gorm.DB {
	for _, table := range Truncate {
		db.Exec("DELETE FROM " + table)
	}
	return db
}
