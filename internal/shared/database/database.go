package database

import (
	"database/sql"
	"log"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Dialect identifies the SQL flavor of the configured store. The analytics
// queries only differ in date formatting, so the adapter is small.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// DateLabelExpr returns a SQL expression that formats a date column into a
// string bucket label for the given granularity (day, month or year).
func (d Dialect) DateLabelExpr(column, granularity string) string {
	if d == DialectPostgres {
		fmt := map[string]string{
			"day":   "YYYY-MM-DD",
			"month": "YYYY-MM",
			"year":  "YYYY",
		}[granularity]
		return "to_char(" + column + "::date, '" + fmt + "')"
	}

	// SQLite stores order_date as TEXT in YYYY-MM-DD format.
	fmt := map[string]string{
		"day":   "%Y-%m-%d",
		"month": "%Y-%m",
		"year":  "%Y",
	}[granularity]
	return "strftime('" + fmt + "', " + column + ")"
}

// DB wraps both GORM and sql.DB, the latter for pool settings and pings.
type DB struct {
	*sql.DB
	GORM    *gorm.DB
	Dialect Dialect

	queryTimeout time.Duration
}

// NewDB opens a connection to the configured relational store.
func NewDB(connStr, dialect string, queryTimeoutSeconds int) *DB {
	if connStr == "" {
		log.Fatal("❌ DATABASE_URL is empty")
	}

	var dialector gorm.Dialector
	var resolved Dialect
	switch dialect {
	case "postgres", "postgresql":
		dialector = postgres.Open(connStr)
		resolved = DialectPostgres
	case "sqlite", "":
		dialector = sqlite.Open(connStr)
		resolved = DialectSQLite
	default:
		log.Fatalf("❌ Unsupported DB_DIALECT: %s", dialect)
	}

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("❌ Failed to open database: %v", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatalf("❌ Failed to get sql.DB: %v", err)
	}

	// Connection pool settings
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		log.Fatalf("❌ Failed to ping database: %v", err)
	}

	if queryTimeoutSeconds <= 0 {
		queryTimeoutSeconds = 30
	}

	log.Printf("✅ Database connected (%s)", resolved)
	return &DB{
		DB:           sqlDB,
		GORM:         gormDB,
		Dialect:      resolved,
		queryTimeout: time.Duration(queryTimeoutSeconds) * time.Second,
	}
}

func (db *DB) Close() error {
	log.Println("🔌 Closing database connection...")
	return db.DB.Close()
}
