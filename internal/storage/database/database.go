// Package database stores users, tokens, posts and comments with gorm on
// PostgreSQL or SQLite. The *gorm.DB is passed in explicitly; there is no package state.
package database

import (
	"errors"
	"fmt"

	"github.com/VitaminP8/forum/internal/config"
	"github.com/VitaminP8/forum/models"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

const (
	dialectPostgres = "postgres"
	dialectSQLite   = "sqlite3"
)

// Open connects to the database selected by cfg.Storage.
func Open(cfg *config.Config) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Storage {
	case config.StoragePostgres:
		db, err = gorm.Open(dialectPostgres, cfg.PostgresDSN())
	case config.StorageSQLite:
		db, err = gorm.Open(dialectSQLite, cfg.Database.SQLitePath)
	default:
		return nil, fmt.Errorf("storage %q is not a database", cfg.Storage)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	db.LogMode(cfg.LogLevel == "debug")
	return db, nil
}

type foreignKey struct {
	model interface{}
	field string
	dest  string
}

var foreignKeys = []foreignKey{
	{&models.Post{}, "user_id", "users(id)"},
	{&models.Comment{}, "user_id", "users(id)"},
	{&models.Comment{}, "post_id", "posts(id)"},
	{&models.Token{}, "user_id", "users(id)"},
}

// Migrate creates or updates the schema. On PostgreSQL rows owned by a user or a post
// are also removed by ON DELETE CASCADE foreign keys.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(&models.User{}, &models.Token{}, &models.Post{}, &models.Comment{}).Error
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	if db.Dialect().GetName() != dialectPostgres {
		return nil
	}

	for _, fk := range foreignKeys {
		// same name AddForeignKey gives the constraint
		name := db.Dialect().BuildKeyName(db.NewScope(fk.model).TableName(), fk.field, fk.dest, "foreign")
		var count int
		err := db.Raw(
			"SELECT COUNT(*) FROM information_schema.table_constraints WHERE constraint_name = ?", name,
		).Row().Scan(&count)
		if err != nil {
			return fmt.Errorf("could not inspect constraint %s: %w", name, err)
		}
		if count > 0 {
			continue
		}
		if err := db.Model(fk.model).AddForeignKey(fk.field, fk.dest, "CASCADE", "CASCADE").Error; err != nil {
			return fmt.Errorf("could not add foreign key %s: %w", name, err)
		}
	}
	return nil
}

// withTx runs fn inside a transaction and rolls back if it fails or panics.
func withTx(db *gorm.DB, fn func(tx *gorm.DB) error) (err error) {
	tx := db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("could not begin transaction: %w", tx.Error)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit().Error; err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
