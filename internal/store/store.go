package store

import (
	"context"
	"errors"

	"github.com/talhabinjaved/HireMatch/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Store struct {
	db *gorm.DB
}

// New opens the database and migrates the schema. The store holds no
// business rules; seeding the first super admin is the bootstrap layer's job.
func New(ctx context.Context, driver, dsn string) (*Store, error) {
	dialector, err := openDialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := db.WithContext(ctx).AutoMigrate(
		&models.Client{},
		&models.AccessToken{},
		&models.SuperAdmin{},
		&models.UsageRecord{},
		&models.CV{},
		&models.JobDescription{},
	); err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

// Health checks the database connection
func (s *Store) Health() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Close releases the underlying database connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// DB exposes the underlying gorm handle for queries the store does not wrap.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// translate maps gorm sentinel errors onto the store's own.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrRecordNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateKey
	default:
		return err
	}
}
