package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a keyed lookup or delete matches no row
var ErrNotFound = errors.New("record not found")

// Entity is any model carrying a store-assigned identifier
type Entity interface {
	GetID() uint64
}

// Store provides keyed CRUD over the entity tables
type Store struct {
	db *gorm.DB
}

// New creates a store on top of an open gorm connection
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying connection for migrations
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Ping runs a no-op query against the database
func (s *Store) Ping(ctx context.Context) error {
	var one int
	if err := s.db.WithContext(ctx).Raw("SELECT 1").Scan(&one).Error; err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// List returns every row of T ordered by ascending id
func List[T any](ctx context.Context, s *Store, preloads ...string) ([]T, error) {
	var rows []T
	q := s.db.WithContext(ctx).Order("id ASC")
	for _, p := range preloads {
		q = q.Preload(p)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list: %w", err)
	}
	return rows, nil
}

// Insert creates a row and returns its assigned id
func Insert[T Entity](ctx context.Context, s *Store, row T) (uint64, error) {
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return 0, fmt.Errorf("failed to insert: %w", err)
	}
	return row.GetID(), nil
}

// FetchByID loads one row of T, returning ErrNotFound when absent
func FetchByID[T any](ctx context.Context, s *Store, id uint64, preloads ...string) (*T, error) {
	var row T
	q := s.db.WithContext(ctx)
	for _, p := range preloads {
		q = q.Preload(p)
	}
	if err := q.First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch id %d: %w", id, err)
	}
	return &row, nil
}

// DeleteByID removes one row of T; zero rows affected is ErrNotFound
func DeleteByID[T any](ctx context.Context, s *Store, id uint64) error {
	var row T
	result := s.db.WithContext(ctx).Delete(&row, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete id %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
