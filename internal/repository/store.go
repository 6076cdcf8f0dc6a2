package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store groups the repositories that share one database handle. Inside Transaction the
// callback receives a Store bound to the transaction; everything done through it commits
// or rolls back together.
type Store interface {
	Transaction(ctx context.Context, fn func(tx Store) error) error
	Orders() OrderRepository
	OrderItems() OrderItemRepository
	Inventory() InventoryRepository
	Menu() MenuRepository
	Tables() TableRepository
	Sequences() SequenceRepository
	Financial() FinancialRepository
	Users() UserRepository
}

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

func (s *gormStore) Orders() OrderRepository         { return NewOrderRepository(s.db) }
func (s *gormStore) OrderItems() OrderItemRepository { return NewOrderItemRepository(s.db) }
func (s *gormStore) Inventory() InventoryRepository  { return NewInventoryRepository(s.db) }
func (s *gormStore) Menu() MenuRepository            { return NewMenuRepository(s.db) }
func (s *gormStore) Tables() TableRepository         { return NewTableRepository(s.db) }
func (s *gormStore) Sequences() SequenceRepository   { return NewSequenceRepository(s.db) }
func (s *gormStore) Financial() FinancialRepository  { return NewFinancialRepository(s.db) }
func (s *gormStore) Users() UserRepository           { return NewUserRepository(s.db) }

// forUpdate adds SELECT ... FOR UPDATE. Dialects without row locks drop the clause.
func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// IsUniqueViolation reports whether err is a unique constraint failure.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
