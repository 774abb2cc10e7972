package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/assetdesk-backend/internal/store"
	"github.com/angelmondragon/assetdesk-backend/pkg/db"
)

var _ store.Store = (*Store)(nil)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Store is the gorm-backed entity store.
type Store struct {
	Base
	runner txRunner
}

// NewStore builds a Store over conn. runner is normally the *db.Client that
// owns conn and opens transactions.
func NewStore(conn *gorm.DB, runner txRunner) *Store {
	return &Store{Base: NewBase(conn), runner: runner}
}

func (s *Store) Employees() store.Employees     { return &EmployeeRepository{Base: s.Base} }
func (s *Store) Assets() store.Assets           { return &AssetRepository{Base: s.Base} }
func (s *Store) Assignments() store.Assignments { return &AssignmentRepository{Base: s.Base} }

// WithTx opens a database transaction; inside one, it runs fn inline.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Store) error) error {
	if s.runner == nil {
		return fn(s)
	}
	return s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		return fn(&Store{Base: NewBase(tx)})
	})
}

// New builds a Store over the client's connection.
func New(client *db.Client) *Store {
	return NewStore(client.DB(), client)
}
