package doccopy

import (
	"context"
	"database/sql"

	"github.com/docbridge-labs/docbridge-go/internal/platform/postgres"
	"github.com/docbridge-labs/docbridge-go/internal/repo"
	repopg "github.com/docbridge-labs/docbridge-go/internal/repo/postgres"
)

// Scope bundles the stores bound to one query surface (a connection or an
// open transaction).
type Scope interface {
	Forms() repo.FormRepository
	Submissions() repo.SubmissionRepository
	Series() repo.SeriesRepository
	Audit() repo.CopyAuditRepository
}

// TxScope is a Scope whose writes belong to a transaction the holder controls.
type TxScope interface {
	Scope
	Commit() error
	Rollback() error
}

// Database opens persistence scopes over one underlying connection pool.
type Database interface {
	// Scope returns stores in auto-commit mode.
	Scope() Scope
	// Begin opens a transaction-bound scope.
	Begin(ctx context.Context) (TxScope, error)
}

// ScopeFactory opens an entirely independent Database with its own
// connection. The audit fallback path uses it so an audit write cannot be
// dragged down by the primary connection's state.
type ScopeFactory interface {
	Open(ctx context.Context) (Database, func() error, error)
}

// SQLDatabase is the production Database over a *sql.DB.
type SQLDatabase struct {
	db *sql.DB
}

func NewSQLDatabase(db *sql.DB) *SQLDatabase {
	if db == nil {
		return nil
	}
	return &SQLDatabase{db: db}
}

func (d *SQLDatabase) Scope() Scope {
	return sqlScope{q: d.db}
}

func (d *SQLDatabase) Begin(ctx context.Context) (TxScope, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return sqlTxScope{sqlScope: sqlScope{q: tx}, tx: tx}, nil
}

type sqlScope struct {
	q repopg.DB
}

func (s sqlScope) Forms() repo.FormRepository             { return repopg.NewFormStore(s.q) }
func (s sqlScope) Submissions() repo.SubmissionRepository { return repopg.NewSubmissionStore(s.q) }
func (s sqlScope) Series() repo.SeriesRepository          { return repopg.NewSeriesStore(s.q) }
func (s sqlScope) Audit() repo.CopyAuditRepository        { return repopg.NewCopyAuditStore(s.q) }

type sqlTxScope struct {
	sqlScope
	tx *sql.Tx
}

func (s sqlTxScope) Commit() error   { return s.tx.Commit() }
func (s sqlTxScope) Rollback() error { return s.tx.Rollback() }

// PoolScopeFactory opens a fresh connection pool per scope from the same
// database configuration.
type PoolScopeFactory struct {
	cfg postgres.Config
}

func NewPoolScopeFactory(cfg postgres.Config) PoolScopeFactory {
	return PoolScopeFactory{cfg: cfg}
}

func (f PoolScopeFactory) Open(ctx context.Context) (Database, func() error, error) {
	db, err := postgres.Open(ctx, f.cfg)
	if err != nil {
		return nil, nil, err
	}
	return NewSQLDatabase(db), db.Close, nil
}
