package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alfredjeanlab/switchboard/internal/model"
	"github.com/alfredjeanlab/switchboard/internal/store"
)

// AgentStore implements store.AgentStore.
type AgentStore struct {
	db *sql.DB
}

// Compile-time check that AgentStore implements store.AgentStore.
var _ store.AgentStore = (*AgentStore)(nil)

// NewAgentStore opens the registry database and runs its migrations.
func NewAgentStore(databaseURL string) (*AgentStore, error) {
	db, err := open(databaseURL, "agents")
	if err != nil {
		return nil, err
	}
	return &AgentStore{db: db}, nil
}

func (s *AgentStore) Close() error {
	return s.db.Close()
}

func (s *AgentStore) Ping(ctx context.Context) error {
	return ping(ctx, s.db)
}

func (s *AgentStore) CreateAgent(ctx context.Context, a *model.Agent) error {
	return queryCreateAgent(ctx, s.db, a)
}

func (s *AgentStore) GetAgent(ctx context.Context, id int64) (*model.Agent, error) {
	return queryGetAgent(ctx, s.db, id)
}

func (s *AgentStore) GetAgentByUser(ctx context.Context, userID int64) (*model.Agent, error) {
	return queryGetAgentByUser(ctx, s.db, userID)
}

func (s *AgentStore) ListAgents(ctx context.Context) ([]*model.Agent, error) {
	return queryListAgents(ctx, s.db)
}

func (s *AgentStore) UpdateAgent(ctx context.Context, a *model.Agent) error {
	return queryUpdateAgent(ctx, s.db, a)
}

func (s *AgentStore) UpdateAgentSkills(ctx context.Context, id int64, skills []string) error {
	return queryUpdateAgentSkills(ctx, s.db, id, skills)
}

// RunInTransaction begins a database transaction, creates a txAgentStore that
// delegates to it, calls fn, and commits on success or rolls back on error.
func (s *AgentStore) RunInTransaction(ctx context.Context, fn func(tx store.AgentStore) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(&txAgentStore{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// txAgentStore implements store.AgentStore using a *sql.Tx.
type txAgentStore struct {
	tx *sql.Tx
}

var _ store.AgentStore = (*txAgentStore)(nil)

func (s *txAgentStore) CreateAgent(ctx context.Context, a *model.Agent) error {
	return queryCreateAgent(ctx, s.tx, a)
}

func (s *txAgentStore) GetAgent(ctx context.Context, id int64) (*model.Agent, error) {
	return queryGetAgent(ctx, s.tx, id)
}

func (s *txAgentStore) GetAgentByUser(ctx context.Context, userID int64) (*model.Agent, error) {
	return queryGetAgentByUser(ctx, s.tx, userID)
}

func (s *txAgentStore) ListAgents(ctx context.Context) ([]*model.Agent, error) {
	return queryListAgents(ctx, s.tx)
}

func (s *txAgentStore) UpdateAgent(ctx context.Context, a *model.Agent) error {
	return queryUpdateAgent(ctx, s.tx, a)
}

func (s *txAgentStore) UpdateAgentSkills(ctx context.Context, id int64, skills []string) error {
	return queryUpdateAgentSkills(ctx, s.tx, id, skills)
}

// RunInTransaction on a txAgentStore reuses the existing transaction (no nesting).
func (s *txAgentStore) RunInTransaction(ctx context.Context, fn func(tx store.AgentStore) error) error {
	return fn(s)
}

// Ping is a no-op inside a transaction.
func (s *txAgentStore) Ping(context.Context) error { return nil }

// Close is a no-op for a transaction store; the parent store owns the connection.
func (s *txAgentStore) Close() error { return nil }
