package postgres

import (
	"context"
	"database/sql"

	"github.com/alfredjeanlab/switchboard/internal/model"
)

// agentColumns is the column list used for SELECT statements on the agents table.
const agentColumns = `id, name, user_id, state, last_state_change, skills`

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func queryCreateAgent(ctx context.Context, db executor, a *model.Agent) error {
	skills, err := encodeSkills(a.Skills)
	if err != nil {
		return err
	}
	row := db.QueryRowContext(ctx, `
		INSERT INTO agents (name, user_id, state, last_state_change, skills)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		a.Name,
		a.UserID,
		string(a.State),
		a.LastStateChange,
		skills,
	)
	return mapError(row.Scan(&a.ID))
}

func queryGetAgent(ctx context.Context, db executor, id int64) (*model.Agent, error) {
	row := db.QueryRowContext(ctx, `SELECT `+agentColumns+` FROM agents WHERE id = $1`, id)
	a, err := scanAgent(row)
	if err != nil {
		return nil, mapError(err)
	}
	return a, nil
}

func queryGetAgentByUser(ctx context.Context, db executor, userID int64) (*model.Agent, error) {
	row := db.QueryRowContext(ctx, `SELECT `+agentColumns+` FROM agents WHERE user_id = $1`, userID)
	a, err := scanAgent(row)
	if err != nil {
		return nil, mapError(err)
	}
	return a, nil
}

func queryListAgents(ctx context.Context, db executor) ([]*model.Agent, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+agentColumns+` FROM agents ORDER BY name COLLATE "C", id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	agents := []*model.Agent{}
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}
	return agents, rows.Err()
}

func queryUpdateAgent(ctx context.Context, db executor, a *model.Agent) error {
	skills, err := encodeSkills(a.Skills)
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `
		UPDATE agents
		SET state = $2, last_state_change = $3, skills = $4
		WHERE id = $1`,
		a.ID,
		string(a.State),
		a.LastStateChange,
		skills,
	)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(res)
}

func queryUpdateAgentSkills(ctx context.Context, db executor, id int64, skills []string) error {
	encoded, err := encodeSkills(skills)
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `UPDATE agents SET skills = $2 WHERE id = $1`, id, encoded)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(res)
}
