package postgres

import (
	"context"
	"database/sql"

	"github.com/alfredjeanlab/switchboard/internal/model"
	"github.com/alfredjeanlab/switchboard/internal/store"
)

const skillColumns = `id, name, description, is_active, created_at`

// SkillStore implements store.SkillStore.
type SkillStore struct {
	db *sql.DB
}

var _ store.SkillStore = (*SkillStore)(nil)

// NewSkillStore opens the skill catalog database and runs its migrations.
func NewSkillStore(databaseURL string) (*SkillStore, error) {
	db, err := open(databaseURL, "skills")
	if err != nil {
		return nil, err
	}
	return &SkillStore{db: db}, nil
}

func (s *SkillStore) Close() error                   { return s.db.Close() }
func (s *SkillStore) Ping(ctx context.Context) error { return ping(ctx, s.db) }

func (s *SkillStore) CreateSkill(ctx context.Context, sk *model.Skill) error {
	return queryCreateSkill(ctx, s.db, sk)
}

func (s *SkillStore) GetSkill(ctx context.Context, id int64) (*model.Skill, error) {
	return queryGetSkill(ctx, s.db, id)
}

func (s *SkillStore) GetSkillByName(ctx context.Context, name string) (*model.Skill, error) {
	return queryGetSkillByName(ctx, s.db, name)
}

func (s *SkillStore) ListSkills(ctx context.Context, activeOnly bool) ([]*model.Skill, error) {
	return queryListSkills(ctx, s.db, activeOnly)
}

func (s *SkillStore) UpdateSkill(ctx context.Context, sk *model.Skill) error {
	return queryUpdateSkill(ctx, s.db, sk)
}

func (s *SkillStore) DeleteSkill(ctx context.Context, id int64) error {
	return queryDeleteSkill(ctx, s.db, id)
}

func (s *SkillStore) CountSkills(ctx context.Context) (int, error) {
	return queryCountSkills(ctx, s.db)
}

func queryCreateSkill(ctx context.Context, db executor, sk *model.Skill) error {
	row := db.QueryRowContext(ctx, `
		INSERT INTO skills (name, description, is_active)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		sk.Name,
		nullString(sk.Description),
		sk.IsActive,
	)
	return mapError(row.Scan(&sk.ID, &sk.CreatedAt))
}

func queryGetSkill(ctx context.Context, db executor, id int64) (*model.Skill, error) {
	row := db.QueryRowContext(ctx, `SELECT `+skillColumns+` FROM skills WHERE id = $1`, id)
	sk, err := scanSkill(row)
	if err != nil {
		return nil, mapError(err)
	}
	return sk, nil
}

func queryGetSkillByName(ctx context.Context, db executor, name string) (*model.Skill, error) {
	row := db.QueryRowContext(ctx, `SELECT `+skillColumns+` FROM skills WHERE lower(name) = lower($1)`, name)
	sk, err := scanSkill(row)
	if err != nil {
		return nil, mapError(err)
	}
	return sk, nil
}

func queryListSkills(ctx context.Context, db executor, activeOnly bool) ([]*model.Skill, error) {
	q := `SELECT ` + skillColumns + ` FROM skills`
	if activeOnly {
		q += ` WHERE is_active`
	}
	q += ` ORDER BY name COLLATE "C"`

	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	skills := []*model.Skill{}
	for rows.Next() {
		sk, err := scanSkill(rows)
		if err != nil {
			return nil, err
		}
		skills = append(skills, sk)
	}
	return skills, rows.Err()
}

func queryUpdateSkill(ctx context.Context, db executor, sk *model.Skill) error {
	res, err := db.ExecContext(ctx, `
		UPDATE skills SET name = $2, description = $3, is_active = $4
		WHERE id = $1`,
		sk.ID,
		sk.Name,
		nullString(sk.Description),
		sk.IsActive,
	)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(res)
}

func queryDeleteSkill(ctx context.Context, db executor, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM skills WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func queryCountSkills(ctx context.Context, db executor) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM skills`).Scan(&n)
	return n, err
}

// nullString returns a sql.NullString that is NULL when s is empty.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
