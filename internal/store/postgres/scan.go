package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/alfredjeanlab/switchboard/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanAgent scans a single row into a model.Agent.
// The row must contain columns in the order defined by agentColumns.
func scanAgent(row scannable) (*model.Agent, error) {
	var (
		a      model.Agent
		skills sql.NullString
	)
	if err := row.Scan(
		&a.ID,
		&a.Name,
		&a.UserID,
		&a.State,
		&a.LastStateChange,
		&skills,
	); err != nil {
		return nil, err
	}
	decoded, err := decodeSkills(skills.String)
	if err != nil {
		return nil, fmt.Errorf("agent %d: %w", a.ID, err)
	}
	a.Skills = decoded
	a.LastStateChange = a.LastStateChange.UTC()
	return &a, nil
}

// scanSkill scans a row in skillColumns order.
func scanSkill(row scannable) (*model.Skill, error) {
	var (
		s           model.Skill
		description sql.NullString
	)
	if err := row.Scan(&s.ID, &s.Name, &description, &s.IsActive, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.Description = description.String
	return &s, nil
}

// scanUser scans a row in userColumns order.
func scanUser(row scannable) (*model.User, error) {
	var u model.User
	if err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.IsAdmin,
		&u.IsActive,
		&u.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}

// encodeSkills serializes a skill list in its compact stored form, a JSON
// array. A nil list is stored as "[]".
func encodeSkills(skills []string) (string, error) {
	if skills == nil {
		skills = []string{}
	}
	data, err := json.Marshal(skills)
	if err != nil {
		return "", fmt.Errorf("encode skills: %w", err)
	}
	return string(data), nil
}

// decodeSkills parses the stored form. NULL and empty text decode to an
// empty, non-nil list.
func decodeSkills(s string) ([]string, error) {
	skills := []string{}
	if s == "" {
		return skills, nil
	}
	if err := json.Unmarshal([]byte(s), &skills); err != nil {
		return nil, fmt.Errorf("decode skills: %w", err)
	}
	if skills == nil {
		skills = []string{}
	}
	return skills, nil
}
