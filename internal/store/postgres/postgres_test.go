package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/alfredjeanlab/switchboard/internal/model"
	"github.com/alfredjeanlab/switchboard/internal/store"
)

// newMockDB creates a sqlmock database with automatic cleanup and expectation checking.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unfulfilled expectations: %v", err)
		}
		db.Close()
	})
	return db, mock
}

var agentRowColumns = []string{"id", "name", "user_id", "state", "last_state_change", "skills"}

func TestMapError(t *testing.T) {
	for _, tc := range []struct {
		name string
		in   error
		want error
	}{
		{"NoRows", sql.ErrNoRows, store.ErrNotFound},
		{"UniqueViolation", &pq.Error{Code: "23505", Constraint: "agents_user_id_key"}, store.ErrDuplicate},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got := mapError(tc.in); !errors.Is(got, tc.want) {
				t.Errorf("mapError(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}

	other := errors.New("connection reset")
	if got := mapError(other); got != other {
		t.Errorf("mapError passed through %v as %v", other, got)
	}
	if mapError(&pq.Error{Code: "23503"}) == nil {
		t.Error("foreign key violation mapped to nil")
	}
}

func TestSkillsEncoding(t *testing.T) {
	for _, tc := range []struct {
		in   []string
		want string
	}{
		{nil, "[]"},
		{[]string{}, "[]"},
		{[]string{"1", "3"}, `["1","3"]`},
	} {
		got, err := encodeSkills(tc.in)
		if err != nil {
			t.Fatalf("encodeSkills(%v): %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("encodeSkills(%v) = %s, want %s", tc.in, got, tc.want)
		}
	}

	for _, in := range []string{"", "[]", "null"} {
		got, err := decodeSkills(in)
		if err != nil {
			t.Fatalf("decodeSkills(%q): %v", in, err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("decodeSkills(%q) = %#v, want empty non-nil", in, got)
		}
	}

	if _, err := decodeSkills("Sales,Support"); err == nil {
		t.Error("decodeSkills accepted non-JSON text")
	}
}

func TestQueryCreateAgent(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("INSERT INTO agents").
		WithArgs("alice", int64(7), "AVAILABLE", now, "[]").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	a := &model.Agent{Name: "alice", UserID: 7, State: model.StateAvailable, LastStateChange: now}
	if err := queryCreateAgent(context.Background(), db, a); err != nil {
		t.Fatalf("queryCreateAgent: %v", err)
	}
	if a.ID != 42 {
		t.Errorf("ID = %d, want 42", a.ID)
	}
}

func TestQueryCreateAgent_Duplicate(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("INSERT INTO agents").
		WithArgs("alice", int64(7), "AVAILABLE", sqlmock.AnyArg(), "[]").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "agents_user_id_key"})

	a := &model.Agent{Name: "alice", UserID: 7, State: model.StateAvailable, LastStateChange: time.Now()}
	err := queryCreateAgent(context.Background(), db, a)
	if !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("err = %v, want ErrDuplicate", err)
	}
}

func TestQueryGetAgent(t *testing.T) {
	db, mock := newMockDB(t)
	ts := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT .+ FROM agents WHERE id = \\$1").
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(agentRowColumns).
			AddRow(3, "bob", 9, "ON_CALL", ts, `["2","5"]`))

	a, err := queryGetAgent(context.Background(), db, 3)
	if err != nil {
		t.Fatalf("queryGetAgent: %v", err)
	}
	if a.Name != "bob" || a.UserID != 9 || a.State != model.StateOnCall {
		t.Errorf("got %+v", a)
	}
	if !a.LastStateChange.Equal(ts) {
		t.Errorf("LastStateChange = %v, want %v", a.LastStateChange, ts)
	}
	if len(a.Skills) != 2 || a.Skills[0] != "2" || a.Skills[1] != "5" {
		t.Errorf("Skills = %v, want [2 5]", a.Skills)
	}
}

func TestQueryGetAgent_NotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT .+ FROM agents WHERE id = \\$1").
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(agentRowColumns))

	_, err := queryGetAgent(context.Background(), db, 99)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestQueryGetAgentByUser(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT .+ FROM agents WHERE user_id = \\$1").
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(agentRowColumns).
			AddRow(3, "bob", 9, "AVAILABLE", time.Now(), nil))

	a, err := queryGetAgentByUser(context.Background(), db, 9)
	if err != nil {
		t.Fatalf("queryGetAgentByUser: %v", err)
	}
	if a.ID != 3 || a.Skills == nil {
		t.Errorf("got %+v", a)
	}
}

func TestQueryListAgents_OrderedByName(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT .+ FROM agents ORDER BY name COLLATE "C", id$`).
		WillReturnRows(sqlmock.NewRows(agentRowColumns).
			AddRow(2, "alice", 5, "AVAILABLE", now, "[]").
			AddRow(1, "zed", 4, "ON_LUNCH", now, "[]"))

	agents, err := queryListAgents(context.Background(), db)
	if err != nil {
		t.Fatalf("queryListAgents: %v", err)
	}
	if len(agents) != 2 || agents[0].Name != "alice" || agents[1].Name != "zed" {
		t.Errorf("got %d agents: %+v", len(agents), agents)
	}
}

func TestQueryUpdateAgent(t *testing.T) {
	db, mock := newMockDB(t)
	ts := time.Date(2024, 1, 1, 12, 30, 0, 0, time.UTC)

	mock.ExpectExec("UPDATE agents\\s+SET state = \\$2, last_state_change = \\$3, skills = \\$4").
		WithArgs(int64(3), "ON_LUNCH", ts, `["1"]`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	a := &model.Agent{ID: 3, State: model.StateOnLunch, LastStateChange: ts, Skills: []string{"1"}}
	if err := queryUpdateAgent(context.Background(), db, a); err != nil {
		t.Fatalf("queryUpdateAgent: %v", err)
	}
}

func TestQueryUpdateAgent_Missing(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec("UPDATE agents").
		WillReturnResult(sqlmock.NewResult(0, 0))

	a := &model.Agent{ID: 3, State: model.StateAvailable, LastStateChange: time.Now()}
	if err := queryUpdateAgent(context.Background(), db, a); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestQueryUpdateAgentSkills(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec("UPDATE agents SET skills = \\$2 WHERE id = \\$1").
		WithArgs(int64(3), `["4","2"]`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := queryUpdateAgentSkills(context.Background(), db, 3, []string{"4", "2"}); err != nil {
		t.Fatalf("queryUpdateAgentSkills: %v", err)
	}
}

func TestRunInTransaction_RollbackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	s := &AgentStore{db: db}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM agents WHERE user_id = \\$1").
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(agentRowColumns))
	mock.ExpectRollback()

	err := s.RunInTransaction(context.Background(), func(tx store.AgentStore) error {
		_, err := tx.GetAgentByUser(context.Background(), 9)
		return err
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRunInTransaction_Commit(t *testing.T) {
	db, mock := newMockDB(t)
	s := &AgentStore{db: db}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO agents").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := s.RunInTransaction(context.Background(), func(tx store.AgentStore) error {
		return tx.CreateAgent(context.Background(), &model.Agent{Name: "a", UserID: 1, State: model.StateAvailable, LastStateChange: time.Now()})
	})
	if err != nil {
		t.Fatalf("RunInTransaction: %v", err)
	}
}
