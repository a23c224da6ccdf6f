package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Open opens a DB and ensures schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:revisehub.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
		// foreign_keys is a per-connection setting; a DSN pragma is the
		// only way to apply it to every pooled connection.
		if !strings.Contains(dsn, "_pragma=foreign_keys") {
			sep := "?"
			if strings.Contains(dsn, "?") {
				sep = "&"
			}
			dsn += sep + "_pragma=foreign_keys(1)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/revisehub?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := ensureSchema(ctx, db, driver); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Rows are stamped with exactly one of user_id / session_id. The UNIQUE
// constraint on run_answers enforces one answer per (run_id, question_id).
// Replacing a run's question batch deletes the batch and, through the
// cascade, any answers that referenced it.

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS revisions (
  id TEXT PRIMARY KEY,
  user_id TEXT,
  session_id TEXT,
  name TEXT NOT NULL,
  subject TEXT NOT NULL,
  topics_json TEXT NOT NULL DEFAULT '[]',
  description TEXT NOT NULL DEFAULT '',
  desired_question_count INTEGER NOT NULL,
  accuracy_threshold INTEGER NOT NULL,
  question_style TEXT NOT NULL DEFAULT 'free-text',
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS revision_runs (
  id TEXT PRIMARY KEY,
  revision_id TEXT NOT NULL REFERENCES revisions(id) ON DELETE CASCADE,
  user_id TEXT,
  session_id TEXT,
  status TEXT NOT NULL DEFAULT 'running',
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS run_questions (
  id TEXT PRIMARY KEY,
  run_id TEXT NOT NULL REFERENCES revision_runs(id) ON DELETE CASCADE,
  question_text TEXT NOT NULL,
  question_index INTEGER NOT NULL,
  question_style TEXT NOT NULL DEFAULT 'free-text',
  options_json TEXT,
  correct_answer_index INTEGER,
  rationale TEXT
);

CREATE TABLE IF NOT EXISTS run_answers (
  id TEXT PRIMARY KEY,
  run_id TEXT NOT NULL REFERENCES revision_runs(id) ON DELETE CASCADE,
  question_id TEXT NOT NULL REFERENCES run_questions(id) ON DELETE CASCADE,
  student_answer TEXT NOT NULL,
  score TEXT NOT NULL,
  is_correct INTEGER NOT NULL DEFAULT 0,
  correct_answer TEXT NOT NULL DEFAULT '',
  explanation TEXT,
  error TEXT,
  created_at INTEGER NOT NULL,
  UNIQUE (run_id, question_id)
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS revisions (
  id TEXT PRIMARY KEY,
  user_id TEXT,
  session_id TEXT,
  name TEXT NOT NULL,
  subject TEXT NOT NULL,
  topics_json TEXT NOT NULL DEFAULT '[]',
  description TEXT NOT NULL DEFAULT '',
  desired_question_count INTEGER NOT NULL,
  accuracy_threshold INTEGER NOT NULL,
  question_style TEXT NOT NULL DEFAULT 'free-text',
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS revision_runs (
  id TEXT PRIMARY KEY,
  revision_id TEXT NOT NULL REFERENCES revisions(id) ON DELETE CASCADE,
  user_id TEXT,
  session_id TEXT,
  status TEXT NOT NULL DEFAULT 'running',
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS run_questions (
  id TEXT PRIMARY KEY,
  run_id TEXT NOT NULL REFERENCES revision_runs(id) ON DELETE CASCADE,
  question_text TEXT NOT NULL,
  question_index INTEGER NOT NULL,
  question_style TEXT NOT NULL DEFAULT 'free-text',
  options_json TEXT,
  correct_answer_index INTEGER,
  rationale TEXT
);

CREATE TABLE IF NOT EXISTS run_answers (
  id TEXT PRIMARY KEY,
  run_id TEXT NOT NULL REFERENCES revision_runs(id) ON DELETE CASCADE,
  question_id TEXT NOT NULL REFERENCES run_questions(id) ON DELETE CASCADE,
  student_answer TEXT NOT NULL,
  score TEXT NOT NULL,
  is_correct BOOLEAN NOT NULL DEFAULT FALSE,
  correct_answer TEXT NOT NULL DEFAULT '',
  explanation TEXT,
  error TEXT,
  created_at BIGINT NOT NULL,
  UNIQUE (run_id, question_id)
);
`
