package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"
)

// DatabaseHealth describes the state of the evaluation database for doctor output.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	SchemaVersion    int
	TableExists      bool
	MissingColumns   []string
	IntegrityCheck   bool
	TotalEvaluations int
	Error            string
}

var requiredColumns = []string{
	"id", "company", "source", "status", "score", "recommendation", "risk_level",
	"error", "memo_json", "deal_note", "result_json", "created_at", "updated_at",
}

// CheckHealth returns diagnostic information about the evaluation database.
func (s *Store) CheckHealth(ctx context.Context) (DatabaseHealth, error) {
	health := DatabaseHealth{DBPath: s.path}

	if s.path == "" {
		return health, errors.New("evaluation database path is unknown")
	}

	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return health, nil
		}
		return health, fmt.Errorf("stat evaluation database: %w", err)
	}
	if info.IsDir() {
		return health, fmt.Errorf("evaluation database path %q is a directory", s.path)
	}
	health.DatabaseExists = true

	if s.db == nil {
		return health, errors.New("evaluation database connection unavailable")
	}

	connCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(connCtx); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("ping evaluation database: %w", err)
	}
	health.DatabaseReadable = true

	if health.SchemaVersion, err = s.userVersion(connCtx); err != nil {
		health.Error = err.Error()
		return health, err
	}

	columns, err := s.tableColumns(connCtx, "evaluations")
	if err != nil {
		health.Error = err.Error()
		return health, err
	}
	health.TableExists = len(columns) > 0
	for _, col := range requiredColumns {
		if !slices.Contains(columns, col) {
			health.MissingColumns = append(health.MissingColumns, col)
		}
	}

	var integrity string
	if err := s.db.QueryRowContext(connCtx, "PRAGMA integrity_check").Scan(&integrity); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("integrity check: %w", err)
	}
	health.IntegrityCheck = integrity == "ok"

	if health.TableExists {
		if err := s.db.QueryRowContext(connCtx, "SELECT COUNT(1) FROM evaluations").Scan(&health.TotalEvaluations); err != nil {
			health.Error = err.Error()
			return health, fmt.Errorf("count evaluations: %w", err)
		}
	}
	return health, nil
}

func (s *Store) tableColumns(ctx context.Context, table string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "PRAGMA table_info("+table+")")
	if err != nil {
		return nil, fmt.Errorf("table info: %w", err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var (
			cid        int
			name       string
			colType    string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &defaultVal, &pk); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		columns = append(columns, name)
	}
	return columns, rows.Err()
}
