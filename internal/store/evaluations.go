package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the persisted outcome of an evaluation.
type Status string

const (
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
	StatusNeedsReview Status = "needs_review"
)

// ParseStatus normalizes user input into a Status.
func ParseStatus(value string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(strings.ReplaceAll(value, "-", "_"))) {
	case string(StatusCompleted):
		return StatusCompleted, true
	case string(StatusFailed):
		return StatusFailed, true
	case string(StatusNeedsReview), "review":
		return StatusNeedsReview, true
	default:
		return "", false
	}
}

// ErrAmbiguousID is returned when an ID prefix matches several evaluations.
var ErrAmbiguousID = errors.New("ambiguous evaluation id")

// Evaluation is one persisted evaluation.
type Evaluation struct {
	ID             string    `json:"id"`
	Company        string    `json:"company"`
	Source         string    `json:"source"`
	Status         Status    `json:"status"`
	Score          float64   `json:"score"`
	Recommendation string    `json:"recommendation,omitempty"`
	RiskLevel      string    `json:"risk_level,omitempty"`
	Error          string    `json:"error,omitempty"`
	MemoJSON       string    `json:"memo_json,omitempty"`
	DealNote       string    `json:"deal_note,omitempty"`
	ResultJSON     string    `json:"result_json,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ListOptions filters List.
type ListOptions struct {
	Status Status
	Limit  int
}

const evaluationColumns = "id, company, source, status, score, recommendation, risk_level, error, memo_json, deal_note, result_json, created_at, updated_at"

// Save inserts or replaces ev. An empty ID is assigned a new UUID; the
// creation time of an existing row is preserved.
func (s *Store) Save(ctx context.Context, ev *Evaluation) error {
	if ev == nil {
		return errors.New("evaluation is nil")
	}
	if strings.TrimSpace(ev.ID) == "" {
		ev.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = now
	}
	ev.UpdatedAt = now
	if ev.Status == "" {
		ev.Status = StatusCompleted
	}

	_, err := s.exec(ctx,
		`INSERT INTO evaluations (`+evaluationColumns+`)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET
             company = excluded.company, source = excluded.source, status = excluded.status,
             score = excluded.score, recommendation = excluded.recommendation,
             risk_level = excluded.risk_level, error = excluded.error,
             memo_json = excluded.memo_json, deal_note = excluded.deal_note,
             result_json = excluded.result_json, updated_at = excluded.updated_at`,
		ev.ID,
		ev.Company,
		ev.Source,
		ev.Status,
		ev.Score,
		nullableString(ev.Recommendation),
		nullableString(ev.RiskLevel),
		nullableString(ev.Error),
		nullableString(ev.MemoJSON),
		nullableString(ev.DealNote),
		nullableString(ev.ResultJSON),
		ev.CreatedAt.Format(time.RFC3339Nano),
		ev.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save evaluation: %w", err)
	}
	return nil
}

// Get fetches an evaluation by ID. A missing row returns nil without error.
func (s *Store) Get(ctx context.Context, id string) (*Evaluation, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+evaluationColumns+` FROM evaluations WHERE id = ?`, id)
	ev, err := scanEvaluation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get evaluation: %w", err)
	}
	return ev, nil
}

// Resolve fetches an evaluation by full ID or unique ID prefix.
func (s *Store) Resolve(ctx context.Context, idOrPrefix string) (*Evaluation, error) {
	idOrPrefix = strings.TrimSpace(idOrPrefix)
	if idOrPrefix == "" {
		return nil, nil
	}
	if ev, err := s.Get(ctx, idOrPrefix); ev != nil || err != nil {
		return ev, err
	}

	escaped := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(idOrPrefix)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+evaluationColumns+` FROM evaluations WHERE id LIKE ? ESCAPE '\' LIMIT 2`, escaped+"%")
	if err != nil {
		return nil, fmt.Errorf("resolve evaluation: %w", err)
	}
	defer rows.Close()

	var matches []*Evaluation
	for rows.Next() {
		ev, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrAmbiguousID, idOrPrefix)
	}
}

// List returns evaluations newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]*Evaluation, error) {
	query := `SELECT ` + evaluationColumns + ` FROM evaluations`
	var args []any
	if opts.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, opts.Status)
	}
	query += ` ORDER BY created_at DESC, id`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	defer rows.Close()

	var out []*Evaluation
	for rows.Next() {
		ev, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// Delete removes an evaluation and reports whether a row existed.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.exec(ctx, `DELETE FROM evaluations WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete evaluation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Stats counts evaluations by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM evaluations GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("evaluation stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

func scanEvaluation(scanner interface{ Scan(dest ...any) error }) (*Evaluation, error) {
	var (
		ev             Evaluation
		status         string
		score          sql.NullFloat64
		recommendation sql.NullString
		riskLevel      sql.NullString
		errorText      sql.NullString
		memoJSON       sql.NullString
		dealNote       sql.NullString
		resultJSON     sql.NullString
		createdRaw     string
		updatedRaw     string
	)
	if err := scanner.Scan(
		&ev.ID,
		&ev.Company,
		&ev.Source,
		&status,
		&score,
		&recommendation,
		&riskLevel,
		&errorText,
		&memoJSON,
		&dealNote,
		&resultJSON,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}
	ev.Status = Status(status)
	ev.Score = score.Float64
	ev.Recommendation = recommendation.String
	ev.RiskLevel = riskLevel.String
	ev.Error = errorText.String
	ev.MemoJSON = memoJSON.String
	ev.DealNote = dealNote.String
	ev.ResultJSON = resultJSON.String

	var err error
	if ev.CreatedAt, err = parseTimeString(createdRaw); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if ev.UpdatedAt, err = parseTimeString(updatedRaw); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &ev, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, value)
}
