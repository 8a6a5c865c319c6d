package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"mimic/internal/services"
)

const jobColumns = "id, identity_id, identity_image, source_video, status, progress, output_path, error_message, created_at, updated_at"

// Enqueue validates the request and creates a pending job. Validation
// failures carry services.ErrInvalidInput and create no row.
func (s *Store) Enqueue(ctx context.Context, req NewJobRequest) (*Job, error) {
	if req.IdentityID == "" || req.IdentityImage == "" || req.SourceVideo == "" {
		return nil, services.Wrap(services.ErrInvalidInput, "", "enqueue", "identity, image, and video are required", nil)
	}
	if s.validator != nil {
		if err := s.validator.ValidateRequest(req); err != nil {
			if errors.Is(err, services.ErrInvalidInput) {
				return nil, err
			}
			return nil, services.Wrap(services.ErrInvalidInput, "", "enqueue", "", err)
		}
	}

	id := uuid.NewString()
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	if _, err := s.execWithRetry(
		ctx,
		`INSERT INTO jobs (
            id, identity_id, identity_image, source_video, status, progress, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		req.IdentityID,
		req.IdentityImage,
		req.SourceVideo,
		StatusPending,
		0,
		timestamp,
		timestamp,
	); err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}

	return s.GetByID(ctx, id)
}

// ClaimNextPending atomically selects the oldest pending job and transitions
// it to processing. Returns nil when the queue is empty. The claim is a
// compare-and-set on the pending status, so concurrent claimers never obtain
// the same job.
func (s *Store) ClaimNextPending(ctx context.Context) (*Job, error) {
	ctx = ensureContext(ctx)
	for {
		var id string
		err := s.db.QueryRowContext(ctx,
			`SELECT id FROM jobs WHERE status = ? ORDER BY created_at, id LIMIT 1`,
			StatusPending,
		).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("select next pending: %w", err)
		}

		res, err := s.execWithRetry(ctx,
			`UPDATE jobs SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
			StatusProcessing,
			time.Now().UTC().Format(time.RFC3339Nano),
			id,
			StatusPending,
		)
		if err != nil {
			return nil, fmt.Errorf("claim job: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("claim rows affected: %w", err)
		}
		if affected == 1 {
			return s.GetByID(ctx, id)
		}
		// Another claimer won the row between select and update; try again.
	}
}

// UpdateProgress persists a progress checkpoint. Progress never decreases;
// stale or out-of-order writes and writes against removed jobs are no-ops.
// Progress 100 is reserved for FinalizeSuccess so pollers never observe a
// finished percentage on a job that is still processing; checkpoint writes
// are capped at 99.
func (s *Store) UpdateProgress(ctx context.Context, id string, progress int) error {
	if progress < 0 {
		progress = 0
	}
	if progress > 99 {
		progress = 99
	}
	if _, err := s.execWithRetry(ctx,
		`UPDATE jobs SET progress = ?, updated_at = ? WHERE id = ? AND status = ? AND progress <= ?`,
		progress,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
		StatusProcessing,
		progress,
	); err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	return nil
}

// FinalizeSuccess transitions a processing job to completed, recording the
// output path and forcing progress to 100. Returns ErrNotProcessing when the
// job is missing or not in processing.
func (s *Store) FinalizeSuccess(ctx context.Context, id, outputPath string) error {
	if outputPath == "" {
		return errors.New("output path required")
	}
	res, err := s.execWithRetry(ctx,
		`UPDATE jobs SET status = ?, progress = 100, output_path = ?, error_message = NULL, updated_at = ?
         WHERE id = ? AND status = ?`,
		StatusCompleted,
		outputPath,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
		StatusProcessing,
	)
	if err != nil {
		return fmt.Errorf("finalize success: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finalize success rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("finalize success %s: %w", id, ErrNotProcessing)
	}
	return nil
}

// FinalizeFailure transitions a processing job to failed, recording the
// human-readable error detail. Returns ErrNotProcessing when the job is
// missing or not in processing.
func (s *Store) FinalizeFailure(ctx context.Context, id, errorDetail string) error {
	if errorDetail == "" {
		errorDetail = "failed without error detail"
	}
	res, err := s.execWithRetry(ctx,
		`UPDATE jobs SET status = ?, error_message = ?, output_path = NULL, updated_at = ?
         WHERE id = ? AND status = ?`,
		StatusFailed,
		errorDetail,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
		StatusProcessing,
	)
	if err != nil {
		return fmt.Errorf("finalize failure: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finalize failure rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("finalize failure %s: %w", id, ErrNotProcessing)
	}
	return nil
}

// GetByID fetches a job by identifier. Returns nil when absent.
func (s *Store) GetByID(ctx context.Context, id string) (*Job, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// List returns jobs filtered by status set (or all jobs when no status is
// provided), oldest first.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Job, error) {
	ctx = ensureContext(ctx)
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + jobColumns + ` FROM jobs`
	orderClause := ` ORDER BY created_at, id`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		rows, err = s.db.QueryContext(ctx, baseQuery+` WHERE status IN (`+placeholders+`)`+orderClause, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// Library returns completed jobs, newest first.
func (s *Store) Library(ctx context.Context) ([]*Job, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT `+jobColumns+` FROM jobs WHERE status = ? ORDER BY created_at DESC, id DESC`,
		StatusCompleted,
	)
	if err != nil {
		return nil, fmt.Errorf("list library: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// HealthSummary reports aggregate job counts per lifecycle state.
func (s *Store) HealthSummary(ctx context.Context) (HealthSummary, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT status, COUNT(1) FROM jobs GROUP BY status`)
	if err != nil {
		return HealthSummary{}, fmt.Errorf("queue summary: %w", err)
	}
	defer rows.Close()

	var summary HealthSummary
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return HealthSummary{}, err
		}
		summary.Total += count
		switch Status(status) {
		case StatusPending:
			summary.Pending = count
		case StatusProcessing:
			summary.Processing = count
		case StatusCompleted:
			summary.Completed = count
		case StatusFailed:
			summary.Failed = count
		}
	}
	return summary, rows.Err()
}

// ClearCompleted removes only completed jobs.
func (s *Store) ClearCompleted(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM jobs WHERE status = ?`, StatusCompleted)
	if err != nil {
		return 0, fmt.Errorf("clear completed: %w", err)
	}
	return res.RowsAffected()
}

// ClearFailed removes only failed jobs.
func (s *Store) ClearFailed(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM jobs WHERE status = ?`, StatusFailed)
	if err != nil {
		return 0, fmt.Errorf("clear failed: %w", err)
	}
	return res.RowsAffected()
}

// Clear removes all jobs.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM jobs`)
	if err != nil {
		return 0, fmt.Errorf("clear jobs: %w", err)
	}
	return res.RowsAffected()
}

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		id            string
		identityID    string
		identityImage string
		sourceVideo   string
		statusStr     string
		progress      int
		outputPath    sql.NullString
		errorMessage  sql.NullString
		createdRaw    string
		updatedRaw    string
	)

	if err := scanner.Scan(
		&id,
		&identityID,
		&identityImage,
		&sourceVideo,
		&statusStr,
		&progress,
		&outputPath,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	job := &Job{
		ID:            id,
		IdentityID:    identityID,
		IdentityImage: identityImage,
		SourceVideo:   sourceVideo,
		Status:        Status(statusStr),
		Progress:      progress,
		OutputPath:    outputPath.String,
		ErrorMessage:  errorMessage.String,
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		job.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		job.UpdatedAt = updated
	}
	return job, nil
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
