package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Fazalwahab12/shift-backend-sub001/internal/hiring"
)

// JobDirectory reads the marketplace jobs table. The engine only consults
// it; job CRUD lives in the surrounding backend.
type JobDirectory struct {
	pool *pgxpool.Pool
}

// NewJobDirectory returns a directory backed by the given pool.
func NewJobDirectory(pool *pgxpool.Pool) *JobDirectory {
	return &JobDirectory{pool: pool}
}

// FindJob returns the job's publication status and company identity.
func (d *JobDirectory) FindJob(ctx context.Context, jobID string) (*hiring.Job, error) {
	j, err := withRetry(ctx, func(ctx context.Context) (*hiring.Job, error) {
		var j hiring.Job
		var status string
		err := d.pool.QueryRow(ctx,
			`SELECT id, company_id, title, company_name, status
			 FROM jobs WHERE id = $1`, jobID,
		).Scan(&j.ID, &j.CompanyID, &j.Title, &j.CompanyName, &status)
		if err != nil {
			return nil, err
		}
		j.Status = hiring.JobStatus(status)
		return &j, nil
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, hiring.NewError(hiring.CodeNotFound, "job not found", map[string]string{"jobId": jobID})
		}
		return nil, fmt.Errorf("find job: %w", err)
	}
	return j, nil
}
