// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package repository

import (
	"context"
	"errors"

	"github.com/hollyabrams/express-jobly/internal/database/sqlutil"
	"github.com/hollyabrams/express-jobly/jobs/models"
)

// ErrNotFound is returned when no job matches the given id.
var ErrNotFound = errors.New("job not found")

// JobRepository defines the database operations for jobs.
type JobRepository interface {
	// Create inserts a job and returns the stored row.
	Create(ctx context.Context, req *models.CreateJobRequest) (*models.Job, error)

	// FindAll returns jobs matching the filter, ordered by title.
	// An empty filter returns every job.
	FindAll(ctx context.Context, filter models.JobFilter) ([]models.Job, error)

	// FindByID returns a job with its company.
	FindByID(ctx context.Context, id int) (*models.JobDetail, error)

	// Update applies a partial update and returns the updated row.
	// An empty update fails with sqlutil.ErrInvalidInput before touching the database.
	Update(ctx context.Context, id int, updates []sqlutil.Assignment) (*models.Job, error)

	// Delete removes a job.
	Delete(ctx context.Context, id int) error
}
