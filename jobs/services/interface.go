// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package services

import (
	"context"

	"github.com/hollyabrams/express-jobly/internal/database/sqlutil"
	"github.com/hollyabrams/express-jobly/jobs/models"
)

// JobService defines the business operations on jobs
type JobService interface {
	CreateJob(ctx context.Context, req *models.CreateJobRequest) (*models.Job, error)
	SearchJobs(ctx context.Context, filter models.JobFilter) ([]models.Job, error)
	GetJob(ctx context.Context, id int) (*models.JobDetail, error)
	UpdateJob(ctx context.Context, id int, updates []sqlutil.Assignment) (*models.Job, error)
	DeleteJob(ctx context.Context, id int) error
}
