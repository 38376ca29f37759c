// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/hollyabrams/express-jobly/internal/database/postgres"
	"github.com/hollyabrams/express-jobly/internal/database/sqlutil"
	"github.com/hollyabrams/express-jobly/internal/pkg/log"
	"github.com/hollyabrams/express-jobly/jobs/models"
)

const jobColumns = `id, title, salary, equity, company_handle`

// postgresJobRepository implements JobRepository using raw SQL queries
type postgresJobRepository struct {
	client *postgres.Client
}

// NewPostgresJobRepository creates a new PostgreSQL repository for jobs
func NewPostgresJobRepository(client *postgres.Client) JobRepository {
	return &postgresJobRepository{client: client}
}

// Create inserts a new job
func (r *postgresJobRepository) Create(ctx context.Context, req *models.CreateJobRequest) (*models.Job, error) {
	query := `
		INSERT INTO jobs (title, salary, equity, company_handle)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + jobColumns

	var job models.Job
	err := sqlx.GetContext(ctx, r.client.DB(), &job, query, req.Title, req.Salary, req.Equity, req.CompanyHandle)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	return &job, nil
}

// FindAll returns jobs matching the filter ordered by title
func (r *postgresJobRepository) FindAll(ctx context.Context, filter models.JobFilter) ([]models.Job, error) {
	query, args := r.buildFindQuery(filter)
	log.Debug("jobs.FindAll query: %s", query)
	log.DebugStruct(args)

	jobs := []models.Job{}
	if err := sqlx.SelectContext(ctx, r.client.DB(), &jobs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to find jobs: %w", err)
	}

	return jobs, nil
}

// buildFindQuery embeds the filter predicate, leaving out WHERE when it is empty
func (r *postgresJobRepository) buildFindQuery(filter models.JobFilter) (string, []interface{}) {
	predicate := BuildJobFilter(filter)
	query := `SELECT ` + jobColumns + ` FROM jobs` + predicate.Where() + ` ORDER BY title, id`
	return query, predicate.Args
}

type jobDetailRow struct {
	models.Job
	CompanyName         string  `db:"company_name"`
	CompanyDescription  *string `db:"company_description"`
	CompanyNumEmployees *int    `db:"company_num_employees"`
	CompanyLogoURL      *string `db:"company_logo_url"`
}

// FindByID retrieves a job and its company
func (r *postgresJobRepository) FindByID(ctx context.Context, id int) (*models.JobDetail, error) {
	query := `
		SELECT
			j.id, j.title, j.salary, j.equity, j.company_handle,
			c.name AS company_name,
			c.description AS company_description,
			c.num_employees AS company_num_employees,
			c.logo_url AS company_logo_url
		FROM jobs j
		JOIN companies c ON c.handle = j.company_handle
		WHERE j.id = $1
	`

	var row jobDetailRow
	err := sqlx.GetContext(ctx, r.client.DB(), &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find job: %w", err)
	}

	return &models.JobDetail{
		ID:            row.ID,
		Title:         row.Title,
		Salary:        row.Salary,
		Equity:        row.Equity,
		CompanyHandle: row.CompanyHandle,
		Company: models.Company{
			Handle:       row.CompanyHandle,
			Name:         row.CompanyName,
			Description:  row.CompanyDescription,
			NumEmployees: row.CompanyNumEmployees,
			LogoURL:      row.CompanyLogoURL,
		},
	}, nil
}

// Update applies a partial update built from the ordered assignments
func (r *postgresJobRepository) Update(ctx context.Context, id int, updates []sqlutil.Assignment) (*models.Job, error) {
	set, err := sqlutil.ForPartialUpdate(updates, JobColumns)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`UPDATE jobs SET %s WHERE id = $%d RETURNING %s`, set.SQL, set.NextIndex(), jobColumns)
	args := append(set.Args, id)
	log.Debug("jobs.Update query: %s", query)

	var job models.Job
	err = sqlx.GetContext(ctx, r.client.DB(), &job, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to update job: %w", err)
	}

	return &job, nil
}

// Delete removes a job
func (r *postgresJobRepository) Delete(ctx context.Context, id int) error {
	result, err := r.client.DB().ExecContext(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}

	return nil
}
