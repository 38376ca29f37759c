// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/hollyabrams/express-jobly/internal/database/postgres"
	"github.com/hollyabrams/express-jobly/internal/database/sqlutil"
	"github.com/hollyabrams/express-jobly/internal/testutil"
	"github.com/hollyabrams/express-jobly/jobs/models"
)

func TestBuildFindQuery(t *testing.T) {
	r := &postgresJobRepository{}

	query, args := r.buildFindQuery(models.JobFilter{})
	assert.Equal(t, "SELECT id, title, salary, equity, company_handle FROM jobs ORDER BY title, id", query)
	assert.Empty(t, args)
	assert.NotContains(t, query, "WHERE")

	query, args = r.buildFindQuery(models.JobFilter{Title: strPtr("eng"), HasEquity: true})
	assert.Equal(t, "SELECT id, title, salary, equity, company_handle FROM jobs WHERE title ILIKE $1 AND equity > 0 ORDER BY title, id", query)
	assert.Equal(t, []interface{}{"%eng%"}, args)
}

func TestUpdate_EmptyFailsBeforeQuery(t *testing.T) {
	// no client: the builder must reject the request before any database access
	r := &postgresJobRepository{}

	job, err := r.Update(context.Background(), 1, nil)
	require.Error(t, err)
	assert.Nil(t, job)
	assert.True(t, errors.Is(err, sqlutil.ErrInvalidInput))
}

func seedCompanies(t *testing.T, ctx context.Context, client *postgres.Client) {
	t.Helper()
	_, err := client.DB().ExecContext(ctx, `
		INSERT INTO companies (handle, name, num_employees, description, logo_url)
		VALUES ('c1', 'C1', 1, 'Desc1', 'http://c1.img'),
		       ('c2', 'C2', 2, 'Desc2', NULL)
	`)
	require.NoError(t, err)
}

func TestPostgresJobRepository_Integration(t *testing.T) {
	iso := testutil.NewIsolatedPostgres(t)
	ctx := context.Background()

	require.NoError(t, ApplyJobsMigration(ctx, iso.Client, iso.Schema))
	seedCompanies(t, ctx, iso.Client)

	repo := NewPostgresJobRepository(iso.Client)

	created := map[string]*models.Job{}
	for _, req := range []models.CreateJobRequest{
		{Title: "Engineer", Salary: intPtr(100000), Equity: strPtr("0.1"), CompanyHandle: "c1"},
		{Title: "Senior Engineer", Salary: intPtr(150000), Equity: strPtr("0"), CompanyHandle: "c1"},
		{Title: "Designer", Salary: intPtr(50000), Equity: nil, CompanyHandle: "c2"},
		{Title: "Intern", Salary: nil, Equity: nil, CompanyHandle: "c2"},
	} {
		req := req
		job, err := repo.Create(ctx, &req)
		require.NoError(t, err)
		require.NotZero(t, job.ID)
		created[job.Title] = job
	}

	t.Run("Create with unknown company is a foreign key violation", func(t *testing.T) {
		_, err := repo.Create(ctx, &models.CreateJobRequest{Title: "X", CompanyHandle: "nope"})
		require.Error(t, err)
		assert.True(t, postgres.IsForeignKeyViolation(err))
	})

	t.Run("FindAll without filter returns all ordered by title", func(t *testing.T) {
		jobs, err := repo.FindAll(ctx, models.JobFilter{})
		require.NoError(t, err)
		titles := make([]string, len(jobs))
		for i, j := range jobs {
			titles[i] = j.Title
		}
		assert.Equal(t, []string{"Designer", "Engineer", "Intern", "Senior Engineer"}, titles)
	})

	t.Run("FindAll by title is case-insensitive substring", func(t *testing.T) {
		jobs, err := repo.FindAll(ctx, models.JobFilter{Title: strPtr("ENG")})
		require.NoError(t, err)
		require.Len(t, jobs, 2)
		assert.Equal(t, "Engineer", jobs[0].Title)
		assert.Equal(t, "Senior Engineer", jobs[1].Title)
	})

	t.Run("FindAll by minSalary is inclusive", func(t *testing.T) {
		jobs, err := repo.FindAll(ctx, models.JobFilter{MinSalary: intPtr(100000)})
		require.NoError(t, err)
		require.Len(t, jobs, 2)
	})

	t.Run("FindAll hasEquity excludes zero and null equity", func(t *testing.T) {
		jobs, err := repo.FindAll(ctx, models.JobFilter{HasEquity: true})
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		assert.Equal(t, "Engineer", jobs[0].Title)
	})

	t.Run("FindAll combined filters", func(t *testing.T) {
		jobs, err := repo.FindAll(ctx, models.JobFilter{Title: strPtr("eng"), MinSalary: intPtr(120000), HasEquity: true})
		require.NoError(t, err)
		assert.Empty(t, jobs)
	})

	t.Run("FindByID embeds the company", func(t *testing.T) {
		detail, err := repo.FindByID(ctx, created["Engineer"].ID)
		require.NoError(t, err)
		assert.Equal(t, "Engineer", detail.Title)
		assert.Equal(t, "c1", detail.Company.Handle)
		assert.Equal(t, "C1", detail.Company.Name)
		require.NotNil(t, detail.Company.NumEmployees)
		assert.Equal(t, 1, *detail.Company.NumEmployees)
	})

	t.Run("FindByID not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, 0)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Update partial fields in request order", func(t *testing.T) {
		job, err := repo.Update(ctx, created["Designer"].ID, []sqlutil.Assignment{
			{Field: "salary", Value: int64(60000)},
			{Field: "title", Value: "Lead Designer"},
		})
		require.NoError(t, err)
		assert.Equal(t, "Lead Designer", job.Title)
		require.NotNil(t, job.Salary)
		assert.Equal(t, 60000, *job.Salary)
		assert.Equal(t, "c2", job.CompanyHandle)
	})

	t.Run("Update can set equity to null", func(t *testing.T) {
		job, err := repo.Update(ctx, created["Engineer"].ID, []sqlutil.Assignment{{Field: "equity", Value: nil}})
		require.NoError(t, err)
		assert.Nil(t, job.Equity)
	})

	t.Run("Update not found", func(t *testing.T) {
		_, err := repo.Update(ctx, 0, []sqlutil.Assignment{{Field: "title", Value: "x"}})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, created["Intern"].ID))
		assert.ErrorIs(t, repo.Delete(ctx, created["Intern"].ID), ErrNotFound)
	})
}
