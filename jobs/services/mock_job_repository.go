// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/hollyabrams/express-jobly/internal/database/sqlutil"
	"github.com/hollyabrams/express-jobly/jobs/models"
	"github.com/hollyabrams/express-jobly/jobs/repository"
)

var _ repository.JobRepository = (*MockJobRepository)(nil)

// MockJobRepository is a mock implementation of JobRepository for testing
type MockJobRepository struct {
	mock.Mock
}

// Create mocks the Create method
func (m *MockJobRepository) Create(ctx context.Context, req *models.CreateJobRequest) (*models.Job, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Job), args.Error(1)
}

// FindAll mocks the FindAll method
func (m *MockJobRepository) FindAll(ctx context.Context, filter models.JobFilter) ([]models.Job, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Job), args.Error(1)
}

// FindByID mocks the FindByID method
func (m *MockJobRepository) FindByID(ctx context.Context, id int) (*models.JobDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.JobDetail), args.Error(1)
}

// Update mocks the Update method
func (m *MockJobRepository) Update(ctx context.Context, id int, updates []sqlutil.Assignment) (*models.Job, error) {
	args := m.Called(ctx, id, updates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Job), args.Error(1)
}

// Delete mocks the Delete method
func (m *MockJobRepository) Delete(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
