// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/hollyabrams/express-jobly/internal/cache"
	"github.com/hollyabrams/express-jobly/internal/database/postgres"
	"github.com/hollyabrams/express-jobly/internal/database/sqlutil"
	"github.com/hollyabrams/express-jobly/internal/pkg/log"
	jobErrors "github.com/hollyabrams/express-jobly/jobs/errors"
	"github.com/hollyabrams/express-jobly/jobs/models"
	"github.com/hollyabrams/express-jobly/jobs/repository"
)

// jobService implements the JobService interface
type jobService struct {
	repo         repository.JobRepository
	cacheService *cache.GenericCacheService

	// cacheMu orders cache fills against invalidations. generation counts
	// invalidations; a read that saw a different generation must not fill.
	cacheMu    sync.Mutex
	generation uint64
}

// NewJobService creates a job service. cacheService may be nil.
func NewJobService(repo repository.JobRepository, cacheService *cache.GenericCacheService) JobService {
	return &jobService{
		repo:         repo,
		cacheService: cacheService,
	}
}

const jobCacheKeyPrefix = "jobs:"

func jobCacheKey(id int) string {
	return jobCacheKeyPrefix + strconv.Itoa(id)
}

// PurgeJobCache drops every cached job. A nil or disabled cache is a no-op.
func PurgeJobCache(ctx context.Context, cacheService *cache.GenericCacheService) error {
	return cacheService.InvalidatePattern(ctx, jobCacheKeyPrefix+"*")
}

func (s *jobService) CreateJob(ctx context.Context, req *models.CreateJobRequest) (*models.Job, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: missing job", jobErrors.ErrInvalidJobData)
	}

	job, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	log.InfoWithContext(ctx, "Created job %d for company %s", job.ID, job.CompanyHandle)
	return job, nil
}

func (s *jobService) SearchJobs(ctx context.Context, filter models.JobFilter) ([]models.Job, error) {
	jobs, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	if jobs == nil {
		jobs = []models.Job{}
	}
	return jobs, nil
}

// GetJob reads through the job cache. Cache failures only fall back to the database.
func (s *jobService) GetJob(ctx context.Context, id int) (*models.JobDetail, error) {
	key := jobCacheKey(id)

	if !s.cacheService.IsEnabled() {
		job, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, mapRepositoryError(err)
		}
		return job, nil
	}

	var cached models.JobDetail
	if err := s.cacheService.GetCached(ctx, key, &cached); err == nil {
		return &cached, nil
	}

	s.cacheMu.Lock()
	seen := s.generation
	s.cacheMu.Unlock()

	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if s.generation != seen {
		log.Debug("Skipping cache fill for job %d: invalidated during read", id)
		return job, nil
	}
	if err := s.cacheService.CacheData(ctx, key, job); err != nil {
		log.WarnWithContext(ctx, "Failed to cache job %d: %v", id, err)
	}

	return job, nil
}

func (s *jobService) UpdateJob(ctx context.Context, id int, updates []sqlutil.Assignment) (*models.Job, error) {
	job, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	s.invalidateJob(ctx, id)
	return job, nil
}

func (s *jobService) DeleteJob(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepositoryError(err)
	}

	s.invalidateJob(ctx, id)
	log.InfoWithContext(ctx, "Deleted job %d", id)
	return nil
}

func (s *jobService) invalidateJob(ctx context.Context, id int) {
	if !s.cacheService.IsEnabled() {
		return
	}

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.generation++
	if err := s.cacheService.InvalidateKey(ctx, jobCacheKey(id)); err != nil {
		log.WarnWithContext(ctx, "Failed to invalidate cached job %d: %v", id, err)
	}
}

// mapRepositoryError translates repository and driver errors into job errors
func mapRepositoryError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %v", jobErrors.ErrJobNotFound, err)
	case postgres.IsForeignKeyViolation(err):
		return fmt.Errorf("%w: %v", jobErrors.ErrInvalidCompany, err)
	case postgres.IsCheckViolation(err), postgres.IsNumericOutOfRange(err):
		return fmt.Errorf("%w: %v", jobErrors.ErrInvalidJobData, err)
	case errors.Is(err, sqlutil.ErrInvalidInput):
		return err
	default:
		log.Error("job repository error: %v", err)
		return fmt.Errorf("%w: %v", jobErrors.ErrDatabaseOperation, err)
	}
}
