// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/schema"

	"github.com/hollyabrams/express-jobly/internal/database/sqlutil"
	"github.com/hollyabrams/express-jobly/internal/pkg/log"
	"github.com/hollyabrams/express-jobly/internal/pkg/parser"
	jobErrors "github.com/hollyabrams/express-jobly/jobs/errors"
	"github.com/hollyabrams/express-jobly/jobs/models"
	"github.com/hollyabrams/express-jobly/jobs/services"
	"github.com/hollyabrams/express-jobly/jobs/validation"
)

// JobHandler handles all job-related HTTP requests
type JobHandler struct {
	jobService   services.JobService
	validator    *validation.Validator
	queryDecoder *schema.Decoder
}

// NewJobHandler creates a new JobHandler with injected dependencies
func NewJobHandler(jobService services.JobService, validator *validation.Validator) *JobHandler {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(false)

	return &JobHandler{
		jobService:   jobService,
		validator:    validator,
		queryDecoder: decoder,
	}
}

// CreateJob handles POST /jobs
func (h *JobHandler) CreateJob(c *fiber.Ctx) error {
	body := c.Body()

	obj, err := parser.DecodeObject(body)
	if err != nil {
		return jobErrors.HandleInvalidRequestError(c, "Invalid request body")
	}
	if err := h.validator.ValidateNewJob(obj.Map()); err != nil {
		return h.handleValidation(c, err)
	}

	var req models.CreateJobRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return jobErrors.HandleInvalidRequestError(c, "Invalid request body")
	}

	job, err := h.jobService.CreateJob(c.UserContext(), &req)
	if err != nil {
		return jobErrors.HandleServiceError(c, err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{"job": job})
}

// SearchJobs handles GET /jobs with optional title, minSalary and hasEquity filters
func (h *JobHandler) SearchJobs(c *fiber.Ctx) error {
	values := url.Values{}
	c.Context().QueryArgs().VisitAll(func(key, value []byte) {
		values.Add(string(key), string(value))
	})

	var query models.JobSearchQuery
	if err := h.queryDecoder.Decode(&query, values); err != nil {
		return jobErrors.HandleInvalidRequestError(c, "Invalid query: "+err.Error())
	}

	filter, doc, details := convertSearchQuery(query)
	if len(details) > 0 {
		return jobErrors.HandleValidationError(c, details)
	}
	if err := h.validator.ValidateJobSearch(doc); err != nil {
		return h.handleValidation(c, err)
	}

	jobs, err := h.jobService.SearchJobs(c.UserContext(), filter)
	if err != nil {
		return jobErrors.HandleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"jobs": jobs})
}

// GetJob handles GET /jobs/:id
func (h *JobHandler) GetJob(c *fiber.Ctx) error {
	id, ok := jobID(c)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"code": "NOT_FOUND", "message": "Not Found"})
	}

	job, err := h.jobService.GetJob(c.UserContext(), id)
	if err != nil {
		return jobErrors.HandleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"job": job})
}

// UpdateJob handles PATCH /jobs/:id. Fields are applied in request order.
func (h *JobHandler) UpdateJob(c *fiber.Ctx) error {
	id, ok := jobID(c)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"code": "NOT_FOUND", "message": "Not Found"})
	}

	obj, err := parser.DecodeObject(c.Body())
	if err != nil {
		return jobErrors.HandleInvalidRequestError(c, "Invalid request body")
	}
	if err := h.validator.ValidateJobUpdate(obj.Map()); err != nil {
		return h.handleValidation(c, err)
	}

	updates := make([]sqlutil.Assignment, 0, len(obj))
	for _, member := range obj {
		updates = append(updates, sqlutil.Assignment{
			Field: member.Key,
			Value: parser.Normalize(member.Value),
		})
	}

	job, err := h.jobService.UpdateJob(c.UserContext(), id, updates)
	if err != nil {
		return jobErrors.HandleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"job": job})
}

// DeleteJob handles DELETE /jobs/:id
func (h *JobHandler) DeleteJob(c *fiber.Ctx) error {
	id, ok := jobID(c)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"code": "NOT_FOUND", "message": "Not Found"})
	}

	if err := h.jobService.DeleteJob(c.UserContext(), id); err != nil {
		return jobErrors.HandleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"deleted": c.Params("id")})
}

func (h *JobHandler) handleValidation(c *fiber.Ctx, err error) error {
	var verr *validation.ValidationError
	if errors.As(err, &verr) {
		return jobErrors.HandleValidationError(c, verr.Details)
	}
	log.ErrorWithContext(c.UserContext(), "schema validation failed unexpectedly: %v", err)
	return jobErrors.HandleValidationError(c, []string{err.Error()})
}

// jobID parses the :id route parameter. constraints.RequireInt normally rejects
// non-integers before the handler runs.
func jobID(c *fiber.Ctx) (int, bool) {
	id, err := strconv.Atoi(c.Params("id"))
	return id, err == nil
}

// convertSearchQuery turns the raw query strings into a typed filter and the
// document validated against the search schema. minSalary must parse as an
// integer; hasEquity is true only for the literal "true".
func convertSearchQuery(query models.JobSearchQuery) (models.JobFilter, map[string]interface{}, []string) {
	var filter models.JobFilter
	doc := map[string]interface{}{}

	if query.Title != nil {
		title := *query.Title
		filter.Title = &title
		doc["title"] = title
	}

	if query.MinSalary != nil {
		minSalary, err := strconv.Atoi(*query.MinSalary)
		if err != nil {
			return filter, doc, []string{"/minSalary: expected integer, but got " + strconv.Quote(*query.MinSalary)}
		}
		filter.MinSalary = &minSalary
		doc["minSalary"] = json.Number(strconv.Itoa(minSalary))
	}

	filter.HasEquity = query.HasEquity != nil && *query.HasEquity == "true"
	doc["hasEquity"] = filter.HasEquity

	return filter, doc, nil
}
