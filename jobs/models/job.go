// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package models

// Job is a job posting owned by a company.
// Equity is a NUMERIC column and is carried as text to keep its precision.
type Job struct {
	ID            int     `db:"id" json:"id"`
	Title         string  `db:"title" json:"title"`
	Salary        *int    `db:"salary" json:"salary"`
	Equity        *string `db:"equity" json:"equity"`
	CompanyHandle string  `db:"company_handle" json:"companyHandle"`
}

// Company is the summary of the company embedded in a job detail.
type Company struct {
	Handle       string  `db:"handle" json:"handle"`
	Name         string  `db:"name" json:"name"`
	Description  *string `db:"description" json:"description"`
	NumEmployees *int    `db:"num_employees" json:"numEmployees"`
	LogoURL      *string `db:"logo_url" json:"logoUrl"`
}

// JobDetail is a job together with its company, returned by GET /jobs/:id.
type JobDetail struct {
	ID            int     `json:"id"`
	Title         string  `json:"title"`
	Salary        *int    `json:"salary"`
	Equity        *string `json:"equity"`
	CompanyHandle string  `json:"companyHandle"`
	Company       Company `json:"company"`
}

// CreateJobRequest is the body of POST /jobs.
type CreateJobRequest struct {
	Title         string  `json:"title"`
	Salary        *int    `json:"salary"`
	Equity        *string `json:"equity"`
	CompanyHandle string  `json:"companyHandle"`
}

// JobSearchQuery carries the raw query string of GET /jobs.
type JobSearchQuery struct {
	Title     *string `schema:"title"`
	MinSalary *string `schema:"minSalary"`
	HasEquity *string `schema:"hasEquity"`
}

// JobFilter is the typed search criteria. A nil field or a false HasEquity
// adds no constraint.
type JobFilter struct {
	Title     *string
	MinSalary *int
	HasEquity bool
}

// IsEmpty reports whether the filter constrains nothing.
func (f JobFilter) IsEmpty() bool {
	return f.Title == nil && f.MinSalary == nil && !f.HasEquity
}
