// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package repository

import (
	"github.com/hollyabrams/express-jobly/internal/database/sqlutil"
	"github.com/hollyabrams/express-jobly/jobs/models"
)

// JobColumns maps request field names to columns of the jobs table.
var JobColumns = sqlutil.FieldNameMap{
	"companyHandle": "company_handle",
}

// BuildJobFilter composes the WHERE predicate for a job search.
// Conditions always appear in the order title, minSalary, hasEquity.
// The title is matched as a substring with ILIKE; % and _ in the input keep
// their pattern meaning.
func BuildJobFilter(filter models.JobFilter) sqlutil.Predicate {
	conds := sqlutil.NewConditions(0)

	if filter.Title != nil {
		conds.AddParam("title ILIKE $%d", "%"+*filter.Title+"%")
	}
	if filter.MinSalary != nil {
		conds.AddParam("salary >= $%d", *filter.MinSalary)
	}
	if filter.HasEquity {
		conds.AddLiteral("equity > 0")
	}

	return conds.Build()
}
