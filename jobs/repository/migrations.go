// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package repository

import (
	"context"
	"fmt"

	"github.com/hollyabrams/express-jobly/internal/database/postgres"
)

const jobsMigrationSQL = `
	CREATE TABLE IF NOT EXISTS companies (
		handle VARCHAR(25) PRIMARY KEY CHECK (handle = lower(handle)),
		name TEXT UNIQUE NOT NULL,
		num_employees INTEGER CHECK (num_employees >= 0),
		description TEXT NOT NULL,
		logo_url TEXT
	);

	CREATE TABLE IF NOT EXISTS jobs (
		id SERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		salary INTEGER CHECK (salary >= 0),
		equity NUMERIC CHECK (equity <= 1.0),
		company_handle VARCHAR(25) NOT NULL
			REFERENCES companies ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_jobs_company_handle ON jobs(company_handle);
	CREATE INDEX IF NOT EXISTS idx_jobs_title ON jobs(title);
`

// ApplyJobsMigration creates the companies and jobs tables if they are missing.
// When schema is set the schema is created first and used for the migration.
func ApplyJobsMigration(ctx context.Context, client *postgres.Client, schema string) error {
	tx, err := client.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration: %w", err)
	}
	defer tx.Rollback()

	if schema != "" {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, schema)); err != nil {
			return fmt.Errorf("failed to create schema %s: %w", schema, err)
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`SET LOCAL search_path TO %s`, schema)); err != nil {
			return fmt.Errorf("failed to set search_path: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, jobsMigrationSQL); err != nil {
		return fmt.Errorf("failed to apply jobs migration: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit jobs migration: %w", err)
	}
	return nil
}
