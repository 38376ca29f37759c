// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package validation

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	jobErrors "github.com/hollyabrams/express-jobly/jobs/errors"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const schemaBaseURL = "mem://jobs/"

// Schema names
const (
	SchemaJobNew    = "jobNew.json"
	SchemaJobUpdate = "jobUpdate.json"
	SchemaJobSearch = "jobSearch.json"
)

// ValidationError lists every schema violation of a document.
type ValidationError struct {
	Schema  string
	Details []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Schema, strings.Join(e.Details, "; "))
}

func (e *ValidationError) Unwrap() error {
	return jobErrors.ErrValidationFailed
}

// Validator checks job documents against the compiled JSON schemas.
// It is safe for concurrent use.
type Validator struct {
	schemas map[string]*jsonschema.Schema
}

// NewValidator compiles the embedded job schemas.
func NewValidator() (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7

	names := []string{SchemaJobNew, SchemaJobUpdate, SchemaJobSearch}
	for _, name := range names {
		data, err := schemaFS.ReadFile("schemas/" + name)
		if err != nil {
			return nil, fmt.Errorf("failed to read schema %s: %w", name, err)
		}
		if err := compiler.AddResource(schemaBaseURL+name, bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("failed to add schema %s: %w", name, err)
		}
	}

	v := &Validator{schemas: make(map[string]*jsonschema.Schema, len(names))}
	for _, name := range names {
		schema, err := compiler.Compile(schemaBaseURL + name)
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
		}
		v.schemas[name] = schema
	}
	return v, nil
}

// MustNewValidator is NewValidator that panics on error.
func MustNewValidator() *Validator {
	v, err := NewValidator()
	if err != nil {
		panic(err)
	}
	return v
}

// ValidateNewJob validates a POST /jobs body.
func (v *Validator) ValidateNewJob(doc interface{}) error {
	return v.validate(SchemaJobNew, doc)
}

// ValidateJobUpdate validates a PATCH /jobs/:id body.
func (v *Validator) ValidateJobUpdate(doc interface{}) error {
	return v.validate(SchemaJobUpdate, doc)
}

// ValidateJobSearch validates the converted GET /jobs query.
func (v *Validator) ValidateJobSearch(doc interface{}) error {
	return v.validate(SchemaJobSearch, doc)
}

func (v *Validator) validate(name string, doc interface{}) error {
	schema, ok := v.schemas[name]
	if !ok {
		return fmt.Errorf("unknown schema %s", name)
	}

	err := schema.Validate(doc)
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return fmt.Errorf("%w: %v", jobErrors.ErrValidationFailed, err)
	}

	var details []string
	collectDetails(ve, &details)
	sort.Strings(details)
	return &ValidationError{Schema: name, Details: details}
}

// collectDetails flattens the leaf causes of a validation error.
func collectDetails(ve *jsonschema.ValidationError, out *[]string) {
	if len(ve.Causes) == 0 {
		location := ve.InstanceLocation
		if location == "" {
			location = "/"
		}
		*out = append(*out, fmt.Sprintf("%s: %s", location, ve.Message))
		return
	}
	for _, cause := range ve.Causes {
		collectDetails(cause, out)
	}
}
