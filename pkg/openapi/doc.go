// Package openapi describes form submissions with kin-openapi. A document
// becomes an object schema keyed by field id, and a shared form becomes an
// OpenAPI 3 document with a single submit operation. ValidateSubmission checks
// a payload against that schema, which lets callers that only understand
// OpenAPI accept submissions for a form.
package openapi
