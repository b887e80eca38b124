// Package validation evaluates the per-field rules of a form step and returns
// an ErrorMap keyed by field id. Rules run in a fixed order (required,
// minLength, maxLength, pattern) and the first failure short-circuits the
// rest for that field. Patterns that do not compile fail closed by default.
package validation
