// Package validation provides input validation helpers.
//
// Two styles are supported: a collecting Validator for hand-written checks
// that must report every invalid field at once, and a struct-tag validator
// built on go-playground/validator for declarative rules.
package validation
