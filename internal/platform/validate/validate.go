// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package validate provides a chainable Validator that stops at the first
// failing rule and reports it as a single [apperr.AppError].
//
// # Architecture
//
// Validators are built in the service layer, never in handlers or storage.
// Each rule carries its own client-facing message; the message of the first
// failure becomes the response message.
package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/taibuivan/readanddownload/internal/platform/apperr"
)

var (
	// ErrInvalidJSON is returned when the request body cannot be decoded.
	ErrInvalidJSON = apperr.ValidationError("El cuerpo de la solicitud no es un JSON válido")
)

// Validator collects the first field-level validation error via a fluent,
// chainable API. Once a rule fails, every later rule is skipped.
//
// # Concurrency
//
// Validator is not safe for concurrent use. A new instance must be created
// for every request/operation.
type Validator struct {
	failure *apperr.FieldError
}

// Required fails if any of the trimmed values is empty. It reports the first
// empty field but uses one shared message.
func (v *Validator) Required(message string, fields ...Field) *Validator {
	if v.failure != nil {
		return v
	}
	for _, f := range fields {
		if strings.TrimSpace(f.Value) == "" {
			v.fail(f.Name, message)
			return v
		}
	}
	return v
}

// LenBetween fails if the Unicode character count is outside [min, max].
func (v *Validator) LenBetween(field, value string, min, max int, message string) *Validator {
	if v.failure != nil {
		return v
	}
	if count := utf8.RuneCountInString(value); count < min || count > max {
		v.fail(field, message)
	}
	return v
}

// Matches fails if the value does not match pattern.
func (v *Validator) Matches(field, value string, pattern *regexp.Regexp, message string) *Validator {
	if v.failure != nil {
		return v
	}
	if !pattern.MatchString(value) {
		v.fail(field, message)
	}
	return v
}

// OneOf fails if the value is not in the allowed set of strings.
func (v *Validator) OneOf(field, value string, allowed []string, message string) *Validator {
	if v.failure != nil {
		return v
	}
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.fail(field, message)
	return v
}

// Custom fails with message if the condition is true.
//
// # Example
//
//	v.Custom("isbn", !checksumOK, "El ISBN no supera la verificación")
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	if v.failure != nil {
		return v
	}
	if failed {
		v.fail(field, message)
	}
	return v
}

// Err returns a VALIDATION_ERROR [apperr.AppError] describing the first
// failed rule, or nil if all rules passed.
//
// This is the only output method. Call it at the end of the chain.
func (v *Validator) Err() error {
	if v.failure == nil {
		return nil
	}
	return apperr.ValidationError(v.failure.Message, *v.failure)
}

// HasErrors reports whether any validation rule has failed so far.
func (v *Validator) HasErrors() bool {
	return v.failure != nil
}

func (v *Validator) fail(field, message string) {
	v.failure = &apperr.FieldError{Field: field, Message: message}
}

// Field pairs a JSON field name with its value for [Validator.Required].
type Field struct {
	Name  string
	Value string
}

// F is shorthand for constructing a [Field].
func F(name, value string) Field {
	return Field{Name: name, Value: value}
}
