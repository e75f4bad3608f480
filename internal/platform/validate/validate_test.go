// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/readanddownload/internal/platform/apperr"
	"github.com/taibuivan/readanddownload/internal/platform/validate"
)

/*
TestValidator_Required tests the mandatory field validation logic.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name      string
		fields    []validate.Field
		failField string
	}{
		{"all_present", []validate.Field{validate.F("a", "x"), validate.F("b", "y")}, ""},
		{"first_empty", []validate.Field{validate.F("a", ""), validate.F("b", "")}, "a"},
		{"second_whitespace", []validate.Field{validate.F("a", "x"), validate.F("b", "   ")}, "b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required("Faltan datos obligatorios", tt.fields...)

			if tt.failField == "" {
				assert.False(t, v.HasErrors())
				assert.Nil(t, v.Err())
				return
			}

			require.True(t, v.HasErrors())
			ae := apperr.As(v.Err())
			require.NotNil(t, ae)
			assert.Equal(t, apperr.CodeValidation, ae.Code)
			assert.Equal(t, "Faltan datos obligatorios", ae.Message)
			require.Len(t, ae.Details, 1)
			assert.Equal(t, tt.failField, ae.Details[0].Field)
		})
	}
}

/*
TestValidator_LenBetween checks inclusive bounds counted in runes.
*/
func TestValidator_LenBetween(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		isValid bool
	}{
		{"too_short", "ab", false},
		{"lower_bound", "abc", true},
		{"multibyte_lower_bound", "ñçé", true},
		{"upper_bound", "abcde", true},
		{"too_long", "abcdef", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.LenBetween("title", tt.value, 3, 5, "bad length")
			assert.Equal(t, !tt.isValid, v.HasErrors())
		})
	}
}

/*
TestValidator_FirstFailureWins verifies that later rules never overwrite the first message.
*/
func TestValidator_FirstFailureWins(t *testing.T) {
	digits := regexp.MustCompile(`^\d+$`)

	v := &validate.Validator{}
	v.LenBetween("title", "ab", 3, 121, "title message").
		OneOf("language", "xx", []string{"en", "es"}, "language message").
		Matches("isbn", "abc", digits, "isbn message").
		Custom("other", true, "custom message")

	ae := apperr.As(v.Err())
	require.NotNil(t, ae)
	assert.Equal(t, "title message", ae.Message)
	require.Len(t, ae.Details, 1)
	assert.Equal(t, "title", ae.Details[0].Field)
}

func TestValidator_OneOf(t *testing.T) {
	allowed := []string{"PDF", "EPUB"}

	v := &validate.Validator{}
	v.OneOf("format", "EPUB", allowed, "bad format")
	assert.False(t, v.HasErrors())

	v = &validate.Validator{}
	v.OneOf("format", "pdf", allowed, "bad format")
	assert.True(t, v.HasErrors())
}

func TestValidator_Matches(t *testing.T) {
	pattern := regexp.MustCompile(`^(?:\d{9}X|\d{10}|\d{13})$`)

	v := &validate.Validator{}
	v.Matches("isbn", "9780451524935", pattern, "bad isbn")
	assert.False(t, v.HasErrors())

	v = &validate.Validator{}
	v.Matches("isbn", "978-0451524935", pattern, "bad isbn")
	assert.True(t, v.HasErrors())
}
