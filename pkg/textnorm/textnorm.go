// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package textnorm cleans user-supplied text fields before they are
// validated and stored.
//
// # Transformation Pipeline
//
// 1. Normalizes to NFC so "é" typed as e + combining acute counts as one rune.
// 2. Collapses runs of whitespace into a single space.
// 3. Trims leading and trailing whitespace.
package textnorm

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Clean applies the full pipeline to s.
func Clean(s string) string {
	if s == "" {
		return s
	}

	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// Upper returns the cleaned, upper-cased form of s. Used for format codes.
func Upper(s string) string {
	return strings.ToUpper(Clean(s))
}

// Compact strips every whitespace rune from s. Used for identifiers such as
// ISBNs that clients sometimes paste with spaces.
func Compact(s string) string {
	return strings.Join(strings.Fields(s), "")
}
