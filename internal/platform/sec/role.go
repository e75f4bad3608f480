// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import "strings"

// # User Roles

// UserRole is the authorization level carried in the `rol` claim.
//
// Roles are issued by the users service, so the values follow its spelling.
type UserRole string

const (
	// RoleAdmin may list, update and delete every record.
	RoleAdmin UserRole = "Admin"

	// RoleUser may create records and read individual records and counts.
	RoleUser UserRole = "User"
)

// # Allow-lists

// In reports whether the role is one of allowed. Comparison ignores case
// because sibling services have historically emitted "admin" and "Admin".
func (r UserRole) In(allowed ...UserRole) bool {
	for _, candidate := range allowed {
		if strings.EqualFold(string(r), string(candidate)) {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer.
func (r UserRole) String() string {
	return string(r)
}
