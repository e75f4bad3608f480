// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package record

import "context"

// Repository persists the records of one [Kind].
//
// Implementations return [dberr.ErrNotFound] for missing or malformed ids and
// a CONFLICT error when the isbn is already taken.
type Repository interface {
	Create(ctx context.Context, record *Record) error
	FindByID(ctx context.Context, id string) (*Record, error)
	FindAll(ctx context.Context) ([]*Record, error)
	CountWhere(ctx context.Context, field CountField, value string) (int64, error)
	Update(ctx context.Context, record *Record) error
	DeleteByID(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}
