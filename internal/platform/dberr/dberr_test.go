// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dberr_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/taibuivan/readanddownload/internal/platform/apperr"
	"github.com/taibuivan/readanddownload/internal/platform/dberr"
)

/*
TestWrap classifies driver errors into application error codes.
*/
func TestWrap(t *testing.T) {
	mongoDuplicate := mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key error"}},
	}

	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"pg_no_rows", pgx.ErrNoRows, apperr.CodeNotFound},
		{"mongo_no_documents", mongo.ErrNoDocuments, apperr.CodeNotFound},
		{"pg_unique_violation", &pgconn.PgError{Code: "23505"}, apperr.CodeConflict},
		{"mongo_duplicate_key", mongoDuplicate, apperr.CodeConflict},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), apperr.CodeStoreUnavailable},
		{"pg_other", &pgconn.PgError{Code: "42P01"}, apperr.CodeInternal},
		{"unknown", errors.New("boom"), apperr.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := dberr.Wrap(tt.err, "test_action")
			assert.True(t, apperr.HasCode(wrapped, tt.wantCode), "got %v", wrapped)
		})
	}
}

func TestWrap_Nil(t *testing.T) {
	assert.NoError(t, dberr.Wrap(nil, "noop"))
}

/*
TestWrap_SentinelsStayPristine guards against shared sentinels picking up causes.
*/
func TestWrap_SentinelsStayPristine(t *testing.T) {
	wrapped := dberr.Wrap(&pgconn.PgError{Code: "23505"}, "insert")

	assert.Nil(t, dberr.ErrDuplicate.Cause)
	assert.Equal(t, apperr.CodeConflict, apperr.As(wrapped).Code)
	assert.ErrorIs(t, dberr.Wrap(pgx.ErrNoRows, "get"), dberr.ErrNotFound)
}
