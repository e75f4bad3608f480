// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package record

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/readanddownload/internal/platform/apperr"
	"github.com/taibuivan/readanddownload/internal/platform/database/schema"
	"github.com/taibuivan/readanddownload/internal/platform/dberr"
	"github.com/taibuivan/readanddownload/pkg/uuidv7"
)

// PostgresRepository stores one kind in its own table.
type PostgresRepository struct {
	db    *pgxpool.Pool
	table schema.RecordTable
}

// NewPostgresRepository returns a repository over kind.Table.
func NewPostgresRepository(db *pgxpool.Pool, kind Kind) *PostgresRepository {
	return &PostgresRepository{db: db, table: kind.Table}
}

func (repository *PostgresRepository) selectColumns() string {
	return strings.Join(repository.table.Columns(), ", ")
}

func (repository *PostgresRepository) countColumn(field CountField) (string, bool) {
	switch field {
	case ByISBN:
		return repository.table.ISBN, true
	case ByUser:
		return repository.table.UserID, true
	default:
		return "", false
	}
}

func scanRecord(row pgx.Row) (*Record, error) {
	r := &Record{}
	err := row.Scan(&r.ID, &r.UserID, &r.ISBN, &r.Title, &r.Author, &r.Language, &r.Date, &r.Format)
	return r, err
}

func (repository *PostgresRepository) Create(ctx context.Context, record *Record) error {
	t := repository.table
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		t.Table, t.ID, t.UserID, t.ISBN, t.Title, t.Author, t.Language, t.Date, t.Format, t.CreatedAt,
	)

	id := uuidv7.New()
	_, err := repository.db.Exec(ctx, query,
		id, record.UserID, record.ISBN, record.Title, record.Author, record.Language, record.Date, record.Format, record.CreatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "create_record")
	}

	record.ID = id
	return nil
}

func (repository *PostgresRepository) FindByID(ctx context.Context, id string) (*Record, error) {
	if !uuidv7.IsValid(id) {
		return nil, dberr.ErrNotFound
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		repository.selectColumns(), repository.table.Table, repository.table.ID,
	)

	record, err := scanRecord(repository.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "find_record")
	}
	return record, nil
}

// FindAll lists every record in insertion order. UUIDv7 ids sort by time.
func (repository *PostgresRepository) FindAll(ctx context.Context) ([]*Record, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s ASC`,
		repository.selectColumns(), repository.table.Table, repository.table.ID,
	)

	rows, err := repository.db.Query(ctx, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list_records")
	}
	defer rows.Close()

	records := []*Record{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_record")
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "list_records")
	}
	return records, nil
}

func (repository *PostgresRepository) CountWhere(ctx context.Context, field CountField, value string) (int64, error) {
	column, ok := repository.countColumn(field)
	if !ok {
		return 0, apperr.Internal(fmt.Errorf("record: unsupported count field %q", field))
	}

	query := fmt.Sprintf(`SELECT count(*) FROM %s WHERE %s = $1`, repository.table.Table, column)

	var count int64
	if err := repository.db.QueryRow(ctx, query, value).Scan(&count); err != nil {
		return 0, dberr.Wrap(err, "count_records")
	}
	return count, nil
}

// Update overwrites the mutable fields. id and date never change.
func (repository *PostgresRepository) Update(ctx context.Context, record *Record) error {
	if !uuidv7.IsValid(record.ID) {
		return dberr.ErrNotFound
	}

	t := repository.table
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7
		WHERE %s = $1
	`,
		t.Table, t.UserID, t.ISBN, t.Title, t.Author, t.Language, t.Format, t.ID,
	)

	cmd, err := repository.db.Exec(ctx, query,
		record.ID, record.UserID, record.ISBN, record.Title, record.Author, record.Language, record.Format,
	)
	if err != nil {
		return dberr.Wrap(err, "update_record")
	}

	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (repository *PostgresRepository) DeleteByID(ctx context.Context, id string) error {
	if !uuidv7.IsValid(id) {
		return dberr.ErrNotFound
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, repository.table.Table, repository.table.ID)

	cmd, err := repository.db.Exec(ctx, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_record")
	}

	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (repository *PostgresRepository) Ping(ctx context.Context) error {
	return repository.db.Ping(ctx)
}
