// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema holds the column names of the postgres store tables so that
// queries never spell them inline.
package schema

// RecordTable represents a 'library.download' or 'library.onlinereading'
// table. Both share the same columns.
type RecordTable struct {
	Table     string
	ID        string
	UserID    string
	ISBN      string
	Title     string
	Author    string
	Language  string
	Date      string
	Format    string
	CreatedAt string
}

func newRecordTable(name string) RecordTable {
	return RecordTable{
		Table:     name,
		ID:        "id",
		UserID:    "userid",
		ISBN:      "isbn",
		Title:     "title",
		Author:    "author",
		Language:  "language",
		Date:      "date",
		Format:    "format",
		CreatedAt: "createdat",
	}
}

// LibraryDownload is the schema definition for library.download.
var LibraryDownload = newRecordTable("library.download")

// LibraryOnlineReading is the schema definition for library.onlinereading.
var LibraryOnlineReading = newRecordTable("library.onlinereading")

// Columns returns the selectable columns in scan order.
func (t RecordTable) Columns() []string {
	return []string{
		t.ID, t.UserID, t.ISBN, t.Title, t.Author, t.Language, t.Date, t.Format,
	}
}
