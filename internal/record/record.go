// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package record implements the downloads and online-readings resources.

Both resources share one data shape and one workflow. A [Kind] carries what
differs between them: the route segment, the allowed formats, the counter
pushed to sibling services and the client-facing messages.

Workflow:

  - Validate: normalise the input, then apply the rules in a fixed order.
  - Persist: Mongo or Postgres behind [Repository].
  - Notify: count endpoints push the result to the catalogue or users service.
*/
package record

import "time"

// Record is a single download or online reading of a book by a user.
type Record struct {
	ID        string
	UserID    string
	ISBN      string
	Title     string
	Author    string
	Language  string
	Date      string
	Format    string
	CreatedAt time.Time
}

// View is the client-facing projection of a [Record].
type View struct {
	ID       string `json:"id"`
	UserID   string `json:"userId"`
	ISBN     string `json:"isbn"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	Language string `json:"language"`
	Date     string `json:"date"`
	Format   string `json:"format"`
}

// ToView projects a record for the response body.
func ToView(r *Record) View {
	return View{
		ID:       r.ID,
		UserID:   r.UserID,
		ISBN:     r.ISBN,
		Title:    r.Title,
		Author:   r.Author,
		Language: r.Language,
		Date:     r.Date,
		Format:   r.Format,
	}
}

// ToViews projects a slice. It never returns nil so lists encode as [].
func ToViews(records []*Record) []View {
	views := make([]View, 0, len(records))
	for _, r := range records {
		views = append(views, ToView(r))
	}
	return views
}

// Input is the request body of create and update calls. On update, empty
// fields keep the stored value.
type Input struct {
	UserID   string `json:"userId"`
	ISBN     string `json:"isbn"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	Language string `json:"language"`
	Format   string `json:"format"`
}

// CountField names a field records can be counted by.
type CountField string

const (
	ByISBN CountField = "isbn"
	ByUser CountField = "userId"
)

// JSON field names used in validation details.
const (
	FieldUserID   = "userId"
	FieldISBN     = "isbn"
	FieldTitle    = "title"
	FieldAuthor   = "author"
	FieldLanguage = "language"
	FieldFormat   = "format"
)

// Value constraints shared by both kinds.
const (
	TitleMinLen   = 3
	TitleMaxLen   = 121
	DefaultFormat = "PDF"
	DateLayout    = "2006-01-02"
)

// Languages lists the accepted language codes.
var Languages = []string{"en", "es", "fr", "de", "it", "pt"}
