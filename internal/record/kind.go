// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package record

import (
	"fmt"
	"strings"

	"github.com/taibuivan/readanddownload/internal/platform/database/schema"
)

// Kind describes one record collection.
type Kind struct {
	// Name is the route segment and the key of the list response.
	Name string
	// Collection is the Mongo collection name.
	Collection string
	// Table is the Postgres table definition.
	Table schema.RecordTable
	// Formats lists the accepted format codes.
	Formats []string
	// CounterField is the JSON key of the count pushed to sibling services.
	CounterField string
	// CounterSegment is the last path segment of the sibling endpoints.
	CounterSegment string
	Messages       Messages
}

// Messages holds the client-facing texts of a kind.
type Messages struct {
	NotFound    string
	Deleted     string
	Duplicate   string
	NoneForBook string
	NoneForUser string
	// UserCount is formatted with the user id and the count.
	UserCount string
}

// Downloads are books a user downloaded.
var Downloads = Kind{
	Name:           "downloads",
	Collection:     "downloads",
	Table:          schema.LibraryDownload,
	Formats:        []string{"PDF", "EPUB", "MOBI"},
	CounterField:   "downloadCount",
	CounterSegment: "downloads",
	Messages: Messages{
		NotFound:    "Descarga no encontrada",
		Deleted:     "Descarga eliminada",
		Duplicate:   "Ya existe una descarga con este ISBN",
		NoneForBook: "No se encontraron descargas para este libro.",
		NoneForUser: "No se encontraron descargas para este usuario.",
		UserCount:   "El usuario %s tiene %d descargas.",
	},
}

// OnlineReadings are books a user read in the browser.
var OnlineReadings = Kind{
	Name:           "onlineReadings",
	Collection:     "onlinereadings",
	Table:          schema.LibraryOnlineReading,
	Formats:        []string{"PDF"},
	CounterField:   "readingCount",
	CounterSegment: "readings",
	Messages: Messages{
		NotFound:    "Lectura en línea no encontrada",
		Deleted:     "Lectura eliminada",
		Duplicate:   "Ya existe una lectura con este ISBN",
		NoneForBook: "No se encontraron lecturas para este libro.",
		NoneForUser: "No se encontraron lecturas para este usuario.",
		UserCount:   "El usuario %s tiene %d lecturas en línea.",
	},
}

// FormatMessage is the validation message for a format outside the kind's set.
func (k Kind) FormatMessage() string {
	return "El formato debe ser uno de los siguientes: " + strings.Join(k.Formats, ", ") + "."
}

func (k Kind) userCountMessage(userID string, count int64) string {
	return fmt.Sprintf(k.Messages.UserCount, userID, count)
}
