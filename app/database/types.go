package database

import (
	"database/sql"
	"time"
)

// Document is a reconciled document row in the corpus store.
type Document struct {
	ID         string
	EventID    string
	EventType  string
	FullText   sql.NullString
	Lang       string
	CreatedAt  string // provider timestamp, kept verbatim
	Payload    []byte // full provider record as JSON
	InsertedAt time.Time
}

// Label is a reconciled annotation row in the corpus store.
type Label struct {
	PostID     string
	EventID    string
	EventType  string
	DatasetID  string
	Priority   float64
	Categories []string
	InsertedAt time.Time
}
