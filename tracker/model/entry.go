package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

//go:generate easyjson -all entry.go

// Entry is a single tracked record. ID is assigned by the datasource on insert
// and stays nil until then.
type Entry struct {
	ID        *primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Timestamp string              `bson:"timestamp" json:"timestamp"`
}

// TimestampFormat is the RFC 2822 layout used for Entry.Timestamp.
const TimestampFormat = time.RFC1123Z

func NewEntry(timestamp string) *Entry {
	return &Entry{Timestamp: timestamp}
}

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampFormat)
}

func ParseTimestamp(timestamp string) (time.Time, error) {
	return time.Parse(TimestampFormat, timestamp)
}

// Persisted reports whether the entry carries a datasource-assigned id.
func (entry *Entry) Persisted() bool {
	return entry != nil && entry.ID != nil && !entry.ID.IsZero()
}
