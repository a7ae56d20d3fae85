package datasource

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
)

// MongoCursorI is the subset of *mongo.Cursor every connector returns from
// FindEntries.
type MongoCursorI interface {
	Next(ctx context.Context) bool
	Decode(val interface{}) error
	Err() error
	Close(ctx context.Context) error
}

type RawDecoder func(raw []byte, val interface{}) error

type fixedMongoCursor struct {
	rawInputs  [][]byte
	decode     RawDecoder
	index      int
	totalCount int
	closed     bool
	err        error
}

func (cursor *fixedMongoCursor) Next(ctx context.Context) bool {
	if cursor.closed {
		return false
	}
	if err := ctx.Err(); err != nil {
		cursor.err = err
		return false
	}
	if cursor.index+1 >= cursor.totalCount {
		cursor.index = cursor.totalCount
		return false
	}
	cursor.index++
	return true
}

func (cursor *fixedMongoCursor) Decode(val interface{}) error {
	if cursor.index < 0 || cursor.index >= cursor.totalCount {
		return errors.New("cursor is not positioned on a document")
	}
	return cursor.decode(cursor.rawInputs[cursor.index], val)
}

func (cursor *fixedMongoCursor) Err() error {
	return cursor.err
}

func (cursor *fixedMongoCursor) Close(ctx context.Context) error {
	cursor.closed = true
	return nil
}

// NewFixedMongoCursor iterates over already materialized BSON documents.
func NewFixedMongoCursor(rawInputs [][]byte) MongoCursorI {
	return NewFixedCursor(rawInputs, bson.Unmarshal)
}

func NewFixedCursor(rawInputs [][]byte, decode RawDecoder) MongoCursorI {
	return &fixedMongoCursor{
		rawInputs:  rawInputs,
		decode:     decode,
		index:      -1,
		totalCount: len(rawInputs),
	}
}
