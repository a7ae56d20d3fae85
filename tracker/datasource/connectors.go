package datasource

import (
	"context"
	"errors"

	"github.com/fredyk/entrytracker/tracker/model"
)

type PersistedConnector interface {
	// GetName Returns the name of the connector
	GetName() string
	// Connect Connects to the datasource
	Connect(parentContext context.Context) error
	// Disconnect Disconnects from the datasource
	Disconnect(parentCtx context.Context) error
	// Ping Pings the datasource
	Ping(parentCtx context.Context) error
	// InsertEntry Inserts the entry and sets its ID
	InsertEntry(parentCtx context.Context, entry *model.Entry) error
	// FindEntries Returns a cursor over every entry, newest first
	FindEntries(parentCtx context.Context) (MongoCursorI, error)
}

var errDisconnected = errors.New("client is disconnected")
