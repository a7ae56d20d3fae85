package datasource

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fredyk/entrytracker/tracker/model"
)

// MemoryConnector implements the PersistedConnector interface on top of
// process memory. Documents are kept BSON-encoded in insertion order.
type MemoryConnector struct {
	dataLock  sync.RWMutex
	documents [][]byte
	connected bool
	ds        *Datasource
}

func (connector *MemoryConnector) GetName() string {
	return "memory"
}

func (connector *MemoryConnector) Connect(parentContext context.Context) error {
	connector.dataLock.Lock()
	connector.connected = true
	connector.dataLock.Unlock()
	return nil
}

func (connector *MemoryConnector) Disconnect(parentCtx context.Context) error {
	connector.dataLock.Lock()
	connector.connected = false
	connector.dataLock.Unlock()
	return nil
}

func (connector *MemoryConnector) Ping(parentCtx context.Context) error {
	connector.dataLock.RLock()
	defer connector.dataLock.RUnlock()
	if !connector.connected {
		return errDisconnected
	}
	return nil
}

func (connector *MemoryConnector) InsertEntry(parentCtx context.Context, entry *model.Entry) error {
	id := primitive.NewObjectID()
	stored := model.Entry{ID: &id, Timestamp: entry.Timestamp}
	asBytes, err := bson.Marshal(stored)
	if err != nil {
		return err
	}

	connector.dataLock.Lock()
	defer connector.dataLock.Unlock()
	if !connector.connected {
		return errDisconnected
	}
	connector.documents = append(connector.documents, asBytes)
	entry.ID = &id
	return nil
}

func (connector *MemoryConnector) FindEntries(parentCtx context.Context) (MongoCursorI, error) {
	connector.dataLock.RLock()
	defer connector.dataLock.RUnlock()
	if !connector.connected {
		return nil, errDisconnected
	}

	newestFirst := make([][]byte, len(connector.documents))
	for idx, document := range connector.documents {
		newestFirst[len(connector.documents)-1-idx] = document
	}
	return NewFixedMongoCursor(newestFirst), nil
}

// Len returns the number of stored documents.
func (connector *MemoryConnector) Len() int {
	connector.dataLock.RLock()
	defer connector.dataLock.RUnlock()
	return len(connector.documents)
}

func NewMemoryConnector(ds *Datasource) PersistedConnector {
	return &MemoryConnector{
		ds: ds,
	}
}
