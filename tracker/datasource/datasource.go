package datasource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/viper"

	"github.com/fredyk/entrytracker/tracker/model"
)

const (
	DefaultConnector  = "mongodb"
	DefaultDatabase   = "tracker_mongo"
	DefaultCollection = "Entry"
	DefaultTimeout    = 30 * time.Second
)

type Options struct {
	MongoDB *MongoDBDatasourceOptions
	Redis   *RedisDatasourceOptions
	// Connector replaces the connector named in the configuration.
	Connector PersistedConnector
}

// Settings is the datasource configuration read once by New. Later changes
// to the viper instance do not reach an existing Datasource.
type Settings struct {
	Connector  string
	Url        string
	Host       string
	Port       int
	Username   string
	Password   string
	Db         int
	Database   string
	Collection string
	Timeout    time.Duration
}

// Datasource owns the single connection to the entries collection. It is
// safe for concurrent use once Initialize returns: nothing is mutated after
// that, and every connector delegates to a concurrency-safe driver.
type Datasource struct {
	Name    string
	Key     string
	Options *Options

	settings  Settings
	connector PersistedConnector
}

func readSettings(appViper *viper.Viper, key string) Settings {
	settings := Settings{
		Connector:  appViper.GetString(key + ".connector"),
		Url:        appViper.GetString(key + ".url"),
		Host:       appViper.GetString(key + ".host"),
		Port:       appViper.GetInt(key + ".port"),
		Username:   appViper.GetString(key + ".username"),
		Password:   appViper.GetString(key + ".password"),
		Db:         appViper.GetInt(key + ".db"),
		Database:   appViper.GetString(key + ".database"),
		Collection: appViper.GetString(key + ".collection"),
		Timeout:    DefaultTimeout,
	}
	if settings.Connector == "" {
		settings.Connector = DefaultConnector
	}
	if settings.Database == "" {
		settings.Database = DefaultDatabase
	}
	if settings.Collection == "" {
		settings.Collection = DefaultCollection
	}
	// Timeout bounds connection establishment and every single query.
	if seconds := appViper.GetFloat64(key + ".timeout"); seconds > 0 {
		settings.Timeout = time.Duration(seconds * float64(time.Second))
	}
	return settings
}

func (ds *Datasource) Settings() Settings {
	return ds.settings
}

func (ds *Datasource) ConnectorName() string {
	return ds.settings.Connector
}

func (ds *Datasource) Database() string {
	return ds.settings.Database
}

func (ds *Datasource) CollectionName() string {
	return ds.settings.Collection
}

func (ds *Datasource) Timeout() time.Duration {
	return ds.settings.Timeout
}

func (ds *Datasource) withTimeout(parentCtx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parentCtx, ds.Timeout())
}

func (ds *Datasource) Connector() PersistedConnector {
	return ds.connector
}

func (ds *Datasource) Initialize(parentCtx context.Context) error {
	var connector PersistedConnector
	if ds.Options != nil && ds.Options.Connector != nil {
		connector = ds.Options.Connector
	} else {
		var options Options
		if ds.Options != nil {
			options = *ds.Options
		}
		switch ds.ConnectorName() {
		case "mongodb":
			connector = NewMongoDBConnector(ds, options.MongoDB)
		case "redis":
			connector = NewRedisConnector(ds, options.Redis)
		case "postgres":
			connector = NewPostgresConnector(ds)
		case "memory":
			connector = NewMemoryConnector(ds)
		default:
			return NewError(ConnectionError, "invalid connector", errors.New(ds.ConnectorName()))
		}
	}

	slog.Debug("Connecting datasource", "datasource", ds.Name, "connector", connector.GetName(), "collection", ds.CollectionName())
	err := connector.Connect(parentCtx)
	if err != nil {
		return NewError(ConnectionError, "failed to connect to database", err)
	}
	ds.connector = connector
	return nil
}

// Create persists a new entry and returns it with the id assigned by the
// connector. The timestamp is stored verbatim.
func (ds *Datasource) Create(parentCtx context.Context, timestamp string) (*model.Entry, error) {
	if ds.connector == nil {
		return nil, NewError(WriteError, "error adding new entry", errors.New("datasource is not initialized"))
	}
	if timestamp == "" {
		return nil, NewError(WriteError, "error adding new entry", errors.New("timestamp must not be empty"))
	}

	entry := model.NewEntry(timestamp)
	err := ds.connector.InsertEntry(parentCtx, entry)
	if err != nil {
		return nil, NewError(WriteError, "error adding new entry", err)
	}
	if !entry.Persisted() {
		return nil, NewError(WriteError, "error adding new entry", fmt.Errorf("%v connector did not assign an id", ds.connector.GetName()))
	}
	return entry, nil
}

// List returns every entry, newest first. It never returns a partial list:
// any failure while iterating discards what was read so far.
func (ds *Datasource) List(parentCtx context.Context) ([]model.Entry, error) {
	if ds.connector == nil {
		return nil, NewError(ReadError, "error getting list of entries", errors.New("datasource is not initialized"))
	}
	ctx, cancelFn := ds.withTimeout(parentCtx)
	defer cancelFn()

	cursor, err := ds.connector.FindEntries(ctx)
	if err != nil {
		return nil, NewError(ReadError, "error getting list of entries", err)
	}
	defer func(cursor MongoCursorI, ctx context.Context) {
		err := cursor.Close(ctx)
		if err != nil {
			slog.Warn("Could not close cursor", "datasource", ds.Name, "err", err)
		}
	}(cursor, ctx)

	entries := make([]model.Entry, 0)
	for cursor.Next(ctx) {
		var entry model.Entry
		err := cursor.Decode(&entry)
		if err != nil {
			return nil, NewError(ReadError, "error mapping through cursor", err)
		}
		entries = append(entries, entry)
	}
	if err := cursor.Err(); err != nil {
		return nil, NewError(ReadError, "error mapping through cursor", err)
	}
	return entries, nil
}

func (ds *Datasource) Ping(parentCtx context.Context) error {
	if ds.connector == nil {
		return NewError(ConnectionError, "failed to ping database", errors.New("datasource is not initialized"))
	}
	err := ds.connector.Ping(parentCtx)
	if err != nil {
		return NewError(ConnectionError, "failed to ping database", err)
	}
	return nil
}

func (ds *Datasource) Close() error {
	if ds.connector == nil {
		return nil
	}
	return ds.connector.Disconnect(context.Background())
}

// New Factory method for Datasource. key is the configuration prefix holding
// connector, url, database, collection and timeout.
func New(name string, appViper *viper.Viper, key string, options *Options) *Datasource {
	return &Datasource{
		Name:     name,
		Key:      key,
		Options:  options,
		settings: readSettings(appViper, key),
	}
}
