package datasource

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/fredyk/entrytracker/tracker/model"
)

type MongoDBDatasourceOptions struct {
	Registry *bsoncodec.Registry
	Monitor  *event.CommandMonitor
}

type MongoDBConnector struct {
	db         *mongo.Client
	collection *mongo.Collection
	options    *MongoDBDatasourceOptions
	ds         *Datasource
}

// MongoDBConnector implements the PersistedConnector interface

func (connector *MongoDBConnector) GetName() string {
	return "mongodb"
}

func (connector *MongoDBConnector) Connect(parentContext context.Context) error {
	mongoCtx, cancelFn := connector.ds.withTimeout(parentContext)
	defer cancelFn()

	url := connector.ds.settings.Url
	if url == "" {
		url = composeMongoUrl(connector.ds)
		slog.Debug("Using composed url", "url", url)
	}

	var clientOpts *options.ClientOptions
	if connector.ds.settings.Username != "" && connector.ds.settings.Password != "" {
		credential := options.Credential{
			Username: connector.ds.settings.Username,
			Password: connector.ds.settings.Password,
		}
		clientOpts = options.Client().ApplyURI(url).SetAuth(credential)
	} else {
		clientOpts = options.Client().ApplyURI(url)
	}

	timeoutForOptions := connector.ds.Timeout()
	clientOpts = clientOpts.SetSocketTimeout(timeoutForOptions).SetConnectTimeout(timeoutForOptions).SetServerSelectionTimeout(timeoutForOptions).SetMinPoolSize(1).SetMaxPoolSize(5)

	if connector.options != nil && connector.options.Registry != nil {
		clientOpts = clientOpts.SetRegistry(connector.options.Registry)
	}

	if connector.options != nil && connector.options.Monitor != nil {
		clientOpts = clientOpts.SetMonitor(connector.options.Monitor)
	}

	db, err := mongo.Connect(mongoCtx, clientOpts)
	if err != nil {
		return err
	}

	err = db.Ping(mongoCtx, readpref.Primary())
	if err != nil {
		_ = db.Disconnect(context.Background())
		return err
	}

	connector.db = db
	connector.collection = db.Database(connector.ds.Database()).Collection(connector.ds.CollectionName())

	return nil
}

func (connector *MongoDBConnector) Disconnect(parentCtx context.Context) error {
	if connector.db == nil {
		return nil
	}
	mongoCtx, cancelFn := connector.ds.withTimeout(parentCtx)
	defer cancelFn()
	return connector.db.Disconnect(mongoCtx)
}

func (connector *MongoDBConnector) Ping(parentCtx context.Context) error {
	if connector.db == nil {
		return errDisconnected
	}
	mongoCtx, cancelFn := connector.ds.withTimeout(parentCtx)
	defer cancelFn()

	return connector.db.Ping(mongoCtx, readpref.Primary())
}

func (connector *MongoDBConnector) InsertEntry(parentCtx context.Context, entry *model.Entry) error {
	if connector.collection == nil {
		return errDisconnected
	}
	mongoCtx, cancelFn := connector.ds.withTimeout(parentCtx)
	defer cancelFn()

	result, err := connector.collection.InsertOne(mongoCtx, entry)
	if err != nil {
		return err
	}
	insertedId, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("unexpected inserted id type %T", result.InsertedID)
	}
	entry.ID = &insertedId
	return nil
}

// FindEntries sorts by _id, which encodes creation order.
func (connector *MongoDBConnector) FindEntries(parentCtx context.Context) (MongoCursorI, error) {
	if connector.collection == nil {
		return nil, errDisconnected
	}
	mongoCtx, cancelFn := connector.ds.withTimeout(parentCtx)
	defer cancelFn()

	findOptions := options.Find().SetSort(bson.D{{Key: "_id", Value: -1}})
	cursor, err := connector.collection.Find(mongoCtx, bson.D{}, findOptions)
	if err != nil {
		return nil, err
	}
	return cursor, nil
}

func composeMongoUrl(ds *Datasource) string {
	port := 27017
	if ds.settings.Port > 0 {
		port = ds.settings.Port
	}
	host := ds.settings.Host
	if host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("mongodb://%v:%v/%v", host, port, ds.Database())
}

// NewMongoDBConnector Factory method for MongoDBConnector
func NewMongoDBConnector(ds *Datasource, mongoOptions *MongoDBDatasourceOptions) PersistedConnector {
	return &MongoDBConnector{
		options: mongoOptions,
		ds:      ds,
	}
}
