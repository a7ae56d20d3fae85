package datasource

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/mailru/easyjson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fredyk/entrytracker/tracker/model"
)

type RedisDatasourceOptions struct {
	PoolSize int
}

// RedisConnector implements the PersistedConnector interface. Entries live in
// one list per collection, pushed to the head so LRANGE yields newest first.
type RedisConnector struct {
	client  *redis.Client
	options *RedisDatasourceOptions
	ds      *Datasource
}

func (connector *RedisConnector) GetName() string {
	return "redis"
}

func (connector *RedisConnector) Connect(parentContext context.Context) error {
	redisCtx, cancelFn := connector.ds.withTimeout(parentContext)
	defer cancelFn()

	var redisOptions *redis.Options
	if url := connector.ds.settings.Url; url != "" {
		parsed, err := redis.ParseURL(url)
		if err != nil {
			return err
		}
		redisOptions = parsed
	} else {
		port := 6379
		if connector.ds.settings.Port > 0 {
			port = connector.ds.settings.Port
		}
		redisOptions = &redis.Options{
			Addr:     fmt.Sprintf("%v:%v", connector.ds.settings.Host, port),
			Password: connector.ds.settings.Password,
			DB:       connector.ds.settings.Db,
		}
	}

	timeout := connector.ds.Timeout()
	redisOptions.DialTimeout = timeout
	redisOptions.ReadTimeout = timeout
	redisOptions.WriteTimeout = timeout
	redisOptions.MaxRetries = -1
	if connector.options != nil && connector.options.PoolSize > 0 {
		redisOptions.PoolSize = connector.options.PoolSize
	}

	client := redis.NewClient(redisOptions)
	err := client.Ping(redisCtx).Err()
	if err != nil {
		_ = client.Close()
		return err
	}
	connector.client = client
	return nil
}

func (connector *RedisConnector) Disconnect(parentCtx context.Context) error {
	if connector.client == nil {
		return nil
	}
	return connector.client.Close()
}

func (connector *RedisConnector) Ping(parentCtx context.Context) error {
	if connector.client == nil {
		return errDisconnected
	}
	redisCtx, cancelFn := connector.ds.withTimeout(parentCtx)
	defer cancelFn()
	return connector.client.Ping(redisCtx).Err()
}

func (connector *RedisConnector) listKey() string {
	return fmt.Sprintf("%v:%v", connector.ds.Database(), connector.ds.CollectionName())
}

func (connector *RedisConnector) InsertEntry(parentCtx context.Context, entry *model.Entry) error {
	if connector.client == nil {
		return errDisconnected
	}
	redisCtx, cancelFn := connector.ds.withTimeout(parentCtx)
	defer cancelFn()

	id := primitive.NewObjectID()
	asBytes, err := easyjson.Marshal(model.Entry{ID: &id, Timestamp: entry.Timestamp})
	if err != nil {
		return err
	}
	err = connector.client.LPush(redisCtx, connector.listKey(), asBytes).Err()
	if err != nil {
		return err
	}
	entry.ID = &id
	return nil
}

func (connector *RedisConnector) FindEntries(parentCtx context.Context) (MongoCursorI, error) {
	if connector.client == nil {
		return nil, errDisconnected
	}
	redisCtx, cancelFn := connector.ds.withTimeout(parentCtx)
	defer cancelFn()

	values, err := connector.client.LRange(redisCtx, connector.listKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	rawInputs := make([][]byte, len(values))
	for idx, value := range values {
		rawInputs[idx] = []byte(value)
	}
	return NewFixedCursor(rawInputs, decodeEasyJSON), nil
}

func decodeEasyJSON(raw []byte, val interface{}) error {
	unmarshaler, ok := val.(easyjson.Unmarshaler)
	if !ok {
		return fmt.Errorf("cannot decode into %T", val)
	}
	return easyjson.Unmarshal(raw, unmarshaler)
}

func NewRedisConnector(ds *Datasource, redisOptions *RedisDatasourceOptions) PersistedConnector {
	return &RedisConnector{
		options: redisOptions,
		ds:      ds,
	}
}
