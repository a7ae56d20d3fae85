package datasource

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fredyk/entrytracker/tracker/model"
)

// PostgresConnector implements the PersistedConnector interface. The
// collection maps to a table whose bigserial column keeps insertion order.
type PostgresConnector struct {
	pool *pgxpool.Pool
	ds   *Datasource
}

func (connector *PostgresConnector) GetName() string {
	return "postgres"
}

func (connector *PostgresConnector) tableName() string {
	return pgx.Identifier{connector.ds.CollectionName()}.Sanitize()
}

func (connector *PostgresConnector) Connect(parentContext context.Context) error {
	pgCtx, cancelFn := connector.ds.withTimeout(parentContext)
	defer cancelFn()

	config, err := pgxpool.ParseConfig(connector.ds.settings.Url)
	if err != nil {
		return err
	}
	config.ConnConfig.ConnectTimeout = connector.ds.Timeout()
	config.MinConns = 1
	config.MaxConns = 5

	pool, err := pgxpool.NewWithConfig(pgCtx, config)
	if err != nil {
		return err
	}
	err = pool.Ping(pgCtx)
	if err != nil {
		pool.Close()
		return err
	}

	_, err = pool.Exec(pgCtx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	seq BIGSERIAL PRIMARY KEY,
	id TEXT NOT NULL UNIQUE,
	"timestamp" TEXT NOT NULL
)`, connector.tableName()))
	if err != nil {
		pool.Close()
		return err
	}

	connector.pool = pool
	return nil
}

func (connector *PostgresConnector) Disconnect(parentCtx context.Context) error {
	if connector.pool != nil {
		connector.pool.Close()
	}
	return nil
}

func (connector *PostgresConnector) Ping(parentCtx context.Context) error {
	if connector.pool == nil {
		return errDisconnected
	}
	pgCtx, cancelFn := connector.ds.withTimeout(parentCtx)
	defer cancelFn()
	return connector.pool.Ping(pgCtx)
}

func (connector *PostgresConnector) InsertEntry(parentCtx context.Context, entry *model.Entry) error {
	if connector.pool == nil {
		return errDisconnected
	}
	pgCtx, cancelFn := connector.ds.withTimeout(parentCtx)
	defer cancelFn()

	id := primitive.NewObjectID()
	_, err := connector.pool.Exec(pgCtx,
		fmt.Sprintf(`INSERT INTO %s (id, "timestamp") VALUES ($1, $2)`, connector.tableName()),
		id.Hex(), entry.Timestamp)
	if err != nil {
		return err
	}
	entry.ID = &id
	return nil
}

// FindEntries streams rows with parentCtx, so the caller's deadline covers
// the whole iteration.
func (connector *PostgresConnector) FindEntries(parentCtx context.Context) (MongoCursorI, error) {
	if connector.pool == nil {
		return nil, errDisconnected
	}
	rows, err := connector.pool.Query(parentCtx,
		fmt.Sprintf(`SELECT id, "timestamp" FROM %s ORDER BY seq DESC`, connector.tableName()))
	if err != nil {
		return nil, err
	}
	return &pgxRowsCursor{rows: rows}, nil
}

type pgxRowsCursor struct {
	rows pgx.Rows
}

func (cursor *pgxRowsCursor) Next(ctx context.Context) bool {
	return cursor.rows.Next()
}

func (cursor *pgxRowsCursor) Decode(val interface{}) error {
	entry, ok := val.(*model.Entry)
	if !ok {
		return fmt.Errorf("cannot decode into %T", val)
	}
	var hexId string
	err := cursor.rows.Scan(&hexId, &entry.Timestamp)
	if err != nil {
		return err
	}
	id, err := primitive.ObjectIDFromHex(hexId)
	if err != nil {
		return err
	}
	entry.ID = &id
	return nil
}

func (cursor *pgxRowsCursor) Err() error {
	return cursor.rows.Err()
}

func (cursor *pgxRowsCursor) Close(ctx context.Context) error {
	cursor.rows.Close()
	return nil
}

func NewPostgresConnector(ds *Datasource) PersistedConnector {
	return &PostgresConnector{
		ds: ds,
	}
}
