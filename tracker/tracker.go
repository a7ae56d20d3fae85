package tracker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/spf13/viper"

	"github.com/fredyk/entrytracker/tracker/datasource"
	"github.com/fredyk/entrytracker/tracker/model"
	"github.com/fredyk/entrytracker/tracker/prettylog"
)

// EntryStore is what the HTTP handlers need from persistence.
// *datasource.Datasource implements it.
type EntryStore interface {
	Create(ctx context.Context, timestamp string) (*model.Entry, error)
	List(ctx context.Context) ([]model.Entry, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type Tracker struct {
	Server  *fiber.App
	Viper   *viper.Viper
	Options Options

	port       int
	debug      bool
	store      EntryStore
	datasource *datasource.Datasource
	logger     *slog.Logger
	logLevel   *slog.LevelVar
	now        func() time.Time
	init       time.Time
}

type Options struct {
	Port              int
	Debug             bool
	EnableCompression bool
	CompressionConfig compress.Config
	DatasourceOptions *datasource.Options
	// Store replaces the datasource built from configuration.
	Store EntryStore
	// Viper carries an already loaded configuration. When nil, New loads
	// config.json through LoadConfig.
	Viper *viper.Viper
	// WatchConfig reloads the debug flag when the config file changes.
	WatchConfig bool
	LogOutput   io.Writer
	Now         func() time.Time
}

func (app *Tracker) Store() EntryStore {
	return app.store
}

func (app *Tracker) Logger() *slog.Logger {
	return app.logger
}

func (app *Tracker) Port() int {
	return app.port
}

func (app *Tracker) Boot(ctx context.Context, customRoutesCallbacks ...func(app *Tracker)) error {
	err := app.loadDatasource(ctx)
	if err != nil {
		return err
	}

	appBoot(customRoutesCallbacks, app)

	if app.Options.WatchConfig {
		app.watchConfig()
	}
	return nil
}

func (app *Tracker) loadDatasource(ctx context.Context) error {
	if app.Options.Store != nil {
		app.store = app.Options.Store
		return nil
	}

	err := validateDatasourceConfig(app.Viper, DefaultDatasourceKey)
	if err != nil {
		return err
	}

	ds := datasource.New("db", app.Viper, DefaultDatasourceKey, app.Options.DatasourceOptions)
	err = ds.Initialize(ctx)
	if err != nil {
		return err
	}
	app.logger.Info("datasource connected",
		"connector", ds.ConnectorName(),
		"database", ds.Database(),
		"collection", ds.CollectionName(),
	)

	app.datasource = ds
	app.store = ds
	return nil
}

func (app *Tracker) Start() error {
	app.logger.Debug("server ready", "took", time.Since(app.init), "port", app.port)
	return app.Server.Listen(fmt.Sprintf("0.0.0.0:%v", app.port))
}

func (app *Tracker) Middleware(handler fiber.Handler) {
	app.Server.Use(handler)
}

func (app *Tracker) Stop() error {
	app.logger.Info("stopping server")
	err := app.Server.Shutdown()
	if err != nil {
		return err
	}
	if app.datasource != nil {
		return app.datasource.Close()
	}
	return nil
}

func New(options ...Options) (*Tracker, error) {
	var finalOptions Options
	if len(options) > 0 {
		finalOptions = options[0]
	}

	appViper := finalOptions.Viper
	if appViper == nil {
		appViper = viper.New()
		err := LoadConfig(appViper)
		if err != nil {
			return nil, fmt.Errorf("fatal error config file: %w", err)
		}
	} else {
		setConfigDefaults(appViper)
	}

	debug := finalOptions.Debug || appViper.GetBool("debug")
	if finalOptions.Port == 0 {
		finalOptions.Port = appViper.GetInt("port")
	}
	if !finalOptions.EnableCompression {
		finalOptions.EnableCompression = appViper.GetBool("enableCompression")
	}

	logLevel := new(slog.LevelVar)
	logLevel.Set(prettylog.LevelFor(debug))
	var logger *slog.Logger
	if finalOptions.LogOutput != nil {
		logger = prettylog.New(finalOptions.LogOutput, logLevel)
	} else {
		logger = prettylog.NewDefault(logLevel)
	}

	now := finalOptions.Now
	if now == nil {
		now = time.Now
	}

	server := fiber.New(fiber.Config{
		AppName:               "entrytracker",
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		DisableStartupMessage: !debug,
	})

	app := Tracker{
		Server:  server,
		Viper:   appViper,
		Options: finalOptions,

		port:     finalOptions.Port,
		debug:    debug,
		logger:   logger,
		logLevel: logLevel,
		now:      now,
		init:     time.Now(),
	}

	return &app, nil
}
