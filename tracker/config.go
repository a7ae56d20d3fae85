package tracker

import (
	"errors"
	"log/slog"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/fredyk/entrytracker/tracker/datasource"
	"github.com/fredyk/entrytracker/tracker/prettylog"
)

const (
	DefaultPort          = 8000
	DefaultDatasourceKey = "datasource"
)

var ErrMissingDatabaseUri = errors.New("error loading database uri")

func setConfigDefaults(appViper *viper.Viper) {
	appViper.SetDefault("port", DefaultPort)
	appViper.SetDefault("debug", false)
	appViper.SetDefault("enableCompression", false)
	appViper.SetDefault("legacyGetAdd", false)
	appViper.SetDefault(DefaultDatasourceKey+".connector", datasource.DefaultConnector)
	appViper.SetDefault(DefaultDatasourceKey+".database", datasource.DefaultDatabase)
	appViper.SetDefault(DefaultDatasourceKey+".collection", datasource.DefaultCollection)
	appViper.SetDefault(DefaultDatasourceKey+".timeout", datasource.DefaultTimeout.Seconds())
}

func bindConfigEnv(appViper *viper.Viper) error {
	bindings := map[string][]string{
		"port":                              {"PORT"},
		"debug":                             {"DEBUG"},
		DefaultDatasourceKey + ".url":       {"MONGO_URI", "DATABASE_URL"},
		DefaultDatasourceKey + ".connector": {"DATASOURCE_CONNECTOR"},
	}
	for key, envs := range bindings {
		err := appViper.BindEnv(append([]string{key}, envs...)...)
		if err != nil {
			return err
		}
	}
	return nil
}

// LoadConfig reads config.json, or config.<GO_ENV>.json when GO_ENV is set,
// from ./server or the working directory. A missing file is not an error.
func LoadConfig(appViper *viper.Viper) error {
	setConfigDefaults(appViper)
	if err := bindConfigEnv(appViper); err != nil {
		return err
	}

	fileToLoad := "config"
	if env, present := os.LookupEnv("GO_ENV"); present && env != "" {
		fileToLoad = "config." + env
	}
	appViper.SetConfigName(fileToLoad)
	appViper.AddConfigPath("./server")
	appViper.AddConfigPath(".")

	err := appViper.ReadInConfig()
	if err == nil {
		return nil
	}
	var notFound viper.ConfigFileNotFoundError
	if !errors.As(err, &notFound) {
		return err
	}
	if fileToLoad == "config" {
		slog.Warn("config file not found, using defaults")
		return nil
	}

	slog.Warn("config file not found, fallback to config", "file", fileToLoad)
	appViper.SetConfigName("config")
	err = appViper.ReadInConfig()
	if err != nil && !errors.As(err, &notFound) {
		return err
	}
	return nil
}

// validateDatasourceConfig fails when a networked connector has nowhere to
// connect to.
func validateDatasourceConfig(appViper *viper.Viper, key string) error {
	connector := appViper.GetString(key + ".connector")
	if connector == "memory" {
		return nil
	}
	if appViper.GetString(key+".url") == "" && appViper.GetString(key+".host") == "" {
		return ErrMissingDatabaseUri
	}
	return nil
}

// watchConfig keeps the log level in sync with the debug flag of the config
// file. Only the log level follows reloads; the datasource keeps the settings
// it read at boot.
func (app *Tracker) watchConfig() {
	if app.Viper.ConfigFileUsed() == "" {
		return
	}
	app.Viper.OnConfigChange(func(in fsnotify.Event) {
		if !in.Has(fsnotify.Write) && !in.Has(fsnotify.Create) {
			return
		}
		debug := app.Viper.GetBool("debug")
		app.logLevel.Set(prettylog.LevelFor(debug))
		app.logger.Info("config reloaded", "file", in.Name, "debug", debug)
	})
	app.Viper.WatchConfig()
}
