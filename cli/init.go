package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/fredyk/entrytracker/tracker"
	"github.com/fredyk/entrytracker/tracker/datasource"
)

type DatasourceConfig struct {
	Connector  string  `json:"connector" yaml:"connector"`
	Url        string  `json:"url" yaml:"url"`
	Database   string  `json:"database" yaml:"database"`
	Collection string  `json:"collection" yaml:"collection"`
	Timeout    float64 `json:"timeout" yaml:"timeout"`
}

type AppConfig struct {
	Port              int              `json:"port" yaml:"port"`
	Debug             bool             `json:"debug" yaml:"debug"`
	EnableCompression bool             `json:"enableCompression" yaml:"enableCompression"`
	LegacyGetAdd      bool             `json:"legacyGetAdd" yaml:"legacyGetAdd"`
	Datasource        DatasourceConfig `json:"datasource" yaml:"datasource"`
}

var nonAlphanumeric = regexp.MustCompile("[^a-zA-Z0-9]+")

func defaultConfig(projectName string) AppConfig {
	dbName := nonAlphanumeric.ReplaceAllString(projectName, "_")
	if dbName == "" || dbName == "_" {
		dbName = datasource.DefaultDatabase
	}
	return AppConfig{
		Port: tracker.DefaultPort,
		Datasource: DatasourceConfig{
			Connector:  datasource.DefaultConnector,
			Url:        "mongodb://localhost:27017",
			Database:   dbName,
			Collection: datasource.DefaultCollection,
			Timeout:    datasource.DefaultTimeout.Seconds(),
		},
	}
}

func marshalConfig(config AppConfig, format string) ([]byte, error) {
	switch format {
	case "json":
		return json.MarshalIndent(config, "", "  ")
	case "yaml", "yml":
		return yaml.Marshal(config)
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
}

// initProject writes <target>/server/config.<format>, leaving any existing
// config untouched.
func initProject(target string, format string) error {
	fqnTarget, err := filepath.Abs(target)
	if err != nil {
		return err
	}
	projectName := nonAlphanumeric.ReplaceAllString(filepath.Base(fqnTarget), "-")
	log.Println("Initializing project", projectName)

	bytes, err := marshalConfig(defaultConfig(filepath.Base(fqnTarget)), format)
	if err != nil {
		return err
	}

	serverDir := filepath.Join(fqnTarget, "server")
	err = os.MkdirAll(serverDir, 0755)
	if err != nil {
		return err
	}

	ext := format
	if ext == "yml" {
		ext = "yaml"
	}
	path := filepath.Join(serverDir, "config."+ext)
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		log.Printf("%v already exists, skipping\n", path)
		return nil
	}

	err = os.WriteFile(path, bytes, 0644)
	if err != nil {
		return err
	}
	log.Printf("Wrote %v. GET /entries/add is disabled unless legacyGetAdd is set to true\n", path)
	return nil
}
