package main

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func Test_InitProject_Json(t *testing.T) {
	target := filepath.Join(t.TempDir(), "my-tracker")

	require.NoError(t, initProject(target, "json"))

	bytes, err := os.ReadFile(filepath.Join(target, "server", "config.json"))
	require.NoError(t, err)

	var config AppConfig
	require.NoError(t, json.Unmarshal(bytes, &config))
	assert.Equal(t, 8000, config.Port)
	assert.False(t, config.LegacyGetAdd)
	assert.Equal(t, "mongodb", config.Datasource.Connector)
	assert.Equal(t, "my_tracker", config.Datasource.Database)
	assert.Equal(t, "Entry", config.Datasource.Collection)
	assert.Equal(t, float64(30), config.Datasource.Timeout)
}

func Test_InitProject_Yaml(t *testing.T) {
	target := t.TempDir()

	require.NoError(t, initProject(target, "yml"))

	bytes, err := os.ReadFile(filepath.Join(target, "server", "config.yaml"))
	require.NoError(t, err)

	var config AppConfig
	require.NoError(t, yaml.Unmarshal(bytes, &config))
	assert.Equal(t, 8000, config.Port)
	assert.Equal(t, "Entry", config.Datasource.Collection)
}

func Test_InitProject_KeepsExistingConfig(t *testing.T) {
	target := t.TempDir()
	path := filepath.Join(target, "server", "config.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(`{"port": 9001}`), 0644))

	require.NoError(t, initProject(target, "json"))

	bytes, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"port": 9001}`, string(bytes))
}

func Test_InitProject_UnsupportedFormat(t *testing.T) {
	target := t.TempDir()

	err := initProject(target, "toml")
	assert.EqualError(t, err, `unsupported config format "toml"`)
	assert.NoDirExists(t, filepath.Join(target, "server"))
}

func captureLog(t *testing.T) *bytes.Buffer {
	var buffer bytes.Buffer
	previous := log.Writer()
	log.SetOutput(&buffer)
	t.Cleanup(func() {
		log.SetOutput(previous)
	})
	return &buffer
}

func Test_PrintHelp_MentionsLegacyGetAdd(t *testing.T) {
	output := captureLog(t)

	printHelp()

	assert.Contains(t, output.String(), "init <target> [json|yaml]")
	assert.Contains(t, output.String(), `"legacyGetAdd": true`)
}

func Test_InitProject_MentionsLegacyGetAdd(t *testing.T) {
	output := captureLog(t)

	require.NoError(t, initProject(t.TempDir(), "json"))

	assert.Contains(t, output.String(), "legacyGetAdd")
}
