package tracker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp moves the test into a fresh directory holding the given files.
func chdirTemp(t *testing.T, files map[string]string) string {
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	previous, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(previous)
	})
	return dir
}

func Test_LoadConfig_Defaults(t *testing.T) {
	chdirTemp(t, nil)
	t.Setenv("GO_ENV", "")
	t.Setenv("MONGO_URI", "")
	t.Setenv("PORT", "")

	appViper := viper.New()
	require.NoError(t, LoadConfig(appViper))

	assert.Equal(t, DefaultPort, appViper.GetInt("port"))
	assert.False(t, appViper.GetBool("debug"))
	assert.False(t, appViper.GetBool("legacyGetAdd"))
	assert.Equal(t, "mongodb", appViper.GetString("datasource.connector"))
	assert.Equal(t, "tracker_mongo", appViper.GetString("datasource.database"))
	assert.Equal(t, "Entry", appViper.GetString("datasource.collection"))
	assert.Equal(t, float64(30), appViper.GetFloat64("datasource.timeout"))
	assert.Empty(t, appViper.GetString("datasource.url"))
	assert.ErrorIs(t, validateDatasourceConfig(appViper, DefaultDatasourceKey), ErrMissingDatabaseUri)
}

func Test_LoadConfig_FileAndEnv(t *testing.T) {
	chdirTemp(t, map[string]string{
		"server/config.json": `{"port": 9001, "datasource": {"collection": "Other", "timeout": 5}}`,
	})
	t.Setenv("GO_ENV", "")
	t.Setenv("MONGO_URI", "mongodb://db.internal:27017")
	t.Setenv("PORT", "")

	appViper := viper.New()
	require.NoError(t, LoadConfig(appViper))

	assert.Equal(t, 9001, appViper.GetInt("port"))
	assert.Equal(t, "Other", appViper.GetString("datasource.collection"))
	assert.Equal(t, "tracker_mongo", appViper.GetString("datasource.database"))
	assert.Equal(t, "mongodb://db.internal:27017", appViper.GetString("datasource.url"))
	assert.NoError(t, validateDatasourceConfig(appViper, DefaultDatasourceKey))
}

func Test_LoadConfig_DatabaseUrlFallback(t *testing.T) {
	chdirTemp(t, nil)
	t.Setenv("GO_ENV", "")
	t.Setenv("MONGO_URI", "")
	t.Setenv("DATABASE_URL", "redis://localhost:6379/0")
	t.Setenv("DATASOURCE_CONNECTOR", "redis")

	appViper := viper.New()
	require.NoError(t, LoadConfig(appViper))

	assert.Equal(t, "redis", appViper.GetString("datasource.connector"))
	assert.Equal(t, "redis://localhost:6379/0", appViper.GetString("datasource.url"))
}

func Test_LoadConfig_GoEnv(t *testing.T) {
	chdirTemp(t, map[string]string{
		"config.json":         `{"port": 9001}`,
		"config.staging.json": `{"port": 9002, "legacyGetAdd": true}`,
	})
	t.Setenv("GO_ENV", "staging")
	t.Setenv("PORT", "")

	appViper := viper.New()
	require.NoError(t, LoadConfig(appViper))
	assert.Equal(t, 9002, appViper.GetInt("port"))
	assert.True(t, appViper.GetBool("legacyGetAdd"))
}

func Test_LoadConfig_GoEnvFallback(t *testing.T) {
	chdirTemp(t, map[string]string{
		"config.json": `{"port": 9001}`,
	})
	t.Setenv("GO_ENV", "production")
	t.Setenv("PORT", "")

	appViper := viper.New()
	require.NoError(t, LoadConfig(appViper))
	assert.Equal(t, 9001, appViper.GetInt("port"))
}

func Test_LoadConfig_PortFromEnv(t *testing.T) {
	chdirTemp(t, map[string]string{
		"config.json": `{"port": 9001}`,
	})
	t.Setenv("GO_ENV", "")
	t.Setenv("PORT", "9100")

	app, err := New(Options{LogOutput: io.Discard})
	require.NoError(t, err)
	assert.Equal(t, 9100, app.Port())
}

func Test_LoadConfig_Malformed(t *testing.T) {
	chdirTemp(t, map[string]string{
		"config.json": `{"port": `,
	})
	t.Setenv("GO_ENV", "")

	_, err := New(Options{LogOutput: io.Discard})
	assert.Error(t, err)
	assert.Regexp(t, "^fatal error config file: ", err.Error())
}

func Test_WatchConfig_ReloadsLogLevel(t *testing.T) {
	dir := chdirTemp(t, map[string]string{
		"config.json": `{"debug": false, "datasource": {"connector": "memory"}}`,
	})
	t.Setenv("GO_ENV", "")
	t.Setenv("DEBUG", "")
	t.Setenv("DATASOURCE_CONNECTOR", "")

	app, err := New(Options{LogOutput: io.Discard, WatchConfig: true})
	require.NoError(t, err)
	require.NoError(t, app.Boot(context.Background()))
	t.Cleanup(func() {
		_ = app.Stop()
	})
	assert.Equal(t, slog.LevelInfo, app.logLevel.Level())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"debug": true, "datasource": {"connector": "memory"}}`), 0644))

	assert.Eventually(t, func() bool {
		return app.logLevel.Level() == slog.LevelDebug
	}, 5*time.Second, 50*time.Millisecond)
}

func Test_WatchConfig_ReloadUnderLoad(t *testing.T) {
	dir := chdirTemp(t, map[string]string{
		"config.json": `{"debug": false, "datasource": {"connector": "memory", "timeout": 5}}`,
	})
	t.Setenv("GO_ENV", "")
	t.Setenv("DEBUG", "")
	t.Setenv("DATASOURCE_CONNECTOR", "")

	app, err := New(Options{LogOutput: io.Discard, WatchConfig: true})
	require.NoError(t, err)
	require.NoError(t, app.Boot(context.Background()))
	t.Cleanup(func() {
		_ = app.Stop()
	})

	done := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			method := "GET"
			if i%2 == 0 {
				method = "POST"
			}
			for {
				select {
				case <-done:
					return
				default:
				}
				response, err := app.Server.Test(httptest.NewRequest(method, "/entries", nil), 5000)
				if !assert.NoError(t, err) {
					return
				}
				assert.Equal(t, http.StatusOK, response.StatusCode)
				_ = response.Body.Close()
			}
		}(i)
	}

	for i := 0; i < 20; i++ {
		content := fmt.Sprintf(`{"debug": %v, "datasource": {"connector": "memory", "timeout": %d}}`, i%2 == 0, i+1)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(content), 0644))
		time.Sleep(10 * time.Millisecond)
	}
	close(done)
	wg.Wait()

	assert.Equal(t, 5*time.Second, app.datasource.Timeout())
}
