package anime365

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"anime365-client/internal/components/telemetry"
	"anime365-client/pkg/api"

	"github.com/stretchr/testify/require"
)

func TestNewClientDefaults(t *testing.T) {
	client, err := NewClient(Config{}, &telemetry.Recorder{})
	require.NoError(t, err)
	require.Equal(t, DefaultBaseUrl, client.Session.BaseUrl.String())
	require.Equal(t, client.Session.BaseUrl, client.Web.BaseUrl())
}

func TestNewClientInvalid(t *testing.T) {
	_, err := NewClient(Config{BaseUrl: "not a url"}, &telemetry.Recorder{})
	require.Error(t, err)

	_, err = NewClient(Config{BaseUrl: "https://example.com", RequestsPerSecond: -1}, &telemetry.Recorder{})
	require.Error(t, err)
}

func TestSharedSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/login":
			http.SetCookie(w, &http.Cookie{Name: "auth", Value: "1", Path: "/"})
			http.Redirect(w, r, "/", http.StatusFound)
		case "/api/series/1":
			if _, err := r.Cookie("auth"); err != nil {
				fmt.Fprint(w, `{"error": {"code": 403, "message": "Authentication required"}}`)
				return
			}
			fmt.Fprint(w, `{"data": {"id": 1}}`)
		default:
			fmt.Fprint(w, "home")
		}
	}))
	defer server.Close()

	client, err := NewClient(Config{BaseUrl: server.URL, TimeoutSeconds: 5}, &telemetry.Recorder{})
	require.NoError(t, err)
	ctx := context.Background()

	type series struct {
		Id int `json:"id"`
	}

	_, err = api.GetSeries[series](ctx, client.Api, 1)
	require.ErrorIs(t, err, api.ErrAuthenticationRequired)

	err = client.Web.Login(ctx, "user", "password")
	require.NoError(t, err)

	got, err := api.GetSeries[series](ctx, client.Api, 1)
	require.NoError(t, err)
	require.Equal(t, 1, got.Id)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "anime365.json5"), []byte(`{
		base_url: "https://file.example",
		timeout_seconds: 20,
		otlp: { traces: { http_endpoint: "localhost:4318" } },
	}`), 0600)
	require.NoError(t, err)

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })

	t.Setenv("ANIME365_REQUESTS_PER_SECOND", "2.5")

	config, err := LoadConfig("anime365.json5")
	require.NoError(t, err)
	require.Equal(t, "https://file.example", config.BaseUrl)
	require.Equal(t, 20, config.TimeoutSeconds)
	require.Equal(t, 2.5, config.RequestsPerSecond)
	require.Equal(t, "localhost:4318", config.Otlp.Traces.HttpEndpoint)
}

func TestSetupTelemetryWithoutEndpoints(t *testing.T) {
	tel, shutdown, err := SetupTelemetry(context.Background(), Config{})
	require.NoError(t, err)
	require.NotNil(t, tel)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, shutdown(ctx))
}
