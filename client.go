package anime365

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"anime365-client/internal/components/telemetry"
	"anime365-client/pkg/api"
	"anime365-client/pkg/configutil"
	"anime365-client/pkg/httpsession"
	"anime365-client/pkg/web"

	"dario.cat/mergo"
	"github.com/go-playground/validator/v10"
)

const DefaultBaseUrl = "https://smotret-anime.com"

type Config struct {
	BaseUrl           string  `json:"base_url" env:"ANIME365_BASE_URL" validate:"required,url"`
	TimeoutSeconds    int     `json:"timeout_seconds" env:"ANIME365_TIMEOUT_SECONDS" validate:"gte=0"`
	UserAgent         string  `json:"user_agent" env:"ANIME365_USER_AGENT"`
	RequestsPerSecond float64 `json:"requests_per_second" env:"ANIME365_REQUESTS_PER_SECOND" validate:"gte=0"`
	CloudflareBypass  bool    `json:"cloudflare_bypass" env:"ANIME365_CLOUDFLARE_BYPASS"`
	Debug             bool    `json:"debug" env:"ANIME365_DEBUG"`
	// DumpDir receives every http exchange when set, for debugging scrapers.
	DumpDir string `json:"dump_dir" env:"ANIME365_DUMP_DIR"`

	Otlp telemetry.OtlpConfig `json:"otlp"`
}

var defaultConfig = Config{
	BaseUrl:        DefaultBaseUrl,
	TimeoutSeconds: 10,
}

var validate = validator.New()

// LoadConfig reads `name` (json5, with a sibling .local override) from the
// working directory or one of its parents, then applies ANIME365_*
// environment variables on top. Neither source is required.
func LoadConfig(name string) (Config, error) {
	config, err := configutil.ReadRecursively[Config](name)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	env, err := configutil.FromEnv[Config]()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}
	config, err = configutil.Overlay(config, env)
	if err != nil {
		return Config{}, err
	}
	return config, nil
}

// Client bundles the session shared by the json api and the html pages.
type Client struct {
	Session *httpsession.Session
	Api     *api.Client
	Web     *web.Client
}

func NewClient(config Config, tel telemetry.API) (*Client, error) {
	err := mergo.Merge(&config, defaultConfig)
	if err != nil {
		return nil, err
	}
	err = validate.Struct(config)
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	session, err := httpsession.NewSession(config.BaseUrl, tel, httpsession.Options{
		Timeout:           time.Duration(config.TimeoutSeconds) * time.Second,
		UserAgent:         config.UserAgent,
		RequestsPerSecond: config.RequestsPerSecond,
		CloudflareBypass:  config.CloudflareBypass,
		DumpDir:           config.DumpDir,
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		Session: session,
		Api:     api.NewClient(session, tel),
		Web:     web.NewClient(session, tel),
	}, nil
}

// SetupTelemetry configures slog and, when endpoints are configured, otel
// exporters. The returned function flushes and stops the exporters.
func SetupTelemetry(ctx context.Context, config Config) (telemetry.API, func(context.Context) error, error) {
	telemetry.InitSlog(config.Debug)

	providers, err := telemetry.Setup(ctx, "anime365-client", config.Otlp)
	if err != nil {
		return nil, nil, err
	}
	return telemetry.SlogAPI{}, providers.Shutdown, nil
}
