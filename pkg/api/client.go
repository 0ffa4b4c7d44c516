package api

import (
	"context"
	"fmt"

	"anime365-client/internal/components/assert"
	"anime365-client/internal/components/telemetry"
	"anime365-client/pkg/httpsession"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("anime365-client/api")

const BasePath = "/api"

const (
	report_client_get    = "client.get"
	report_client_failed = "client.api-error"
)

// Client is the json api surface of the site. Payload types are supplied by
// the caller through the generic functions of this package.
type Client struct {
	session *httpsession.Session
	tel     telemetry.API
}

func NewClient(session *httpsession.Session, tel telemetry.API) *Client {
	assert.NotNil(session)
	assert.NotNil(tel)
	return &Client{
		session: session,
		tel:     telemetry.NewScopedAPI("api", tel),
	}
}

// Get requests `endpoint` (relative to BasePath) and returns the data of a
// success envelope. A failure envelope is returned as *ApiError.
func Get[T any](ctx context.Context, c *Client, endpoint string, query map[string]string) (T, error) {
	var out T

	ctx, span := tracer.Start(ctx, "Get", trace.WithAttributes(
		attribute.String("endpoint", endpoint),
	))
	defer span.End()

	req, err := httpsession.NewGet(BasePath+endpoint, query, httpsession.AcceptJSON)
	if err != nil {
		span.SetStatus(codes.Error, "build request")
		return out, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	c.tel.ReportDebug(report_client_get, req.Path)

	res, err := c.session.Do(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return out, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	span.SetAttributes(attribute.Int("status", res.Status))

	envelope, err := DecodeEnvelope[T](res.Body)
	if err != nil {
		c.tel.ReportWarning(report_client_get, err, req.Path, res.Status)
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode envelope")
		return out, err
	}

	switch e := envelope.(type) {
	case Success[T]:
		return e.Data, nil
	case Failure:
		apiErr := e.Error
		c.tel.ReportDebug(report_client_failed, apiErr.Code, apiErr.Message)
		span.SetStatus(codes.Error, apiErr.Message)
		return out, &apiErr
	default:
		panic(fmt.Sprintf("unknown envelope variant %T", envelope))
	}
}

func GetSeries[T any](ctx context.Context, c *Client, seriesId int) (T, error) {
	return Get[T](ctx, c, SeriesPath(seriesId), nil)
}

func ListSeries[T any](ctx context.Context, c *Client, opts ListSeriesOptions) ([]T, error) {
	return Get[[]T](ctx, c, "/series", opts.Values())
}

func GetEpisode[T any](ctx context.Context, c *Client, episodeId int) (T, error) {
	return Get[T](ctx, c, EpisodePath(episodeId), nil)
}

func ListEpisodes[T any](ctx context.Context, c *Client, opts ListEpisodesOptions) ([]T, error) {
	return Get[[]T](ctx, c, "/episodes", opts.Values())
}

func GetTranslation[T any](ctx context.Context, c *Client, translationId int) (T, error) {
	return Get[T](ctx, c, TranslationPath(translationId), nil)
}

func GetTranslationEmbed[T any](ctx context.Context, c *Client, translationId int) (T, error) {
	return Get[T](ctx, c, TranslationEmbedPath(translationId), nil)
}
