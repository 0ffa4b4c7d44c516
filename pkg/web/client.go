package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"anime365-client/internal/components/assert"
	"anime365-client/internal/components/telemetry"
	"anime365-client/pkg/htmlutil"
	"anime365-client/pkg/httpsession"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("anime365-client/web")

const (
	report_client_request  = "client.request"
	report_client_status   = "client.bad-status"
	report_client_login    = "client.login"
	report_client_document = "client.document"
)

var invalidCredentialsMarkers = []string{
	"Неверный E-mail или пароль.",
	"Вход по паролю",
}

// Client is the html page surface of the site, it returns raw pages and
// leaves their interpretation to the caller.
type Client struct {
	session *httpsession.Session
	tel     telemetry.API
}

func NewClient(session *httpsession.Session, tel telemetry.API) *Client {
	assert.NotNil(session)
	assert.NotNil(tel)
	return &Client{
		session: session,
		tel:     telemetry.NewScopedAPI("web", tel),
	}
}

func (c *Client) BaseUrl() *url.URL {
	return c.session.BaseUrl
}

func (c *Client) send(ctx context.Context, req httpsession.Request) (string, error) {
	ctx, span := tracer.Start(ctx, "send", trace.WithAttributes(
		attribute.String("method", req.Method),
		attribute.String("path", req.Path),
	))
	defer span.End()

	res, err := c.session.Do(ctx, req)
	if errors.Is(err, httpsession.ErrUnreadableBody) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "unreadable body")
		return "", fmt.Errorf("%w: %w", ErrUnreadableResponse, err)
	}
	if err != nil {
		c.tel.ReportWarning(report_client_request, err, req.Method, req.Path)
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return "", fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	c.tel.ReportDebug(report_client_request, req.Method, res.Url.String(), res.Status)
	span.SetAttributes(attribute.Int("status", res.Status))

	if res.Status >= 400 {
		err := &StatusError{
			Method: req.Method,
			Url:    res.Url.String(),
			Status: res.Status,
		}
		c.tel.ReportDebug(report_client_status, err)
		span.SetStatus(codes.Error, "bad status code")
		return "", err
	}
	return res.String(), nil
}

// Get fetches a page, `query` is encoded in canonical order.
func (c *Client) Get(ctx context.Context, path string, query map[string]string) (string, error) {
	req, err := httpsession.NewGet(path, query, httpsession.AcceptAny)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	return c.send(ctx, req)
}

// Post submits `form` with the session's csrf token appended, a nil form
// sends only the token.
func (c *Client) Post(ctx context.Context, path string, query map[string]string, form *httpsession.Form) (string, error) {
	if form == nil {
		form = httpsession.NewForm()
	}
	_, err := c.session.Csrf().Inject(form)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	req, err := httpsession.NewPost(path, query, form)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	return c.send(ctx, req)
}

// ParseHtml parses a page previously returned by Get or Post.
func ParseHtml(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBufferString(html))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCouldNotParseHtml, err)
	}
	return doc, nil
}

// Document fetches a members-only page and parses it. It fails with
// ErrAuthenticationRequired when the login page is served instead.
func (c *Client) Document(ctx context.Context, path string, query map[string]string) (*goquery.Document, error) {
	html, err := c.Get(ctx, path, query)
	if err != nil {
		return nil, err
	}
	if IsLoginPage(html) {
		return nil, ErrAuthenticationRequired
	}
	doc, err := ParseHtml(html)
	if err != nil {
		c.tel.ReportBroken(report_client_document, err, path)
		return nil, err
	}
	return doc, nil
}

// Anchors returns the anchors matched by `selector` with absolute hrefs.
func (c *Client) Anchors(ctx context.Context, doc *goquery.Document, selector string) []htmlutil.Anchor {
	return htmlutil.GetAnchors(ctx, doc.Find(selector), c.session.BaseUrl)
}

// Login signs in with a username (e-mail) and password, on success the
// session carries the authentication cookies.
func (c *Client) Login(ctx context.Context, username, password string) error {
	form := httpsession.NewForm().
		Set("LoginForm[username]", username).
		Set("LoginForm[password]", password).
		Set("dynpage", "1").
		Set("yt0", "")

	html, err := c.Post(ctx, "/users/login", nil, form)
	if err != nil {
		c.tel.ReportWarning(report_client_login, err)
		return err
	}
	for _, marker := range invalidCredentialsMarkers {
		if strings.Contains(html, marker) {
			return ErrInvalidCredentials
		}
	}
	return nil
}

// MarkEpisodeWatched marks the episode of a translation as watched.
func (c *Client) MarkEpisodeWatched(ctx context.Context, translationId int) error {
	_, err := c.Post(ctx, fmt.Sprintf("/translations/watched/%d", translationId), nil, nil)
	return err
}

// EditAnimeListEntry updates the user's list entry of a series.
func (c *Client) EditAnimeListEntry(ctx context.Context, seriesId, score, episodes, status int, comment string) error {
	form := httpsession.NewForm().
		Set("UsersRates[score]", strconv.Itoa(score)).
		Set("UsersRates[episodes]", strconv.Itoa(episodes)).
		Set("UsersRates[status]", strconv.Itoa(status)).
		Set("UsersRates[comment]", comment)

	_, err := c.Post(ctx, fmt.Sprintf("/animelist/edit/%d", seriesId), map[string]string{"mode": "mini"}, form)
	return err
}

// IsStatus reports whether err is a *StatusError with the given status.
func IsStatus(err error, status int) bool {
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		return false
	}
	return statusErr.Status == status
}
