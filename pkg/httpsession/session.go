package httpsession

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"anime365-client/internal/components/assert"
	"anime365-client/internal/components/chrono"
	"anime365-client/internal/components/telemetry"
	"anime365-client/lib/restyutil"

	"dario.cat/mergo"
	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("anime365-client/httpsession")

const (
	report_session_do       = "session.do"
	report_session_redirect = "session.redirect"
	report_session_location = "session.location"
)

const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/144.0.0.0 Safari/537.36"

type Options struct {
	// Timeout bounds a whole call, redirects included. Defaults to 10s.
	Timeout time.Duration `validate:"gte=0"`
	// MaxRedirects is the number of redirects followed before giving up. Defaults to 10.
	MaxRedirects int `validate:"gte=0,lte=100"`
	// UserAgent defaults to DefaultUserAgent.
	UserAgent string
	// RequestsPerSecond limits outgoing hops, 0 means unlimited.
	RequestsPerSecond float64 `validate:"gte=0"`
	// CloudflareBypass wraps the transport to look like a browser TLS client.
	CloudflareBypass bool
	// DumpDir, when set, receives one file per http exchange.
	DumpDir string
	// Transport replaces the default http transport.
	Transport http.RoundTripper `validate:"-"`
	// Clock is used for cookie expiry.
	Clock chrono.API `validate:"-"`
}

var defaultOptions = Options{
	Timeout:      time.Second * 10,
	MaxRedirects: 10,
	UserAgent:    DefaultUserAgent,
}

var validate = validator.New()

// Request is a logical request, Path is resolved against the session base url.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
	// Timeout overrides Options.Timeout for this call.
	Timeout time.Duration
}

type Hop struct {
	Url      string
	Status   int
	Location string
}

// RedirectChain is the list of redirects followed by one call.
type RedirectChain []Hop

func (c RedirectChain) Last() Hop {
	if len(c) == 0 {
		return Hop{}
	}
	return c[len(c)-1]
}

// Response is the terminal (non-redirect) response of a call.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
	// Url is the url the terminal response was received from.
	Url   *url.URL
	Chain RedirectChain
}

func (r *Response) String() string {
	return string(r.Body)
}

// Session is a cookie-persisting http client bound to one site. It is safe
// for concurrent use.
type Session struct {
	BaseUrl *url.URL
	Cookies *CookieStore

	http *resty.Client
	opts Options
	tel  telemetry.API
	csrf *CsrfProvisioner
}

func NewSession(baseUrl string, tel telemetry.API, opts Options) (*Session, error) {
	assert.NotNil(tel)
	tel = telemetry.NewScopedAPI("httpsession", tel)

	parsed, err := url.Parse(baseUrl)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("base url must be an absolute http(s) url, got %q", baseUrl)
	}

	err = mergo.Merge(&opts, defaultOptions)
	if err != nil {
		return nil, err
	}
	err = validate.Struct(opts)
	if err != nil {
		return nil, fmt.Errorf("invalid session options: %w", err)
	}
	if opts.Clock == nil {
		opts.Clock = chrono.StandardImpl{}
	}

	client := resty.New()
	// cookies are captured per hop by the session itself
	client.SetCookieJar(nil)
	if opts.Transport != nil {
		client.SetTransport(opts.Transport)
	}
	if opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}
	client.SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}))

	if opts.RequestsPerSecond > 0 {
		burst := int(math.Max(1, math.Ceil(opts.RequestsPerSecond)))
		rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
		client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			ctx := req.Context()
			err := rateLimiter.Wait(ctx)
			if err != nil && ctx.Err() == nil {
				// the limiter refuses up front when the wait would outlive the deadline
				if _, ok := ctx.Deadline(); ok {
					return fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
				}
			}
			return err
		})
	}

	telemetry.InstrumentResty(client, tel)

	if opts.DumpDir != "" {
		output, err := restyutil.NewFilesystemOutput(opts.DumpDir)
		if err != nil {
			return nil, fmt.Errorf("create dump directory: %w", err)
		}
		restyutil.DumpExchanges(client, output)
	}

	s := &Session{
		BaseUrl: parsed,
		Cookies: NewCookieStore(opts.Clock),
		http:    client,
		opts:    opts,
		tel:     tel,
	}
	s.csrf = newCsrfProvisioner(s, tel)
	return s, nil
}

// Csrf returns the provisioner of the session's anti-forgery token.
func (s *Session) Csrf() *CsrfProvisioner {
	return s.csrf
}

// GetCookie returns the value of a cookie that would be sent to the base url.
func (s *Session) GetCookie(name string) (string, bool) {
	c, ok := s.Cookies.Get(s.rootUrl(), name)
	if !ok {
		return "", false
	}
	return c.Value, true
}

// SetCookie stores a session cookie scoped to the base host and root path.
func (s *Session) SetCookie(name, value string) error {
	return s.Cookies.Set(name, value, s.BaseUrl.Hostname(), "/")
}

func (s *Session) rootUrl() *url.URL {
	return s.BaseUrl.ResolveReference(&url.URL{Path: "/"})
}

func (s *Session) headersFor(target *url.URL, caller http.Header) http.Header {
	header := http.Header{}
	header.Set("Accept", AcceptAny)
	header.Set("User-Agent", s.opts.UserAgent)
	header.Set("Cache-Control", "no-cache")
	if cookie := s.Cookies.CookieHeader(target); cookie != "" {
		header.Set("Cookie", cookie)
	}
	for k, v := range caller {
		header[http.CanonicalHeaderKey(k)] = append([]string(nil), v...)
	}
	return header
}

// Do executes a request, following redirects itself so that cookies set by
// every hop are captured before the next hop is sent. The timeout covers the
// whole redirect chain. Any http status is a success, only transport
// failures, unreadable bodies and redirect loops are errors.
func (s *Session) Do(ctx context.Context, req Request) (*Response, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = s.opts.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	ctx, span := tracer.Start(ctx, "Session.Do", trace.WithAttributes(
		attribute.String("method", method),
		attribute.String("path", req.Path),
	))
	defer span.End()

	current, err := s.BaseUrl.Parse(req.Path)
	if err != nil {
		span.SetStatus(codes.Error, "resolve path")
		return nil, fmt.Errorf("resolve %q: %w", req.Path, err)
	}

	header := req.Header.Clone()
	body := req.Body
	var chain RedirectChain

	for {
		res, err := s.send(ctx, method, current, header, body)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "hop failed")
			s.tel.ReportWarning(report_session_do, err, len(chain))
			return nil, err
		}

		status := res.StatusCode()
		responseHeader := res.Header()
		if status < 300 || status >= 400 {
			span.SetAttributes(
				attribute.Int("status", status),
				attribute.Int("redirects", len(chain)),
			)
			return &Response{
				Status: status,
				Header: responseHeader,
				Body:   res.Body(),
				Url:    current,
				Chain:  chain,
			}, nil
		}

		location := responseHeader.Get("Location")
		next, err := current.Parse(location)
		if location == "" || err != nil {
			if err != nil {
				s.tel.ReportWarning(report_session_location, err, location)
			}
			return &Response{
				Status: status,
				Header: responseHeader,
				Body:   res.Body(),
				Url:    current,
				Chain:  chain,
			}, nil
		}

		chain = append(chain, Hop{
			Url:      current.String(),
			Status:   status,
			Location: location,
		})
		if len(chain) > s.opts.MaxRedirects {
			err := &RedirectError{Chain: chain}
			span.RecordError(err)
			span.SetStatus(codes.Error, "too many redirects")
			s.tel.ReportWarning(report_session_do, err)
			return nil, err
		}

		if status == http.StatusFound || status == http.StatusSeeOther {
			method = http.MethodGet
			body = nil
			header.Del("Content-Type")
			header.Del("Content-Length")
		}

		s.tel.ReportDebug(report_session_redirect, status, current.String(), next.String())
		span.AddEvent("redirect", trace.WithAttributes(
			attribute.Int("status", status),
			attribute.String("location", next.String()),
		))
		current = next
	}
}

// send performs one hop and stores the cookies it received.
func (s *Session) send(ctx context.Context, method string, target *url.URL, header http.Header, body []byte) (*resty.Response, error) {
	req := s.http.R().SetContext(ctx)
	req.Header = s.headersFor(target, header)
	if body != nil {
		req.SetBody(body)
	}

	res, err := req.Execute(method, target.String())
	if res != nil && res.RawResponse != nil {
		s.Cookies.Store(res.RawResponse.Header.Values("Set-Cookie"), target)
	}
	if err == nil {
		return res, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, &RequestError{
			Method:  method,
			Url:     target.String(),
			Timeout: errors.Is(ctxErr, context.DeadlineExceeded),
			Err:     err,
		}
	}
	if res != nil && res.RawResponse != nil {
		return nil, &BodyError{Url: target.String(), Err: err}
	}
	return nil, &RequestError{
		Method:  method,
		Url:     target.String(),
		Timeout: errors.Is(err, context.DeadlineExceeded),
		Err:     err,
	}
}
