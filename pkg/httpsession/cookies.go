package httpsession

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"anime365-client/internal/components/chrono"

	"golang.org/x/net/publicsuffix"
)

// Cookie is a cookie as held by the CookieStore, its identity is (Name, Domain, Path).
type Cookie struct {
	Name  string
	Value string
	// Domain is always lowercase and never has a leading dot.
	Domain string
	Path   string
	Secure bool
	// HostOnly cookies are only sent to exactly Domain, not to its subdomains.
	HostOnly bool
	// Expires is zero for session cookies.
	Expires time.Time
}

func (c Cookie) expired(now time.Time) bool {
	return !c.Expires.IsZero() && !c.Expires.After(now)
}

func (c Cookie) domainMatch(host string) bool {
	if c.Domain == host {
		return true
	}
	return !c.HostOnly && strings.HasSuffix(host, "."+c.Domain)
}

// pathMatch implements "path-match" according to RFC 6265 section 5.1.4.
func (c Cookie) pathMatch(path string) bool {
	if path == c.Path {
		return true
	}
	if strings.HasPrefix(path, c.Path) {
		if c.Path[len(c.Path)-1] == '/' {
			return true
		}
		if path[len(c.Path)] == '/' {
			return true
		}
	}
	return false
}

var (
	errNoHost          = errors.New("url has no host")
	errMalformedDomain = errors.New("malformed cookie domain")
	errIllegalDomain   = errors.New("cookie domain does not match request host")
	errPublicSuffix    = errors.New("cookie domain is a public suffix")
)

type cookieScope struct {
	domain string
	path   string
}

// CookieStore is an in-memory cookie jar scoped to one session. All reads
// and writes are serialized by a single mutex.
type CookieStore struct {
	mutex   sync.Mutex
	entries map[cookieScope]map[string]Cookie
	clock   chrono.API
}

func NewCookieStore(clock chrono.API) *CookieStore {
	if clock == nil {
		clock = chrono.StandardImpl{}
	}
	return &CookieStore{
		entries: make(map[cookieScope]map[string]Cookie),
		clock:   clock,
	}
}

func canonicalHost(u *url.URL) (string, error) {
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", errNoHost
	}
	return strings.TrimSuffix(host, "."), nil
}

func isIP(host string) bool {
	return net.ParseIP(host) != nil
}

// defaultPath is the "directory" of the request path, RFC 6265 section 5.1.4.
func defaultPath(u *url.URL) string {
	path := u.Path
	if path == "" || path[0] != '/' {
		return "/"
	}
	i := strings.LastIndex(path, "/")
	if i == 0 {
		return "/"
	}
	return path[:i]
}

// domainAndType resolves the stored domain of a cookie received from `host`
// with the given Domain attribute, and whether it is host-only.
func domainAndType(host, domainAttr string) (string, bool, error) {
	if domainAttr == "" {
		return host, true, nil
	}

	domain := strings.ToLower(strings.TrimPrefix(domainAttr, "."))
	if domain == "" || domain[0] == '.' || domain[len(domain)-1] == '.' {
		return "", false, errMalformedDomain
	}
	if domain == host && (isIP(host) || !strings.Contains(host, ".")) {
		return host, true, nil
	}
	if isIP(host) {
		return "", false, errIllegalDomain
	}

	if ps, _ := publicsuffix.PublicSuffix(domain); ps == domain {
		if domain == host {
			return host, true, nil
		}
		return "", false, errPublicSuffix
	}

	if host != domain && !strings.HasSuffix(host, "."+domain) {
		return "", false, errIllegalDomain
	}
	return domain, false, nil
}

// parseSetCookies parses raw Set-Cookie header values, invalid lines are dropped.
func parseSetCookies(values []string) []*http.Cookie {
	header := http.Header{}
	for _, v := range values {
		header.Add("Set-Cookie", v)
	}
	res := http.Response{Header: header}
	return res.Cookies()
}

// CookiesFor returns the cookies that should be sent with a request to `u`,
// longest path first, then by name.
func (s *CookieStore) CookiesFor(u *url.URL) []Cookie {
	host, err := canonicalHost(u)
	if err != nil {
		return nil
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	secure := u.Scheme == "https" || u.Scheme == "wss"

	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := s.clock.Now()
	var out []Cookie
	for scope, named := range s.entries {
		for name, c := range named {
			if c.expired(now) {
				delete(named, name)
				continue
			}
			if c.Secure && !secure {
				continue
			}
			if !c.domainMatch(host) || !c.pathMatch(path) {
				continue
			}
			out = append(out, c)
		}
		if len(named) == 0 {
			delete(s.entries, scope)
		}
	}

	slices.SortFunc(out, compareCookies)
	return out
}

func compareCookies(a, b Cookie) int {
	if len(a.Path) != len(b.Path) {
		return len(b.Path) - len(a.Path)
	}
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return strings.Compare(a.Domain, b.Domain)
}

// CookieHeader renders CookiesFor(u) as the value of a Cookie request header.
func (s *CookieStore) CookieHeader(u *url.URL) string {
	cookies := s.CookiesFor(u)
	parts := make([]string, len(cookies))
	for i, c := range cookies {
		parts[i] = c.Name + "=" + c.Value
	}
	return strings.Join(parts, "; ")
}

// Store parses Set-Cookie header values received in a response from `u` and
// upserts them. Cookies that arrive already expired remove the stored cookie
// with the same identity.
func (s *CookieStore) Store(setCookies []string, u *url.URL) {
	if len(setCookies) == 0 {
		return
	}
	host, err := canonicalHost(u)
	if err != nil {
		return
	}
	defpath := defaultPath(u)
	received := parseSetCookies(setCookies)

	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := s.clock.Now()
	for _, rc := range received {
		domain, hostOnly, err := domainAndType(host, rc.Domain)
		if err != nil {
			continue
		}
		path := rc.Path
		if path == "" || path[0] != '/' {
			path = defpath
		}

		var expires time.Time
		remove := false
		switch {
		case rc.MaxAge < 0:
			remove = true
		case rc.MaxAge > 0:
			expires = now.Add(time.Duration(rc.MaxAge) * time.Second)
		case !rc.Expires.IsZero():
			if !rc.Expires.After(now) {
				remove = true
			}
			expires = rc.Expires
		}

		scope := cookieScope{domain: domain, path: path}
		if remove {
			s.remove(scope, rc.Name)
			continue
		}
		s.upsert(scope, Cookie{
			Name:     rc.Name,
			Value:    rc.Value,
			Domain:   domain,
			Path:     path,
			Secure:   rc.Secure,
			HostOnly: hostOnly,
			Expires:  expires,
		})
	}
}

func (s *CookieStore) upsert(scope cookieScope, c Cookie) {
	named, ok := s.entries[scope]
	if !ok {
		named = make(map[string]Cookie)
		s.entries[scope] = named
	}
	named[c.Name] = c
}

func (s *CookieStore) remove(scope cookieScope, name string) {
	named, ok := s.entries[scope]
	if !ok {
		return
	}
	delete(named, name)
	if len(named) == 0 {
		delete(s.entries, scope)
	}
}

// Get returns the first cookie named `name` that would be sent to `u`.
func (s *CookieStore) Get(u *url.URL, name string) (Cookie, bool) {
	for _, c := range s.CookiesFor(u) {
		if c.Name == name {
			return c, true
		}
	}
	return Cookie{}, false
}

// Set stores a session cookie directly. Domains that are IP addresses or
// single labels (ex. localhost) produce host-only cookies.
func (s *CookieStore) Set(name, value, domain, path string) error {
	probe := http.Cookie{Name: name, Value: value}
	if err := probe.Valid(); err != nil {
		return fmt.Errorf("set cookie %q: %w", name, err)
	}
	domain = strings.ToLower(strings.TrimPrefix(domain, "."))
	if domain == "" {
		return fmt.Errorf("set cookie %q: %w", name, errMalformedDomain)
	}
	if path == "" || path[0] != '/' {
		path = "/"
	}
	hostOnly := isIP(domain) || !strings.Contains(domain, ".")

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.upsert(cookieScope{domain: domain, path: path}, Cookie{
		Name:     name,
		Value:    value,
		Domain:   domain,
		Path:     path,
		HostOnly: hostOnly,
	})
	return nil
}

// All returns every unexpired cookie in the store ordered by domain, path and name.
func (s *CookieStore) All() []Cookie {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := s.clock.Now()
	var out []Cookie
	for _, named := range s.entries {
		for _, c := range named {
			if c.expired(now) {
				continue
			}
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b Cookie) int {
		if c := strings.Compare(a.Domain, b.Domain); c != 0 {
			return c
		}
		if c := strings.Compare(a.Path, b.Path); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// Len returns the number of unexpired cookies in the store.
func (s *CookieStore) Len() int {
	return len(s.All())
}
