package httpsession

import (
	"fmt"
	"sync"

	"anime365-client/internal/components/telemetry"

	"github.com/google/uuid"
)

const (
	// CsrfCookieName is the cookie the server reads the anti-forgery token from.
	CsrfCookieName = "csrf"
	// CsrfFormField is the form field the token is echoed back in.
	CsrfFormField = "csrf"
)

const report_csrf_token = "csrf.token"

// CsrfProvisioner makes sure a session has an anti-forgery token before
// state-changing requests are sent. A token is generated at most once per
// session, after that the cookie value is reused (including a value the
// server itself set).
type CsrfProvisioner struct {
	session *Session
	tel     telemetry.API
	mutex   sync.Mutex
	// fallback keeps the generated token if the cookie store refused it.
	fallback string
}

func newCsrfProvisioner(session *Session, tel telemetry.API) *CsrfProvisioner {
	return &CsrfProvisioner{session: session, tel: tel}
}

// Token returns the session's token, creating and storing one if absent.
func (p *CsrfProvisioner) Token() (string, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if token, ok := p.session.GetCookie(CsrfCookieName); ok && token != "" {
		return token, nil
	}
	if p.fallback != "" {
		return p.fallback, nil
	}

	generated, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate csrf token: %w", err)
	}
	token := generated.String()

	err = p.session.SetCookie(CsrfCookieName, token)
	if err != nil {
		// the token is still sent, the server may reject follow-up requests
		// that need the cookie roundtrip.
		p.tel.ReportWarning(report_csrf_token, fmt.Errorf("persist csrf cookie: %w", err))
		p.fallback = token
	}
	return token, nil
}

// Inject appends the token to `form` under CsrfFormField and returns it. A
// csrf value already in the form is replaced and moved to the end.
func (p *CsrfProvisioner) Inject(form *Form) (string, error) {
	token, err := p.Token()
	if err != nil {
		return "", err
	}
	form.Del(CsrfFormField).Set(CsrfFormField, token)
	return token, nil
}
