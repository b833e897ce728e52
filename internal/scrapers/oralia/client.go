package oralia

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"oralia-konnector/internal/assert"
	"oralia-konnector/internal/chrono"
	"oralia-konnector/internal/telemetry"
	"oralia-konnector/lib/htmlutil"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

const (
	report_client_login     = "client.login"
	report_client_documents = "client.documents"
)

var tracer = otel.Tracer("oralia-konnector/scrapers/oralia")

const loginFormSelector = "#connexion"

type ClientOptions struct {
	// BaseUrl defaults to DefaultBaseUrl.
	BaseUrl string
	// FirstAccountOnly stops the walk after the first account, the way the
	// original connector did.
	FirstAccountOnly bool
	// BypassCloudflare wraps the transport with browser-like TLS settings.
	BypassCloudflare bool
	// RequestsPerSecond defaults to 2.
	RequestsPerSecond rate.Limit
	// Timeout of a single request, defaults to 30s.
	Timeout time.Duration
	// DumpDir receives a copy of every request/response when set.
	DumpDir string
	// Time defaults to the system clock.
	Time chrono.TimeAPI
}

// Client walks the oralia extranet. It holds no session state itself, a
// Session is created by Login and passed to every other call.
type Client struct {
	links Resolver
	opts  ClientOptions
	time  chrono.TimeAPI
	tel   telemetry.API
}

func NewClient(opts ClientOptions, tel telemetry.API) *Client {
	assert.NotNil(tel)

	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.RequestsPerSecond == 0 {
		opts.RequestsPerSecond = 2
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Second * 30
	}
	clock := opts.Time
	if clock == nil {
		clock = chrono.NewStandardTime()
	}

	return &Client{
		links: NewResolver(opts.BaseUrl),
		opts:  opts,
		time:  clock,
		tel:   telemetry.NewScopedAPI("oralia_scraper", tel),
	}
}

func (c *Client) Links() Resolver {
	return c.links
}

// Login opens a new session and signs into it with the #connexion form.
// Login succeeds iff the resulting page holds exactly one script element.
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	ctx, span := tracer.Start(ctx, "client:Login")
	defer span.End()

	loginError := func(err error) (*Session, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "login failed")
		c.tel.ReportBroken(report_client_login, err)
		return nil, fmt.Errorf("%w: %w", ErrAuth, err)
	}

	session, err := newSession(sessionOptions{
		baseUrl:           c.opts.BaseUrl,
		bypassCloudflare:  c.opts.BypassCloudflare,
		requestsPerSecond: c.opts.RequestsPerSecond,
		timeout:           c.opts.Timeout,
		dumpDir:           c.opts.DumpDir,
	}, c.tel)
	if err != nil {
		return loginError(err)
	}

	loginUrl := c.links.LoginUrl()
	doc, err := session.Get(ctx, loginUrl)
	if err != nil {
		return loginError(fmt.Errorf("login page: %w", err))
	}

	form := doc.Find(loginFormSelector).First()
	if form.Length() == 0 {
		return loginError(fmt.Errorf("could not find %s form", loginFormSelector))
	}

	action, err := formAction(loginUrl, form.AttrOr("action", ""))
	if err != nil {
		return loginError(fmt.Errorf("form action: %w", err))
	}

	values := htmlutil.FormValues(form)
	values["email"] = username
	values["password"] = password
	values["action"] = "C"
	values["webphone"] = "0"

	doc, err = session.Post(ctx, action, values)
	if err != nil {
		return loginError(fmt.Errorf("submit login form: %w", err))
	}

	scripts := doc.Find("script").Length()
	if scripts != 1 {
		return loginError(fmt.Errorf("expected exactly 1 script on the logged-in page, found %d", scripts))
	}

	c.tel.ReportDebug("logged in", username)
	return session, nil
}

func formAction(page, action string) (string, error) {
	base, err := url.Parse(page)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(action)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}
