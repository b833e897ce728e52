package oralia

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
	"time"

	"oralia-konnector/internal/telemetry"
	"oralia-konnector/lib/htmlutil"
	"oralia-konnector/lib/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// Session is the logged-in state of one run: an http client and the cookie
// jar it carries. Every request of the run goes through the same Session.
type Session struct {
	http *resty.Client
}

type sessionOptions struct {
	baseUrl           string
	bypassCloudflare  bool
	requestsPerSecond rate.Limit
	timeout           time.Duration
	dumpDir           string
}

func newSession(opts sessionOptions, tel telemetry.API) (*Session, error) {
	parsedBaseUrl, err := url.Parse(opts.baseUrl)
	if err != nil {
		return nil, err
	}

	httpClient := resty.New()
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	httpClient.SetCookieJar(jar)
	if opts.bypassCloudflare {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}

	httpClient.SetHeader("user-agent", userAgent)
	httpClient.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(parsedBaseUrl.Hostname()))
	httpClient.SetTimeout(opts.timeout)

	// burst >= 2 so that no request gets dropped
	rateLimiter := rate.NewLimiter(opts.requestsPerSecond, 2)
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return rateLimiter.Wait(req.Context())
	})

	telemetry.InstrumentResty(httpClient, tel)

	if opts.dumpDir != "" {
		output, err := restyutil.NewFilesystemOutput(opts.dumpDir)
		if err != nil {
			return nil, err
		}
		restyutil.Dump(httpClient, output)
	}

	return &Session{http: httpClient}, nil
}

func (s *Session) execute(req *resty.Request, method, endpoint string) (*resty.Response, error) {
	res, err := req.Execute(method, endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrFetch, method, endpoint, err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("%w: %s %s: status %s", ErrFetch, method, endpoint, res.Status())
	}
	return res, nil
}

func (s *Session) document(res *resty.Response) (*goquery.Document, error) {
	doc, err := htmlutil.ParseDocument(res.Body())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrParse, res.Request.URL, err)
	}
	return doc, nil
}

// Get fetches and parses an html page.
func (s *Session) Get(ctx context.Context, endpoint string) (*goquery.Document, error) {
	res, err := s.execute(s.http.R().SetContext(ctx), http.MethodGet, endpoint)
	if err != nil {
		return nil, err
	}
	return s.document(res)
}

// Post submits form as urlencoded data and parses the html response.
func (s *Session) Post(ctx context.Context, endpoint string, form map[string]string) (*goquery.Document, error) {
	req := s.http.R().SetContext(ctx)
	if form != nil {
		req.SetFormData(form)
	}
	res, err := s.execute(req, http.MethodPost, endpoint)
	if err != nil {
		return nil, err
	}
	return s.document(res)
}

// PostText issues an empty POST and returns the raw response body.
func (s *Session) PostText(ctx context.Context, endpoint string) (string, error) {
	res, err := s.execute(s.http.R().SetContext(ctx), http.MethodPost, endpoint)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.String()), nil
}

// Download streams the body at endpoint into the file at path.
func (s *Session) Download(ctx context.Context, endpoint, path string) error {
	_, err := s.execute(
		s.http.R().SetContext(ctx).SetOutput(path),
		http.MethodGet,
		endpoint,
	)
	if err != nil {
		os.Remove(path)
		return err
	}
	return nil
}
