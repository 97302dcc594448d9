package observability

import (
	"net/http"
	"net/url"
	"time"

	sentryhttpclient "github.com/getsentry/sentry-go/httpclient"
)

// Every menu render and picker commit calls the same backend host, so keep
// more idle connections to it than the default two.
const backendIdleConnsPerHost = 32

// WrapRoundTripper adds sentry spans to outgoing requests and propagates
// traces to the given hosts only.
func WrapRoundTripper(base http.RoundTripper, propagateTo ...string) http.RoundTripper {
	return sentryhttpclient.NewSentryRoundTripper(
		base,
		sentryhttpclient.WithTracePropagationTargets(propagateTo),
	)
}

// NewHTTPClient returns a traced client for the backend at baseURL. Trace
// headers only go to that host.
func NewHTTPClient(baseURL string, timeout time.Duration) *http.Client {
	var targets []string
	if parsed, err := url.Parse(baseURL); err == nil && parsed.Host != "" {
		targets = append(targets, parsed.Host)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = backendIdleConnsPerHost
	transport.IdleConnTimeout = 90 * time.Second

	client := &http.Client{
		Transport: WrapRoundTripper(transport, targets...),
	}
	if timeout > 0 {
		client.Timeout = timeout
	}
	return client
}
