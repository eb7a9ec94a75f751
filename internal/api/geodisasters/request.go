package geodisasters

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

type requestBuilder struct {
	method  string
	baseURL string
	path    string
	query   url.Values
	header  http.Header
}

func newRequestBuilder(method string, baseURL string, path string) *requestBuilder {
	return &requestBuilder{
		method:  method,
		baseURL: baseURL,
		path:    path,
		query:   url.Values{},
		header:  http.Header{},
	}
}

func (b *requestBuilder) withHeaders(headers map[string]string) *requestBuilder {
	// keys are kept as spelled by the caller, not canonicalized
	for key, value := range headers {
		b.header[key] = []string{value}
	}

	return b
}

func (b *requestBuilder) addQueryParameter(key string, value string) *requestBuilder {
	b.query.Add(key, value)

	return b
}

func (b *requestBuilder) build(ctx context.Context) (*http.Request, error) {
	u, err := b.makeURL()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, b.method, u.String(), nil)
	if err != nil {
		return nil, err
	}

	for header, values := range b.header {
		req.Header[header] = append([]string(nil), values...)
	}

	return req, nil
}

func (b *requestBuilder) makeURL() (*url.URL, error) {
	u, err := url.Parse(fmt.Sprintf("%s/%s", b.baseURL, b.path))
	if err != nil {
		return nil, err
	}

	u.RawQuery = b.query.Encode()

	return u, nil
}
