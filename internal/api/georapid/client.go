package georapid

import (
	"fmt"
	"strings"
)

const (
	DefaultHost = "geodisasters.p.rapidapi.com"

	headerAPIKey  = "X-RapidAPI-Key"
	headerAPIHost = "X-RapidAPI-Host"
)

// Client holds the endpoint and credentials of a GeoRapid service.
// It does not issue requests by itself.
type Client struct {
	url    string
	host   string
	apiKey string
}

func NewClient(url string, host string, apiKey string) *Client {
	return &Client{
		url:    strings.TrimRight(strings.TrimSpace(url), "/"),
		host:   host,
		apiKey: apiKey,
	}
}

// NewRapidAPIClient returns a client for the GeoDisasters service hosted on RapidAPI.
func NewRapidAPIClient(apiKey string) *Client {
	return NewClient(fmt.Sprintf("https://%s", DefaultHost), DefaultHost, apiKey)
}

func (c *Client) URL() string {
	return c.url
}

func (c *Client) Host() string {
	return c.host
}

func (c *Client) AuthHeaders() map[string]string {
	return map[string]string{
		headerAPIKey:  c.apiKey,
		headerAPIHost: c.host,
	}
}
