// Package qrimg fetches rendered QR rasters from the third-party chart
// provider.
package qrimg

import (
	"context"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"os"
	"strings"

	"suratgen/client/rest"
	"suratgen/infra/tracing"

	"golang.org/x/time/rate"
)

type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// the provider is a shared public service, keep our call rate polite
	limiter *rate.Limiter
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Transport: &tracing.TracingTransport{Transport: http.DefaultTransport}},
		limiter:    rate.NewLimiter(rate.Limit(5), 10),
	}
}

func NewClientFromEnv() *Client {
	baseURL := os.Getenv("QR_PROVIDER_URL")
	if baseURL == "" {
		baseURL = "https://quickchart.io"
	}
	return NewClient(baseURL)
}

// Fetch returns the PNG bytes of a QR code encoding text, rendered at
// sizePx x sizePx.
func (c *Client) Fetch(ctx context.Context, text string, sizePx int) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/qr?text=%s&size=%dx%d", c.BaseURL, url.QueryEscape(text), sizePx, sizePx)
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req = req.WithContext(ctx)
	req.Header.Set("Accept", "image/png")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, rest.NewErrHttpInvoke(req, "", nil, "", err)
	}
	defer resp.Body.Close()

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, rest.NewErrHttpInvoke(req, "", resp, "", err)
	}
	if !rest.HttpStatusIsSuccess(resp.StatusCode) {
		return nil, rest.NewErrHttpInvoke(req, "", resp, string(body), nil)
	}
	return body, nil
}
