// Package catalog fetches characters from the public catalog API and tracks the
// state of a fetch for display.
package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/bytedance/sonic"
	log "github.com/sirupsen/logrus"

	"github.com/idilsaglam/taskdeck/internal/model"
)

const (
	DefaultBaseURL = "https://rickandmortyapi.com/api"
	CharactersPath = "/character"
)

// NetworkError is returned for every fetch failure. Op is one of "url",
// "transport", "status" or "decode".
type NetworkError struct {
	Op     string
	URL    string
	Status int
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Op == "status" {
		return fmt.Sprintf("catalog: GET %s: unexpected status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("catalog: %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Client issues plain GET requests against BaseURL. No retries, no caching.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New returns a Client. A nil hc means http.DefaultClient.
func New(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{BaseURL: baseURL, HTTP: hc}
}

// Characters returns the first page of characters.
func (c *Client) Characters(ctx context.Context) ([]model.Character, error) {
	env, err := Fetch[model.Character](ctx, c, CharactersPath)
	if err != nil {
		return nil, err
	}
	return env.Results, nil
}

// envelope mirrors model.Envelope with pointers so missing blocks can be told
// apart from empty ones.
type envelope[T any] struct {
	Info    *model.PageInfo `json:"info"`
	Results *[]T            `json:"results"`
}

// Fetch GETs BaseURL+relativePath and decodes an Envelope of T.
func Fetch[T any](ctx context.Context, c *Client, relativePath string) (model.Envelope[T], error) {
	raw := c.BaseURL + relativePath
	u, err := url.Parse(raw)
	if err != nil {
		return model.Envelope[T]{}, &NetworkError{Op: "url", URL: raw, Err: err}
	}
	if u.Scheme == "" || u.Host == "" {
		return model.Envelope[T]{}, &NetworkError{Op: "url", URL: raw, Err: fmt.Errorf("not an absolute URL")}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return model.Envelope[T]{}, &NetworkError{Op: "url", URL: raw, Err: err}
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return model.Envelope[T]{}, &NetworkError{Op: "transport", URL: raw, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.Envelope[T]{}, &NetworkError{Op: "transport", URL: raw, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.WithFields(log.Fields{"url": raw, "status": resp.StatusCode}).Debug("catalog request failed")
		return model.Envelope[T]{}, &NetworkError{Op: "status", URL: raw, Status: resp.StatusCode}
	}

	var w envelope[T]
	if err := sonic.ConfigStd.Unmarshal(body, &w); err != nil {
		return model.Envelope[T]{}, &NetworkError{Op: "decode", URL: raw, Err: err}
	}
	if w.Info == nil || w.Results == nil {
		return model.Envelope[T]{}, &NetworkError{Op: "decode", URL: raw, Err: fmt.Errorf("response is missing info or results")}
	}
	log.WithFields(log.Fields{"url": raw, "results": len(*w.Results)}).Debug("catalog page fetched")
	return model.Envelope[T]{Info: *w.Info, Results: *w.Results}, nil
}
