package intratime

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const acceptHeader = "application/vnd.apiintratime.v1+json"

type Response struct {
	StatusCode int
	Data       []byte
}

// StatusError is returned for any response outside the 2xx range.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s failed with status code %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Transport handles the form encoded requests of the Intratime API.
type Transport struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewTransport(baseURL string, timeout time.Duration) *Transport {
	return &Transport{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// PostForm sends form as the request body. A non empty token is passed in the
// token header the API expects.
func (t *Transport) PostForm(ctx context.Context, path string, form url.Values, token string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.BaseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("charset", "utf8")
	if token != "" {
		req.Header.Set("token", token)
	}

	resp, err := t.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		return nil, &StatusError{Method: http.MethodPost, Path: path, StatusCode: resp.StatusCode, Body: string(data)}
	}

	return &Response{StatusCode: resp.StatusCode, Data: data}, nil
}
