package intratime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultURL = "http://newapi.intratime.es"

	loginPath    = "/api/user/login"
	clockingPath = "/api/user/clocking"

	timestampLayout = "2006-01-02 15:04:05"
)

var (
	ErrAuthentication = errors.New("intratime authentication failed")
	ErrUnknownAction  = errors.New("unknown intratime action")
)

var actionIDs = map[string]int{
	"in":     0,
	"out":    1,
	"pause":  2,
	"return": 3,
}

// ActionID maps a clock action name to the id Intratime uses for it.
func ActionID(action string) (int, error) {
	id, ok := actionIDs[strings.ToLower(action)]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownAction, action)
	}
	return id, nil
}

type loginResponse struct {
	UserToken string `json:"USER_TOKEN"`
}

// Client registers clockings in Intratime on behalf of a user. The API has
// no long lived credentials, so every call logs in with the user's email
// and pin first.
type Client struct {
	Transport *Transport
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{Transport: NewTransport(baseURL, timeout)}
}

// Login returns the session token of the user. Rejected credentials yield
// ErrAuthentication.
func (c *Client) Login(ctx context.Context, email, pin string) (string, error) {
	form := url.Values{"user": {email}, "pin": {pin}}

	resp, err := c.Transport.PostForm(ctx, loginPath, form, "")
	var status *StatusError
	if errors.As(err, &status) && status.StatusCode < http.StatusInternalServerError {
		return "", ErrAuthentication
	}
	if err != nil {
		return "", fmt.Errorf("intratime login: %w", err)
	}

	var login loginResponse
	if err := json.Unmarshal(resp.Data, &login); err != nil || login.UserToken == "" {
		return "", ErrAuthentication
	}
	return login.UserToken, nil
}

// CheckCredentials reports whether Intratime accepts email and pin. An error
// means the API could not be asked.
func (c *Client) CheckCredentials(ctx context.Context, email, pin string) (bool, error) {
	_, err := c.Login(ctx, email, pin)
	if errors.Is(err, ErrAuthentication) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Clock registers action at the wall clock time of at.
func (c *Client) Clock(ctx context.Context, token, action string, at time.Time) error {
	id, err := ActionID(action)
	if err != nil {
		return err
	}

	form := url.Values{
		"user_action":          {strconv.Itoa(id)},
		"user_use_server_time": {"false"},
		"user_timestamp":       {at.Format(timestampLayout)},
	}
	if _, err := c.Transport.PostForm(ctx, clockingPath, form, token); err != nil {
		return fmt.Errorf("intratime clocking: %w", err)
	}
	return nil
}

// Sync logs in as the user and registers the clocking.
func (c *Client) Sync(ctx context.Context, email, pin, action string, at time.Time) error {
	token, err := c.Login(ctx, email, pin)
	if err != nil {
		return err
	}
	return c.Clock(ctx, token, action, at)
}
