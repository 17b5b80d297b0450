// Package sheets appends rows to a Google spreadsheet as a service account.
package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/rsvp-sheets/rsvp/internal/rsvp"
)

const (
	Scope = sheets.SpreadsheetsScope

	valueInputOption = "USER_ENTERED"
	insertDataOption = "INSERT_ROWS"
)

var ErrNoCredential = errors.New("service account credential is empty")

// Target is the single sheet rows go to.
type Target struct {
	SpreadsheetID string
	Sheet         string
}

func (t Target) Range() string {
	return t.Sheet + "!" + rsvp.ColumnRange
}

// Appender authorizes against the spreadsheet service and appends rows in
// one call.
type Appender interface {
	Authorize(ctx context.Context) error
	Append(ctx context.Context, t Target, rows []rsvp.Row) error
}

// Client is an Appender backed by the Sheets v4 API. The service is built
// on first use and kept for the life of the process. The access token is
// cached until it expires and refetched under the caller's context.
type Client struct {
	credential string
	client     *http.Client
	opts       []option.ClientOption
	logger     *slog.Logger

	mx   sync.Mutex
	conf *jwt.Config
	tok  *oauth2.Token
	svc  *sheets.Service
}

// New builds a client whose token and Sheets requests go through client,
// so its Timeout bounds every outbound call.
func New(credential string, client *http.Client, logger *slog.Logger, opts ...option.ClientOption) *Client {
	if client == nil {
		client = &http.Client{}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		credential: credential,
		client:     client,
		opts:       opts,
		logger:     logger.With(slog.String("logger", "sheets")),
	}
}

// NormalizeCredential parses a service account JSON blob and restores
// newlines in the private key that arrived escaped as \n.
func NormalizeCredential(raw string) ([]byte, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrNoCredential
	}

	m := make(map[string]any)
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("parse service account: %w", err)
	}

	if pk, ok := m["private_key"].(string); ok {
		m["private_key"] = strings.ReplaceAll(pk, `\n`, "\n")
	}

	return json.Marshal(m)
}

// jwtConfig must be called with mx held.
func (c *Client) jwtConfig() (*jwt.Config, error) {
	if c.conf != nil {
		return c.conf, nil
	}

	cred, err := NormalizeCredential(c.credential)
	if err != nil {
		return nil, err
	}

	conf, err := google.JWTConfigFromJSON(cred, Scope)
	if err != nil {
		return nil, err
	}

	c.logger.Info("sheets credential loaded", slog.String("client_email", conf.Email))
	c.conf = conf

	return conf, nil
}

func (c *Client) token(ctx context.Context) (*oauth2.Token, error) {
	c.mx.Lock()
	defer c.mx.Unlock()

	if c.tok.Valid() {
		return c.tok, nil
	}

	conf, err := c.jwtConfig()
	if err != nil {
		return nil, err
	}

	// the jwt source posts without a context, so the transport carries it
	hc := &http.Client{
		Timeout:   c.client.Timeout,
		Transport: &ctxTransport{ctx: ctx, base: c.client.Transport},
	}

	tok, err := conf.TokenSource(context.WithValue(ctx, oauth2.HTTPClient, hc)).Token()
	if err != nil {
		return nil, err
	}

	c.logger.Debug("access token fetched", slog.Time("expiry", tok.Expiry))
	c.tok = tok

	return tok, nil
}

// Token makes Client the token source of its own Sheets service.
func (c *Client) Token() (*oauth2.Token, error) {
	return c.token(context.Background())
}

func (c *Client) service() (*sheets.Service, error) {
	c.mx.Lock()
	defer c.mx.Unlock()

	if c.svc != nil {
		return c.svc, nil
	}

	if _, err := c.jwtConfig(); err != nil {
		return nil, err
	}

	hc := &http.Client{
		Timeout:   c.client.Timeout,
		Transport: &oauth2.Transport{Source: c, Base: c.client.Transport},
	}

	opts := append([]option.ClientOption{option.WithHTTPClient(hc)}, c.opts...)

	svc, err := sheets.NewService(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	c.svc = svc

	return svc, nil
}

// Authorize makes sure a valid access token is at hand, fetching one if
// the cached token is missing or expired.
func (c *Client) Authorize(ctx context.Context) error {
	_, err := c.token(ctx)

	return err
}

func (c *Client) Append(ctx context.Context, t Target, rows []rsvp.Row) error {
	if _, err := c.token(ctx); err != nil {
		return err
	}

	svc, err := c.service()
	if err != nil {
		return err
	}

	vr := &sheets.ValueRange{Values: rsvp.Values(rows)}

	res, err := svc.Spreadsheets.Values.Append(t.SpreadsheetID, t.Range(), vr).
		ValueInputOption(valueInputOption).
		InsertDataOption(insertDataOption).
		Context(ctx).
		Do()
	if err != nil {
		return err
	}

	if res.Updates != nil {
		c.logger.Debug(fmt.Sprintf("appended %d rows to %s", res.Updates.UpdatedRows, res.Updates.UpdatedRange))
	}

	return nil
}

type ctxTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t *ctxTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}

	return base.RoundTrip(r.WithContext(t.ctx))
}
