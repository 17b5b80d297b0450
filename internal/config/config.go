package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	EnvSpreadsheetID  = "SPREADSHEET_ID"
	EnvSheetName      = "SHEET_NAME"
	EnvServiceAccount = "GOOGLE_SERVICE_ACCOUNT"
	EnvAllowedOrigin  = "ALLOWED_ORIGIN"
	EnvPort           = "PORT"

	// EnvPrefix marks environment variables for the remaining keys,
	// e.g. RSVP_METRICS_ADDR -> metrics_addr.
	EnvPrefix = "RSVP_"

	DefaultSheetName   = "Responses"
	DefaultOrigin      = "*"
	DefaultProxyOrigin = "http://127.0.0.1:5500"
	DefaultScriptURL   = "https://script.google.com/macros/s/AKfycbxK37rmOstD7AqtE5PVDOa2flLVlURrga8ckKYoBlKxcIsNSM6hFzuWHXkcKh2xpxGE/exec"
)

var plainEnv = map[string]string{
	EnvSpreadsheetID:  "spreadsheet_id",
	EnvSheetName:      "sheet_name",
	EnvServiceAccount: "service_account",
	EnvAllowedOrigin:  "allowed_origin",
	EnvPort:           "port",
}

// MissingError reports required settings that are not configured.
type MissingError struct {
	Keys []string
}

func (e *MissingError) Error() string {
	if len(e.Keys) == 1 {
		return fmt.Sprintf("Missing %s env variable", e.Keys[0])
	}

	return fmt.Sprintf("Missing %s env variables", strings.Join(e.Keys, " or "))
}

type AppConfig struct {
	k *koanf.Koanf
}

func NewAppConfig() *AppConfig {
	c := &AppConfig{k: koanf.New(".")}

	setDefaults(c.k)

	return c
}

func (c *AppConfig) Load(filename ...string) bool {
	loaded := false

	for _, name := range filename {
		if err := c.k.Load(file.Provider(name), yaml.Parser()); err != nil {
			slog.Info(fmt.Sprintf("error loading config: %s", err.Error()))
		} else {
			loaded = true
		}
	}

	return loaded
}

// LoadEnv reads the deployment variables by their plain names and every
// RSVP_ prefixed variable as a lower-cased key.
func (c *AppConfig) LoadEnv() error {
	return c.k.Load(env.Provider("", ".", func(s string) string {
		if key, ok := plainEnv[s]; ok {
			return key
		}

		if strings.HasPrefix(s, EnvPrefix) {
			key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
			slog.Debug("ENV param: " + key)

			return key
		}

		return ""
	}), nil)
}

func (c *AppConfig) Set(key string, v any) error {
	return c.k.Set(key, v)
}

func (c *AppConfig) String(key string) string {
	return c.k.String(key)
}

// stringOr treats an empty value as unset, so an exported but empty
// variable still falls back to the default.
func (c *AppConfig) stringOr(key, def string) string {
	if s := strings.TrimSpace(c.k.String(key)); s != "" {
		return s
	}

	return def
}

func (c *AppConfig) SpreadsheetID() string {
	return strings.TrimSpace(c.k.String("spreadsheet_id"))
}

func (c *AppConfig) SheetName() string {
	return c.stringOr("sheet_name", DefaultSheetName)
}

func (c *AppConfig) ServiceAccount() string {
	return c.k.String("service_account")
}

func (c *AppConfig) AllowedOrigin() string {
	return c.stringOr("allowed_origin", DefaultOrigin)
}

func (c *AppConfig) ProxyOrigin() string {
	return c.stringOr("proxy_origin", DefaultProxyOrigin)
}

func (c *AppConfig) ScriptURL() string {
	return c.stringOr("script_url", DefaultScriptURL)
}

// ListenAddr prefers an explicit listen_addr over PORT.
func (c *AppConfig) ListenAddr() string {
	if addr := c.k.String("listen_addr"); addr != "" {
		return addr
	}

	return ":" + c.stringOr("port", "8080")
}

func (c *AppConfig) MetricsAddr() string {
	return c.k.String("metrics_addr")
}

func (c *AppConfig) HTTPTimeout() time.Duration {
	return c.k.Duration("http_timeout")
}

func (c *AppConfig) LogErrorsOnly() bool {
	return c.k.Bool("log_errors_only")
}

// Location is the zone the DD/MM submission stamp is taken in.
func (c *AppConfig) Location() (*time.Location, error) {
	name := c.stringOr("timezone", "Local")
	if name == "Local" {
		return time.Local, nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("bad timezone %q: %w", name, err)
	}

	return loc, nil
}

// CheckSheets returns a *MissingError when the spreadsheet target or the
// service credential is not configured.
func (c *AppConfig) CheckSheets() error {
	var missing []string

	if c.SpreadsheetID() == "" {
		missing = append(missing, EnvSpreadsheetID)
	}

	if strings.TrimSpace(c.ServiceAccount()) == "" {
		missing = append(missing, EnvServiceAccount)
	}

	if len(missing) > 0 {
		return &MissingError{Keys: missing}
	}

	return nil
}

// ConfigFile returns the first existing file of the list, or "".
func ConfigFile(names ...string) string {
	for _, name := range names {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}

	return ""
}

func setDefaults(k *koanf.Koanf) {
	k.Set("port", "8080")
	k.Set("sheet_name", DefaultSheetName)
	k.Set("allowed_origin", DefaultOrigin)
	k.Set("proxy_origin", DefaultProxyOrigin)
	k.Set("script_url", DefaultScriptURL)
	k.Set("http_timeout", "30s")
	k.Set("timezone", "Local")
	k.Set("log_errors_only", false)
}
