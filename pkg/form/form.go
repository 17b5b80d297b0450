// Package form keeps request body fields as ordered key/value pairs so they
// can be re-encoded without losing key order or repeated keys.
package form

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"mime"
	"mime/multipart"
	"net/url"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const ContentType = fiber.MIMEApplicationForm

var ErrNotObject = errors.New("json body is not an object")

// Mode decides how JSON values become form values.
type Mode int

const (
	// Fields drops nulls and keeps numbers as written. Used where the pairs
	// are read back as submission fields.
	Fields Mode = iota
	// Relay renders values as JavaScript String() does, which is what the
	// script endpoint has always received: null is "null", numbers take
	// their shortest form and arrays nested in arrays are comma-joined.
	Relay
)

type Pair struct {
	Key   string
	Value string
}

type Pairs []Pair

func (p *Pairs) Add(key, value string) {
	*p = append(*p, Pair{Key: key, Value: value})
}

// Get returns the first value for key, or "" when absent.
func (p Pairs) Get(key string) string {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value
		}
	}

	return ""
}

func (p Pairs) Values(key string) []string {
	var res []string

	for _, kv := range p {
		if kv.Key == key {
			res = append(res, kv.Value)
		}
	}

	return res
}

// Encode renders the pairs as application/x-www-form-urlencoded in their
// original order.
func (p Pairs) Encode() string {
	var sb strings.Builder

	for i, kv := range p {
		if i > 0 {
			sb.WriteByte('&')
		}

		sb.WriteString(url.QueryEscape(kv.Key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(kv.Value))
	}

	return sb.String()
}

func ParseURLEncoded(body string) (Pairs, error) {
	res := make(Pairs, 0)

	for _, part := range strings.Split(body, "&") {
		if part == "" {
			continue
		}

		k, v, _ := strings.Cut(part, "=")

		key, err := url.QueryUnescape(k)
		if err != nil {
			return nil, fmt.Errorf("bad form key %q: %w", k, err)
		}

		value, err := url.QueryUnescape(v)
		if err != nil {
			return nil, fmt.Errorf("bad form value for %q: %w", key, err)
		}

		res.Add(key, value)
	}

	return res, nil
}

// ParseJSON reads a JSON object keeping its key order. Arrays become
// repeated keys and nested objects are kept as JSON text. Nulls and numbers
// are rendered according to mode.
func ParseJSON(body []byte, mode Mode) (Pairs, error) {
	res := make(Pairs, 0)

	if len(bytes.TrimSpace(body)) == 0 {
		return res, nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, ErrNotObject
	}

	str := stringify
	if mode == Relay {
		str = jsString
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}

		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}

		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("bad value for %q: %w", key, err)
		}

		if arr, ok := v.([]any); ok {
			for _, item := range arr {
				if s, ok := str(item); ok {
					res.Add(key, s)
				}
			}

			continue
		}

		if s, ok := str(v); ok {
			res.Add(key, s)
		}
	}

	return res, nil
}

// ParseMultipart reads the text fields of a multipart body in the order
// they were sent. File parts are skipped.
func ParseMultipart(body []byte, boundary string) (Pairs, error) {
	res := make(Pairs, 0)
	r := multipart.NewReader(bytes.NewReader(body), boundary)

	for {
		part, err := r.NextPart()
		if errors.Is(err, io.EOF) {
			return res, nil
		}

		if err != nil {
			return nil, fmt.Errorf("bad multipart body: %w", err)
		}

		name := part.FormName()
		if name == "" || part.FileName() != "" {
			_ = part.Close()
			continue
		}

		b, err := io.ReadAll(part)
		_ = part.Close()

		if err != nil {
			return nil, fmt.Errorf("bad multipart field %q: %w", name, err)
		}

		res.Add(name, string(b))
	}
}

// FromRequest parses the body by content type. Bodies of other types yield
// no fields.
func FromRequest(c *fiber.Ctx, mode Mode) (Pairs, error) {
	ct := strings.ToLower(c.Get(fiber.HeaderContentType))

	switch {
	case strings.HasPrefix(ct, fiber.MIMEApplicationJSON), strings.Contains(ct, "+json"):
		return ParseJSON(c.Body(), mode)
	case strings.HasPrefix(ct, fiber.MIMEMultipartForm):
		_, params, err := mime.ParseMediaType(c.Get(fiber.HeaderContentType))
		if err != nil || params["boundary"] == "" {
			return nil, errors.New("multipart body without boundary")
		}

		return ParseMultipart(c.Body(), params["boundary"])
	case strings.HasPrefix(ct, fiber.MIMEApplicationForm):
		return ParseURLEncoded(string(c.Body()))
	default:
		return make(Pairs, 0), nil
	}
}

func stringify(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case json.Number:
		return x.String(), true
	case bool:
		return strconv.FormatBool(x), true
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return "", false
		}

		return string(b), true
	}
}

func jsString(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "null", true
	case json.Number:
		return jsNumber(x), true
	case []any:
		parts := make([]string, len(x))

		for i, item := range x {
			if item != nil {
				parts[i], _ = jsString(item)
			}
		}

		return strings.Join(parts, ","), true
	default:
		return stringify(v)
	}
}

// jsNumber formats n like Number.prototype.toString: shortest round-trip
// digits, plain notation for 1e-6 <= |n| < 1e21, exponent otherwise.
func jsNumber(n json.Number) string {
	f, err := strconv.ParseFloat(n.String(), 64)

	switch {
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case err != nil:
		return n.String()
	case f == 0:
		return "0"
	}

	if abs := math.Abs(f); abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	mant, exp, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
	sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")

	return mant + "e" + sign + digits
}
