// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing request data into asset store
// commands. Bodies may be form-encoded (htmx) or JSON.

package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"familyassets/internal/core"
	"familyassets/internal/store"
)

const maxBodyBytes = 64 << 10

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]interface{}
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}

	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	// Try JSON first if content looks like JSON
	if p.body[0] == '{' {
		p.jsonData = make(map[string]interface{})
		dec := json.NewDecoder(strings.NewReader(string(p.body)))
		dec.UseNumber()
		if err := dec.Decode(&p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	// Fall back to form parsing
	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// stringValue converts an interface{} to string.
func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// inputError is a user-facing validation message.
type inputError struct {
	msg string
}

func (e *inputError) Error() string { return e.msg }

// ParseAssetFields maps submitted values onto store fields. The amount must
// be a number and the date, when given, must be YYYY-MM-DD; an empty date
// means today. Types outside the known set are kept as submitted.
func ParseAssetFields(p *RequestBodyParser, today core.Date) (store.Fields, error) {
	if err := p.Parse(); err != nil {
		if p.IsJSON() {
			return store.Fields{}, &inputError{msg: "Invalid JSON body"}
		}
		return store.Fields{}, &inputError{msg: "Invalid request format"}
	}

	f := store.Fields{
		Name:        p.Get("name"),
		Description: p.Get("description"),
		Date:        today,
	}

	rawType := p.Get("type")
	if c, ok := core.ParseCategory(rawType); ok {
		f.Type = c
	} else if rawType == "" {
		f.Type = core.Other
	} else {
		f.Type = core.Category(rawType)
	}

	rawAmount := p.Get("amount")
	if rawAmount == "" {
		return store.Fields{}, &inputError{msg: "Amount is required"}
	}
	amount, err := core.ParseAmount(rawAmount)
	if err != nil {
		return store.Fields{}, &inputError{msg: "Amount must be a number"}
	}
	f.Amount = amount

	if raw := p.Get("date"); raw != "" {
		d, err := core.ParseDate(raw)
		if err != nil {
			return store.Fields{}, &inputError{msg: "Date must be YYYY-MM-DD"}
		}
		f.Date = d
	}

	return f, nil
}

// isConfirmed reads the delete confirmation flag.
func isConfirmed(p *RequestBodyParser) bool {
	if err := p.Parse(); err != nil {
		return false
	}
	switch strings.ToLower(p.Get("confirm")) {
	case "yes", "true", "1", "on":
		return true
	}
	return false
}

func userMessage(err error) (string, bool) {
	var ie *inputError
	if errors.As(err, &ie) {
		return ie.msg, true
	}
	return "", false
}
