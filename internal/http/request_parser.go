// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for reading the filter selection from
// query strings and request bodies.

package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"finviz/internal/core"
)

// maxFilterBodyBytes bounds PUT /api/view/filter bodies.
const maxFilterBodyBytes = 4 << 10

// ParseFilterParams reads range and category from a query string. Unknown
// ranges and empty categories fall back to "all". The category is matched
// exactly, so surrounding spaces are preserved.
func ParseFilterParams(query url.Values) core.FilterState {
	return newFilterState(first(query, "range", "time_range"), query.Get("category"))
}

func newFilterState(timeRange, category string) core.FilterState {
	category = sanitizeInput(category)
	if category == "" {
		category = core.AllCategories
	}
	return core.FilterState{
		TimeRange: core.ParseTimeRange(timeRange),
		Category:  category,
	}
}

func first(values url.Values, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(values.Get(k)); v != "" {
			return v
		}
	}
	return ""
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]interface{}
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads at most maxFilterBodyBytes of the body once.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}

	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxFilterBodyBytes+1))
	if p.err == nil && len(p.body) > maxFilterBodyBytes {
		p.err = errors.New("request body too large")
	}
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

	body := strings.TrimSpace(string(p.body))
	if body == "" {
		p.formData = url.Values{}
		return nil
	}

	if body[0] == '{' {
		p.jsonData = make(map[string]interface{})
		if err := json.Unmarshal([]byte(body), &p.jsonData); err != nil {
			p.jsonData = nil
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(body)
	return p.err
}

// Get returns a trimmed string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	return strings.TrimSpace(p.GetRaw(key))
}

// GetRaw is Get without trimming. Only control characters are removed.
func (p *RequestBodyParser) GetRaw(key string) string {
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

// ParseFilterBody reads a filter from a JSON or form body. Both "range" and
// "time_range" are accepted for the time window.
func ParseFilterBody(r *http.Request) (core.FilterState, error) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		return core.FilterState{}, err
	}
	timeRange := p.Get("time_range")
	if timeRange == "" {
		timeRange = p.Get("range")
	}
	return newFilterState(timeRange, p.GetRaw("category")), nil
}

// stringValue converts an interface{} to string.
func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}
