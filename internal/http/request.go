package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"resourceguardian/internal/core"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// decodeJSON reads a JSON request body into v, rejecting unknown
// fields and oversized bodies.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return core.Validationf("body", "invalid JSON: %v", err)
	}
	return nil
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, core.Validationf("id", "invalid id %q", raw)
	}
	return id, nil
}

// queryYearMonth extracts year and month query parameters, defaulting
// to the current month in UTC.
func queryYearMonth(r *http.Request) (int, time.Month, error) {
	now := time.Now().UTC()
	year, month := now.Year(), now.Month()

	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1970 || y > 9999 {
			return 0, 0, core.Validationf("year", "invalid year %q", v)
		}
		year = y
	}
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			return 0, 0, core.Validationf("month", "invalid month %q", v)
		}
		month = time.Month(m)
	}
	return year, month, nil
}

// queryDate parses an optional YYYY-MM-DD query parameter.
func queryDate(r *http.Request, key string) (*time.Time, error) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, core.Validationf(key, "invalid date %q, want YYYY-MM-DD", v)
	}
	return &t, nil
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, key string, defaultValue int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, core.Validationf(key, "invalid number %q", v)
	}
	return n, nil
}

// queryMoney parses an optional decimal amount query parameter.
func queryMoney(r *http.Request, key string) (*core.Money, error) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return nil, nil
	}
	m, err := core.ParseAmount(v)
	if err != nil {
		return nil, core.Validationf(key, "invalid amount %q", v)
	}
	return &m, nil
}
