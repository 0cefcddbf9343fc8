package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestParseMonthParams(t *testing.T) {
	now := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		query   string
		want    MonthParams
		wantErr bool
	}{
		{"defaults to now", "", MonthParams{2024, 3}, false},
		{"explicit month", "year=2023&month=12", MonthParams{2023, 12}, false},
		{"only month", "month=1", MonthParams{2024, 1}, false},
		{"trims whitespace", "month=%202%20", MonthParams{2024, 2}, false},
		{"month out of range", "month=13", MonthParams{}, true},
		{"month zero", "month=0", MonthParams{}, true},
		{"year not a number", "year=abc", MonthParams{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, _ := url.ParseQuery(tt.query)
			got, err := ParseMonthParams(q, now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errBadRequest) {
				t.Fatalf("error %v is not a bad request", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMonthParamsReference(t *testing.T) {
	ref := MonthParams{Year: 2024, Month: 2}.Reference(time.UTC)
	if ref.Year() != 2024 || ref.Month() != time.February {
		t.Fatalf("Reference() = %v", ref)
	}
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		query   string
		want    int
		wantErr bool
	}{
		{"", 0, false},
		{"limit=3", 3, false},
		{"limit=0", 0, true},
		{"limit=-1", 0, true},
		{"limit=x", 0, true},
	}
	for _, tt := range tests {
		q, _ := url.ParseQuery(tt.query)
		got, err := ParseLimit(q)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseLimit(%q) = %d, %v", tt.query, got, err)
		}
	}
}

func TestFlexString(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{`"12,50"`, "12,50", false},
		{`12.5`, "12.5", false},
		{`7`, "7", false},
		{`true`, "", true},
	}
	for _, tt := range tests {
		var f flexString
		err := json.Unmarshal([]byte(tt.in), &f)
		if (err != nil) != tt.wantErr {
			t.Fatalf("Unmarshal(%s) err = %v", tt.in, err)
		}
		if string(f) != tt.want {
			t.Errorf("Unmarshal(%s) = %q, want %q", tt.in, f, tt.want)
		}
	}
}

func TestDecodeJSON(t *testing.T) {
	var dst askRequest

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"query":"hi"}`))
	if err := decodeJSON(httptest.NewRecorder(), r, &dst); err != nil || dst.Query != "hi" {
		t.Fatalf("decodeJSON() = %v, %+v", err, dst)
	}

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"query":"a"} {"query":"b"}`))
	if err := decodeJSON(httptest.NewRecorder(), r, &dst); !errors.Is(err, errBadRequest) {
		t.Fatalf("trailing document accepted: %v", err)
	}

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"query":"`+strings.Repeat("x", maxBodyBytes)+`"}`))
	if err := decodeJSON(httptest.NewRecorder(), r, &dst); !errors.Is(err, errBadRequest) {
		t.Fatalf("oversized body accepted: %v", err)
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct{ in, want string }{
		{"  pizza  ", "pizza"},
		{"piz\x00za", "pizza"},
		{"line\nbreak", "line\nbreak"},
		{"\x07bell", "bell"},
	}
	for _, tt := range tests {
		if got := sanitizeInput(tt.in); got != tt.want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
