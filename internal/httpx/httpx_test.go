package httpx

import (
	"errors"
	"net/url"
	"strings"
	"testing"
)

type sample struct {
	Name string `json:"name"`
}

func TestDecodeJSON(t *testing.T) {
	var s sample
	if err := DecodeJSON(strings.NewReader(`{"name":"Dana"}`), &s); err != nil || s.Name != "Dana" {
		t.Fatalf("unexpected result %+v %v", s, err)
	}

	cases := []struct {
		name string
		body string
		want error
	}{
		{"empty", "", ErrEmptyBody},
		{"trailing", `{"name":"a"}{"name":"b"}`, ErrTrailingData},
		{"too large", `{"name":"` + strings.Repeat("a", MaxBodyBytes) + `"}`, ErrBodyTooLarge},
	}
	for _, tc := range cases {
		var got sample
		if err := DecodeJSON(strings.NewReader(tc.body), &got); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}

	if err := DecodeJSON(strings.NewReader(`{"nope":1}`), &s); err == nil {
		t.Fatalf("expected unknown field error")
	}
}

func TestParseLimitOffset(t *testing.T) {
	cases := []struct {
		query   string
		limit   int64
		offset  int64
		wantErr error
	}{
		{"", 20, 0, nil},
		{"limit=5&offset=10", 5, 10, nil},
		{"limit=500", 100, 0, nil},
		{"limit=0", 0, 0, ErrInvalidLimit},
		{"limit=abc", 0, 0, ErrInvalidLimit},
		{"offset=-1", 0, 0, ErrInvalidOffset},
	}
	for _, tc := range cases {
		values, _ := url.ParseQuery(tc.query)
		limit, offset, err := ParseLimitOffset(values, 20, 100)
		if !errors.Is(err, tc.wantErr) {
			t.Fatalf("%q: expected error %v, got %v", tc.query, tc.wantErr, err)
		}
		if err == nil && (limit != tc.limit || offset != tc.offset) {
			t.Fatalf("%q: expected %d/%d, got %d/%d", tc.query, tc.limit, tc.offset, limit, offset)
		}
	}
}

func TestPage(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	if got := Page(items, 2, 1); len(got) != 2 || got[0] != 2 {
		t.Fatalf("unexpected page %v", got)
	}
	if got := Page(items, 10, 3); len(got) != 2 {
		t.Fatalf("expected tail of 2, got %v", got)
	}
	if got := Page(items, 2, 9); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil page, got %v", got)
	}
}
