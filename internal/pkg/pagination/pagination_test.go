package pagination

import "testing"

func TestNormalizeDefaults(t *testing.T) {
	p := Params{}.Normalize(map[string]string{"title": "title"})
	if p.Page != 1 || p.PageSize != 10 || p.OrderBy != "created_at" || p.SortOrder != "DESC" {
		t.Fatalf("unexpected defaults: %+v", p)
	}
}

func TestNormalizeRejectsUnknownColumns(t *testing.T) {
	p := Params{OrderBy: "title; DROP TABLE users", SortOrder: "asc", PageSize: 500, Page: 3}.
		Normalize(map[string]string{"title": "title"})
	if p.OrderBy != "created_at" {
		t.Fatalf("expected fallback column, got %q", p.OrderBy)
	}
	if p.SortOrder != "ASC" || p.PageSize != MaxPageSize {
		t.Fatalf("unexpected normalize: %+v", p)
	}
	if p.Offset() != 200 {
		t.Fatalf("expected offset 200, got %d", p.Offset())
	}
}

func TestNewPageNeverNil(t *testing.T) {
	page := NewPage[int](nil, 0)
	if page.Data == nil {
		t.Fatalf("expected empty slice")
	}
}
