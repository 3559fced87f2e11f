package models

import (
	"stashbin/config"
	"testing"
)

func TestParseSortOrder(t *testing.T) {
	tests := []struct {
		name  string
		order string
		want  string
		ok    bool
	}{
		{"created desc", "createdAt:desc", "created_at desc", true},
		{"created asc", "createdAt:asc", "created_at asc", true},
		{"name", "name:asc", "name asc", true},
		{"size", "size:desc", "size desc", true},
		{"direction defaults to asc", "name", "name asc", true},
		{"direction case-insensitive", "size:DESC", "size desc", true},
		{"unknown field", "uploaderIp:asc", "", false},
		{"field case matters", "createdat:asc", "", false},
		{"bad direction", "name:sideways", "", false},
		{"empty", "", "", false},
		{"garbage", "::::", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseSortOrder(tt.order)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ParseSortOrder(%q) = (%q, %v), want (%q, %v)", tt.order, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestResolveSortOrder(t *testing.T) {
	oldDefault := config.DEFAULT_SORT_ORDER
	defer func() { config.DEFAULT_SORT_ORDER = oldDefault }()

	tests := []struct {
		name          string
		albumOrder    string
		globalDefault string
		want          string
	}{
		{"album setting wins", "name:asc", "createdAt:desc", "name asc"},
		{"falls back to global default", "", "createdAt:desc", "created_at desc"},
		{"malformed album setting falls back", "bogus:desc", "size:asc", "size asc"},
		{"malformed everywhere falls back to id", "bogus", "also bogus", FallbackSortOrder},
		{"empty everywhere falls back to id", "", "", FallbackSortOrder},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config.DEFAULT_SORT_ORDER = tt.globalDefault
			if got := ResolveSortOrder(tt.albumOrder); got != tt.want {
				t.Errorf("ResolveSortOrder(%q) = %q, want %q", tt.albumOrder, got, tt.want)
			}
		})
	}
}
