package models

import (
	"stashbin/config"
	"strings"
)

// FallbackSortOrder is used when neither the album nor the global
// default specify a valid order
const FallbackSortOrder = "id desc"

// Allowed sort fields and the columns they map to
var sortOrderFields = map[string]string{
	"createdAt": "created_at",
	"name":      "name",
	"size":      "size",
}

// ParseSortOrder turns a "field:direction" string into an ORDER BY clause.
// Returns false for anything not on the allow-lists.
func ParseSortOrder(order string) (string, bool) {
	if order == "" {
		return "", false
	}
	field := order
	direction := "asc"
	if i := strings.IndexByte(order, ':'); i >= 0 {
		field = order[:i]
		direction = strings.ToLower(order[i+1:])
	}
	column, ok := sortOrderFields[field]
	if !ok {
		return "", false
	}
	if direction != "asc" && direction != "desc" {
		return "", false
	}
	return column + " " + direction, true
}

// ResolveSortOrder returns the effective ORDER BY clause for an album's
// files: the album's own setting wins, then the global default, then
// FallbackSortOrder. Malformed settings are skipped, never an error.
func ResolveSortOrder(albumOrder string) string {
	if clause, ok := ParseSortOrder(albumOrder); ok {
		return clause
	}
	if clause, ok := ParseSortOrder(config.DEFAULT_SORT_ORDER); ok {
		return clause
	}
	return FallbackSortOrder
}
