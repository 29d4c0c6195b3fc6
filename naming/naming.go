// Package naming converts Go-side identifiers (struct entity names, result
// field names) into database identifiers and back-facing result keys.
// Strategies are fixed at configuration time and consulted by the template
// engine (default table names) and the result handler (result map keys).
package naming

import (
	"strings"
	"unicode"

	pluralizer "github.com/gertd/go-pluralize"
)

// pluralizeClient is a singleton for consistent pluralization behavior.
var pluralizeClient = pluralizer.NewClient()

// Strategy combines column and table naming.
type Strategy interface {
	ColumnStrategy
	TableStrategy
}

// ColumnStrategy converts a field or column identifier to its mapped form.
type ColumnStrategy interface {
	ColumnName(fieldName string) string
}

// TableStrategy converts an entity name to a table name.
type TableStrategy interface {
	TableName(entityName string) string
}

// Case selects the identifier case convention.
type Case int

const (
	SnakeCase  Case = iota // user_id, blog_post
	CamelCase              // userId, blogPost
	PascalCase             // UserId, BlogPost
)

func (c Case) apply(name string) string {
	switch c {
	case CamelCase:
		return toCamelCase(name)
	case PascalCase:
		return toPascalCase(name)
	default:
		return toSnakeCase(name)
	}
}

type strategy struct {
	columnCase Case
	tableCase  Case
	plural     bool
}

// New creates a strategy with the given conventions. Plural table names are
// produced with a shared pluralizer so "Person" maps to "people".
func New(columnCase, tableCase Case, pluralTables bool) Strategy {
	return &strategy{columnCase: columnCase, tableCase: tableCase, plural: pluralTables}
}

// Default returns the snake_case strategy with plural table names.
func Default() Strategy {
	return New(SnakeCase, SnakeCase, true)
}

func (s *strategy) ColumnName(fieldName string) string {
	return s.columnCase.apply(fieldName)
}

func (s *strategy) TableName(entityName string) string {
	name := s.tableCase.apply(entityName)
	if s.plural {
		return pluralizeClient.Plural(name)
	}
	return name
}

// =========================================================================
// Conversion functions
// =========================================================================

// commonAcronyms short-circuits snake conversion for identifiers that do not
// split on case boundaries the way ordinary words do.
var commonAcronyms = map[string]string{
	"ID":   "id",
	"UUID": "uuid",
	"URL":  "url",
	"HTTP": "http",
	"API":  "api",
	"JSON": "json",
	"XML":  "xml",
	"SQL":  "sql",
}

// toSnakeCase converts any naming convention to snake_case, handling
// acronym runs (HTTPServer -> http_server) and digits (OAuth2Token).
func toSnakeCase(name string) string {
	if name == "" {
		return ""
	}
	if s, ok := commonAcronyms[name]; ok {
		return s
	}
	if strings.Contains(name, "_") && !hasUpperCase(name) {
		return strings.ToLower(name)
	}

	var result strings.Builder
	result.Grow(len(name) + 8)
	runes := []rune(name)

	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			// aB -> a_b, a1B -> a1_b, ABc -> a_bc
			if unicode.IsLower(prev) || unicode.IsDigit(prev) {
				result.WriteByte('_')
			} else if unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
				result.WriteByte('_')
			}
		}
		result.WriteRune(unicode.ToLower(r))
	}
	return result.String()
}

// toCamelCase converts any naming convention to camelCase.
func toCamelCase(name string) string {
	if name == "" {
		return ""
	}
	parts := strings.Split(toSnakeCase(name), "_")
	var result strings.Builder
	result.Grow(len(name))
	for i, part := range parts {
		if part == "" {
			continue
		}
		if i == 0 {
			result.WriteString(part)
			continue
		}
		result.WriteString(strings.ToUpper(part[:1]))
		result.WriteString(part[1:])
	}
	return result.String()
}

// toPascalCase converts any naming convention to PascalCase.
func toPascalCase(name string) string {
	if name == "" {
		return ""
	}
	parts := strings.Split(toSnakeCase(name), "_")
	var result strings.Builder
	result.Grow(len(name))
	for _, part := range parts {
		if part == "" {
			continue
		}
		result.WriteString(strings.ToUpper(part[:1]))
		result.WriteString(part[1:])
	}
	return result.String()
}

func hasUpperCase(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}
