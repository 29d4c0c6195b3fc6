package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnakeCaseConversion(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"UserID", "user_id"},
		{"FirstName", "first_name"},
		{"HTTPServer", "http_server"},
		{"OAuth2Token", "o_auth2_token"},
		{"ID", "id"},
		{"already_snake", "already_snake"},
		{"", ""},
	}
	s := Default()
	for _, tt := range tests {
		assert.Equal(t, tt.want, s.ColumnName(tt.in), "ColumnName(%q)", tt.in)
	}
}

func TestCamelAndPascalColumns(t *testing.T) {
	camel := New(CamelCase, SnakeCase, true)
	pascal := New(PascalCase, SnakeCase, true)

	assert.Equal(t, "firstName", camel.ColumnName("first_name"))
	assert.Equal(t, "FirstName", pascal.ColumnName("first_name"))
	assert.Equal(t, "userId", camel.ColumnName("UserID"))
}

func TestTableNamePluralization(t *testing.T) {
	s := Default()
	assert.Equal(t, "users", s.TableName("User"))
	assert.Equal(t, "blog_posts", s.TableName("BlogPost"))
	assert.Equal(t, "people", s.TableName("Person"))

	singular := New(SnakeCase, SnakeCase, false)
	assert.Equal(t, "user", singular.TableName("User"))
}
