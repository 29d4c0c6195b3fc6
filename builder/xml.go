// Package builder loads mapper sources into mapped statements. A mapper is
// an XML document with a namespace and one element per statement:
//
//	<mapper namespace="user">
//	  <select id="findById" entity="UserAccount">
//	    SELECT id, name FROM ${table} WHERE id = #{id}
//	  </select>
//	  <insert id="create" keyGenerator="uuid" keyProperty="id">
//	    INSERT INTO ${table} (id, name) VALUES (#{id}, #{name})
//	  </insert>
//	</mapper>
//
// The element name is the command type; statement IDs are qualified with the
// namespace, so the select above registers as "user.findById".
package builder

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Konsultn-Engineering/sqlbind/keygen"
	"github.com/Konsultn-Engineering/sqlbind/mapping"
)

type xmlMapper struct {
	XMLName    xml.Name       `xml:"mapper"`
	Namespace  string         `xml:"namespace,attr"`
	Statements []xmlStatement `xml:",any"`
}

type xmlStatement struct {
	XMLName      xml.Name
	ID           string `xml:"id,attr"`
	Entity       string `xml:"entity,attr"`
	KeyGenerator string `xml:"keyGenerator,attr"`
	KeyProperty  string `xml:"keyProperty,attr"`
	Timeout      string `xml:"timeout,attr"`
	SQL          string `xml:",chardata"`
}

// ParseMapper reads one mapper document. resource names the source for
// diagnostics (usually the file path).
func ParseMapper(r io.Reader, resource string) ([]*mapping.MappedStatement, error) {
	var doc xmlMapper
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("builder: parse %s: %w", resource, err)
	}
	if doc.Namespace == "" {
		return nil, fmt.Errorf("builder: %s: mapper namespace is required", resource)
	}

	out := make([]*mapping.MappedStatement, 0, len(doc.Statements))
	seen := make(map[string]struct{}, len(doc.Statements))
	for _, raw := range doc.Statements {
		ms, err := buildStatement(doc.Namespace, resource, raw)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[ms.ID]; dup {
			return nil, fmt.Errorf("builder: %s: duplicate statement id %q", resource, ms.ID)
		}
		seen[ms.ID] = struct{}{}
		out = append(out, ms)
	}
	return out, nil
}

// LoadMapperFile reads one mapper file from disk.
func LoadMapperFile(path string) ([]*mapping.MappedStatement, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("builder: open mapper: %w", err)
	}
	defer f.Close()
	return ParseMapper(f, path)
}

func buildStatement(namespace, resource string, raw xmlStatement) (*mapping.MappedStatement, error) {
	command, err := mapping.CommandTypeOf(raw.XMLName.Local)
	if err != nil {
		return nil, fmt.Errorf("builder: %s: %w", resource, err)
	}
	if raw.ID == "" {
		return nil, fmt.Errorf("builder: %s: %s statement without id", resource, raw.XMLName.Local)
	}

	sqlText := strings.TrimSpace(raw.SQL)
	if sqlText == "" {
		return nil, fmt.Errorf("builder: %s: statement %q has no SQL", resource, raw.ID)
	}

	gen, err := keygen.ForName(raw.KeyGenerator)
	if err != nil {
		return nil, fmt.Errorf("builder: %s: statement %q: %w", resource, raw.ID, err)
	}
	if raw.KeyGenerator != "" && raw.KeyGenerator != "none" {
		if command != mapping.CommandInsert {
			return nil, fmt.Errorf("builder: %s: statement %q: key generation only applies to inserts", resource, raw.ID)
		}
		if raw.KeyProperty == "" {
			return nil, fmt.Errorf("builder: %s: statement %q: keyGenerator requires keyProperty", resource, raw.ID)
		}
	}

	var timeout time.Duration
	if raw.Timeout != "" {
		timeout, err = time.ParseDuration(raw.Timeout)
		if err != nil {
			return nil, fmt.Errorf("builder: %s: statement %q: bad timeout: %w", resource, raw.ID, err)
		}
	}

	return &mapping.MappedStatement{
		ID:           namespace + "." + raw.ID,
		Resource:     resource,
		Command:      command,
		SQL:          sqlText,
		Entity:       raw.Entity,
		KeyGenerator: gen,
		KeyProperty:  raw.KeyProperty,
		Timeout:      timeout,
	}, nil
}
