// Package catalog maps SQL table names onto MongoDB collection names.
// In open mode unknown tables pass through unchanged; in strict mode
// only mapped tables resolve.
package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// Catalog is an immutable table-to-collection mapping. Lookups are
// case-insensitive on the table name.
type Catalog struct {
	collections map[string]string
	strict      bool
}

// New builds a catalog from the supplied mapping. With strict set,
// Resolve rejects tables absent from the mapping.
func New(tables map[string]string, strict bool) (*Catalog, error) {
	collections, err := normalizeTableMap(tables)
	if err != nil {
		return nil, fmt.Errorf("normalize table map: %w", err)
	}
	return &Catalog{collections: collections, strict: strict}, nil
}

// Open returns a passthrough catalog that accepts any table name.
func Open() *Catalog {
	c, _ := New(nil, false)
	return c
}

// Resolve maps a table name to its collection. The lookup is
// case-insensitive, but unmapped names pass through with their case
// intact; collection names are case-sensitive on the server.
func (c *Catalog) Resolve(table string) (string, error) {
	name := strings.TrimSpace(table)
	if name == "" {
		return "", fmt.Errorf("catalog: table name cannot be empty")
	}
	if collection, ok := c.collections[strings.ToLower(name)]; ok {
		return collection, nil
	}
	if c.strict {
		return "", &UnknownTableError{Table: table}
	}
	return name, nil
}

// ListTables returns the mapped table names in sorted order.
func (c *Catalog) ListTables() []string {
	tables := make([]string, 0, len(c.collections))
	for table := range c.collections {
		tables = append(tables, table)
	}
	sort.Strings(tables)
	return tables
}

func normalizeTableMap(src map[string]string) (map[string]string, error) {
	dst := make(map[string]string, len(src))
	for name, collection := range src {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			return nil, fmt.Errorf("catalog: table name cannot be empty")
		}
		if _, exists := dst[key]; exists {
			return nil, fmt.Errorf("catalog: duplicate table name %q", key)
		}
		collection = strings.TrimSpace(collection)
		if collection == "" {
			collection = key
		}
		dst[key] = collection
	}
	return dst, nil
}
