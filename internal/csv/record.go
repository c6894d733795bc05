package csv

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Record maps column names to cell values. Lookup is by name; iteration
// follows the order in which the columns appeared in the header row.
type Record struct {
	keys   []string
	values map[string]string
}

func newRecord(size int) Record {
	return Record{
		keys:   make([]string, 0, size),
		values: make(map[string]string, size),
	}
}

// set stores value under key. A repeated key keeps its first position and
// takes the latest value.
func (r *Record) set(key, value string) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value stored for key and whether the column exists.
func (r Record) Get(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Value returns the value for key, or "" when the column does not exist.
func (r Record) Value(key string) string {
	return r.values[key]
}

func (r Record) Len() int {
	return len(r.keys)
}

// Keys returns the column names in header order.
func (r Record) Keys() []string {
	keys := make([]string, len(r.keys))
	copy(keys, r.keys)
	return keys
}

// Values returns the cell values in header order.
func (r Record) Values() []string {
	values := make([]string, len(r.keys))
	for i, k := range r.keys {
		values[i] = r.values[k]
	}
	return values
}

// Map returns a copy of the record as a plain map.
func (r Record) Map() map[string]string {
	m := make(map[string]string, len(r.values))
	for k, v := range r.values {
		m[k] = v
	}
	return m
}

// Equal reports whether both records hold the same columns, in the same
// order, with the same values.
func (r Record) Equal(other Record) bool {
	if len(r.keys) != len(other.keys) {
		return false
	}
	for i, k := range r.keys {
		if other.keys[i] != k || other.values[k] != r.values[k] {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the record as an object whose keys follow header order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML encodes the record as a mapping whose keys follow header order.
func (r Record) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range r.keys {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: r.values[k]},
		)
	}
	return node, nil
}
