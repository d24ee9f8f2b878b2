package repositories

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// OrderedMap is a string to string JSON object that remembers insertion order.
type OrderedMap struct {
	keys   []string
	values map[string]string
}

// NewOrderedMap creates an empty [OrderedMap].
func NewOrderedMap() OrderedMap {
	return OrderedMap{values: map[string]string{}}
}

func (m *OrderedMap) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *OrderedMap) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Set stores value under key. A new key goes to the end; an existing key keeps its position.
func (m *OrderedMap) Set(key, value string) {
	if m.values == nil {
		m.values = map[string]string{}
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Keys returns keys in insertion order.
func (m *OrderedMap) Keys() []string { return slices.Clone(m.keys) }

func (m *OrderedMap) Len() int { return len(m.keys) }

// KeepLast drops the oldest keys until at most n remain.
func (m *OrderedMap) KeepLast(n int) {
	if len(m.keys) <= n {
		return
	}
	drop := len(m.keys) - n
	for _, k := range m.keys[:drop] {
		delete(m.values, k)
	}
	m.keys = slices.Clone(m.keys[drop:])
}

func (m OrderedMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (m *OrderedMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*m = NewOrderedMap()
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}

	out := NewOrderedMap()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected string key, got %v", tok)
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("value for %q: %w", key, err)
		}
		out.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*m = out
	return nil
}
