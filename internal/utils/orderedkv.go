package utils

import (
	"bytes"
	"encoding/json"
)

// OrderedMap marshals to a JSON object whose keys keep insertion order.
type OrderedMap[T any] struct {
	keys   []string
	values map[string]T
}

func NewOrderedMap[T any](size int) *OrderedMap[T] {
	return &OrderedMap[T]{
		keys:   make([]string, 0, size),
		values: make(map[string]T, size),
	}
}

// Set stores value under key. A key set twice keeps its first position.
func (m *OrderedMap[T]) Set(key string, value T) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

func (m *OrderedMap[T]) Get(key string) (T, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *OrderedMap[T]) Keys() []string {
	return append([]string(nil), m.keys...)
}

func (m *OrderedMap[T]) Len() int {
	return len(m.keys)
}

func (m *OrderedMap[T]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		keyBytes, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valueBytes, err := json.Marshal(m.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(valueBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
