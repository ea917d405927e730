package models

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

type BindingState string

const (
	BindingStateSuccess BindingState = "success"
	BindingStatePending BindingState = "pending"
	BindingStateError   BindingState = "error"
)

// DataBinding is the host supplied object the widget renders from.
type DataBinding struct {
	State    BindingState `json:"state"`
	Metadata Metadata     `json:"metadata"`
	Data     []DataRow    `json:"data"`
}

func (b *DataBinding) Ready() bool {
	return b != nil && b.State == BindingStateSuccess
}

type Metadata struct {
	Dimensions FieldMap `json:"dimensions"`
	Measures   FieldMap `json:"mainStructureMembers"`
}

// FieldFragment is the descriptor body stored under a field key in the metadata.
type FieldFragment struct {
	Description string
	ID          string
	Attributes  map[string]any
}

func (f *FieldFragment) UnmarshalJSON(data []byte) error {
	var attrs map[string]any
	if err := json.Unmarshal(data, &attrs); err != nil {
		return err
	}
	if s, ok := attrs["description"].(string); ok {
		f.Description = s
	}
	if s, ok := attrs["id"].(string); ok {
		f.ID = s
	}
	f.Attributes = attrs
	return nil
}

func (f FieldFragment) MarshalJSON() ([]byte, error) {
	attrs := make(map[string]any, len(f.Attributes)+2)
	for k, v := range f.Attributes {
		attrs[k] = v
	}
	if f.Description != "" {
		attrs["description"] = f.Description
	}
	if f.ID != "" {
		attrs["id"] = f.ID
	}
	return json.Marshal(attrs)
}

// FieldMap is a field-key to fragment mapping that remembers insertion order.
// Decoding from JSON keeps document order; a repeated key keeps its first
// position and takes the last value.
type FieldMap struct {
	keys   []string
	values map[string]FieldFragment
}

func (m *FieldMap) Set(key string, fragment FieldFragment) {
	if m.values == nil {
		m.values = make(map[string]FieldFragment)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = fragment
}

func (m FieldMap) Len() int {
	return len(m.keys)
}

// Each visits entries in insertion order until fn returns false.
func (m FieldMap) Each(fn func(key string, fragment FieldFragment) bool) {
	for _, k := range m.keys {
		if !fn(k, m.values[k]) {
			return
		}
	}
}

func (m *FieldMap) UnmarshalJSON(data []byte) error {
	m.keys = nil
	m.values = nil

	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid field mapping json")
	}
	result := gjson.ParseBytes(data)
	if result.Type == gjson.Null {
		return nil
	}
	if !result.IsObject() {
		return fmt.Errorf("field mapping must be an object, got %s", result.Type)
	}

	var decodeErr error
	result.ForEach(func(key, value gjson.Result) bool {
		var fragment FieldFragment
		if value.IsObject() {
			if err := json.Unmarshal([]byte(value.Raw), &fragment); err != nil {
				decodeErr = fmt.Errorf("field %q: %w", key.String(), err)
				return false
			}
		}
		m.Set(key.String(), fragment)
		return true
	})
	return decodeErr
}

func (m FieldMap) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, k := range m.keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf = append(buf, key...)
		buf = append(buf, ':')
		buf = append(buf, value...)
	}
	return append(buf, '}'), nil
}

// FieldDescriptor is one normalized dimension or measure.
type FieldDescriptor struct {
	Key        string         `json:"key"`
	Label      string         `json:"label"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// CellValue is the value object a data row holds per field key.
type CellValue struct {
	Label     string `json:"label,omitempty"`
	Formatted string `json:"formatted,omitempty"`
	Raw       any    `json:"raw,omitempty"`
}

type DataRow map[string]CellValue

// WidgetState is the persisted part of a widget. The credential is never part of it.
type WidgetState struct {
	Width   int          `json:"width"`
	Height  int          `json:"height"`
	Binding *DataBinding `json:"binding,omitempty"`
}
