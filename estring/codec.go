package estring

import (
	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"github.com/fleetmod/escadra/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// MarshalJSON encodes the content as a JSON string.
func (s String) MarshalJSON() ([]byte, error) {
	v, err := s.Get()
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

// UnmarshalJSON replaces s with a fresh string holding the decoded text.
// JSON null yields the empty string.
func (s *String) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		s.Reset()
		return nil
	}
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return errors.New(errors.PhaseDecode, errors.KindTypeMismatch).
			GoType("estring.String").
			Detail("expected JSON string").
			Cause(err).
			Build()
	}
	return s.replace(v)
}

// MarshalText implements encoding.TextMarshaler.
func (s String) MarshalText() ([]byte, error) {
	v, err := s.Get()
	if err != nil {
		return nil, err
	}
	return []byte(v), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *String) UnmarshalText(text []byte) error {
	var fresh String
	if err := fresh.SetBytes(text); err != nil {
		return err
	}
	*s = fresh
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (s String) MarshalYAML() (any, error) {
	return s.Get()
}

// UnmarshalYAML implements yaml.Unmarshaler. Only scalar nodes are accepted.
func (s *String) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return errors.New(errors.PhaseDecode, errors.KindTypeMismatch).
			GoType("estring.String").
			Detail("expected YAML scalar at line %d", node.Line).
			Build()
	}
	if node.Tag == "!!null" {
		s.Reset()
		return nil
	}
	var v string
	if err := node.Decode(&v); err != nil {
		return err
	}
	return s.replace(v)
}

func (s *String) replace(v string) error {
	var fresh String
	if err := fresh.Set(v); err != nil {
		return err
	}
	*s = fresh
	return nil
}
