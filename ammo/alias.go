package ammo

import (
	"slices"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"github.com/fleetmod/escadra/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// aliasTable maps a legacy key to the key that replaced it.
type aliasTable map[string]string

func duplicateKey(alias, name string) error {
	return errors.New(errors.PhaseDecode, errors.KindInvalidData).
		Path(name).
		Detail("both %q and its alias %q are set", name, alias).
		Build()
}

// unmarshalJSONAliased decodes data into target after renaming legacy keys.
// target must not implement json.Unmarshaler itself.
func unmarshalJSONAliased(data []byte, target any, aliases aliasTable) error {
	var fields map[string]jsoniter.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	renamed := false
	for alias, name := range aliases {
		v, ok := fields[alias]
		if !ok {
			continue
		}
		if _, dup := fields[name]; dup {
			return duplicateKey(alias, name)
		}
		fields[name] = v
		delete(fields, alias)
		renamed = true
	}

	if renamed {
		var err error
		if data, err = json.Marshal(fields); err != nil {
			return err
		}
	}
	return json.Unmarshal(data, target)
}

// unmarshalYAMLAliased decodes a mapping node into target after renaming
// legacy keys. The caller's node is not modified.
func unmarshalYAMLAliased(node *yaml.Node, target any, aliases aliasTable) error {
	if node.Kind != yaml.MappingNode {
		return node.Decode(target)
	}

	cp := *node
	cp.Content = slices.Clone(node.Content)
	seen := make(map[string]bool, len(cp.Content)/2)
	for i := 0; i+1 < len(cp.Content); i += 2 {
		seen[cp.Content[i].Value] = true
	}

	for i := 0; i+1 < len(cp.Content); i += 2 {
		key := cp.Content[i]
		name, ok := aliases[key.Value]
		if !ok {
			continue
		}
		if seen[name] {
			return duplicateKey(key.Value, name)
		}
		renamed := *key
		renamed.Value = name
		cp.Content[i] = &renamed
	}
	return cp.Decode(target)
}
