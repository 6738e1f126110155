// Package schema builds JSON Schema objects describing tool parameters,
// either from a declared property table or by reflecting a Go struct.
package schema

import (
	"encoding/json"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// JSON Schema primitive types used in tool parameters
const (
	TypeObject  = "object"
	TypeNumber  = "number"
	TypeString  = "string"
	TypeBoolean = "boolean"
	TypeArray   = "array"
)

// Property describes a single parameter of an object schema
type Property struct {
	Name        string
	Type        string
	Description string
}

var (
	cache   = make(map[reflect.Type]*jsonschema.Schema)
	cacheMu sync.RWMutex
)

// Object returns an object schema with the properties in the given order.
// Every property is required.
func Object(props ...Property) *jsonschema.Schema {
	s := &jsonschema.Schema{
		Type:       TypeObject,
		Properties: jsonschema.NewProperties(),
		Required:   make([]string, 0, len(props)),
	}
	for _, p := range props {
		s.Properties.Set(p.Name, &jsonschema.Schema{
			Type:        p.Type,
			Description: p.Description,
		})
		s.Required = append(s.Required, p.Name)
	}
	return s
}

// Empty returns an object schema without properties
func Empty() *jsonschema.Schema {
	return Object()
}

// ForType returns the parameters schema of the struct type.
// Nested definitions are inlined and every top level property is required.
// The result is cached per type and must not be modified by the caller.
func ForType(t reflect.Type) (*jsonschema.Schema, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, errors.Errorf("unsupported type for parameters: %s", t.Kind())
	}

	cacheMu.RLock()
	s, ok := cache[t]
	cacheMu.RUnlock()
	if ok {
		return s, nil
	}

	s, err := toParameters(reflectType(t))
	if err != nil {
		return nil, errors.WithMessagef(err, "unable to build schema for %s", t.Name())
	}

	cacheMu.Lock()
	cache[t] = s
	cacheMu.Unlock()
	return s, nil
}

func toParameters(raw *jsonschema.Schema) (*jsonschema.Schema, error) {
	refID := strings.TrimPrefix(raw.Ref, "#/$defs/")

	defs := make(map[string]*jsonschema.Schema)
	root := raw
	for name, def := range raw.Definitions {
		if name == refID {
			root = def
		} else {
			defs[name] = def
		}
	}

	res := &jsonschema.Schema{
		Type:        TypeObject,
		Description: root.Description,
		Properties:  root.Properties,
	}
	if res.Properties == nil {
		res.Properties = jsonschema.NewProperties()
	}
	if err := resolveRefs(res.Properties, defs); err != nil {
		return nil, err
	}
	res.Required = Keys(res)
	return res, nil
}

func resolveRefs(props *orderedmap.OrderedMap[string, *jsonschema.Schema], defs map[string]*jsonschema.Schema) error {
	for pair := props.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.Ref != "" {
			def, err := lookupDef(pair.Value.Ref, defs)
			if err != nil {
				return errors.WithMessagef(err, "property %s", pair.Key)
			}
			pair.Value = def
		}
		child := pair.Value
		if child.Properties != nil {
			if err := resolveRefs(child.Properties, defs); err != nil {
				return err
			}
		}
		if child.Items != nil && child.Items.Ref != "" {
			def, err := lookupDef(child.Items.Ref, defs)
			if err != nil {
				return errors.WithMessagef(err, "items of %s", pair.Key)
			}
			child.Items = def
		}
	}
	return nil
}

func lookupDef(ref string, defs map[string]*jsonschema.Schema) (*jsonschema.Schema, error) {
	name := strings.TrimPrefix(ref, "#/$defs/")
	if def, ok := defs[name]; ok {
		return def, nil
	}
	return nil, errors.Errorf("definition not found: %s", ref)
}

func reflectType(t reflect.Type) *jsonschema.Schema {
	r := new(jsonschema.Reflector)
	r.ExpandedStruct = true
	r.DoNotReference = true
	r.AllowAdditionalProperties = true

	// structs with the same name in different packages must not share a definition
	r.Namer = func(t reflect.Type) string {
		name := t.Name()
		if t.Kind() == reflect.Struct {
			fullname := t.PkgPath() + "/" + t.Name()
			name = t.Name() + "@" + strconv.FormatUint(xxhash.Sum64String(fullname), 10)
		}
		return name
	}

	return r.ReflectFromType(t)
}

// Keys returns the property names in declaration order
func Keys(s *jsonschema.Schema) []string {
	keys := []string{}
	if s == nil || s.Properties == nil {
		return keys
	}
	for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Validate returns an error if s is not an object schema
// whose required list equals the set of its properties
func Validate(s *jsonschema.Schema) error {
	if s == nil {
		return errors.New("schema is nil")
	}
	if s.Type != TypeObject {
		return errors.Errorf("expected object schema, got %q", s.Type)
	}
	keys := Keys(s)
	req := slices.Clone(s.Required)
	slices.Sort(keys)
	slices.Sort(req)
	if !slices.Equal(keys, req) {
		return errors.Errorf("required %v does not match properties %v", req, keys)
	}
	return nil
}

// ToMap returns the schema as a generic map, as expected by provider SDKs.
// The result always has "properties" and "required" keys.
func ToMap(s *jsonschema.Schema) (map[string]any, error) {
	if s == nil {
		s = Empty()
	}
	js, err := json.Marshal(s)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	m := map[string]any{}
	if err = json.Unmarshal(js, &m); err != nil {
		return nil, errors.WithStack(err)
	}
	if _, ok := m["type"]; !ok {
		m["type"] = TypeObject
	}
	if _, ok := m["properties"]; !ok {
		m["properties"] = map[string]any{}
	}
	if _, ok := m["required"]; !ok {
		m["required"] = []any{}
	}
	return m, nil
}
