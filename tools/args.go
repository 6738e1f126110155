package tools

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/adk/chatmodel"
	"github.com/effective-security/adk/pkg/llmutils"
	"github.com/tidwall/gjson"
)

// Args holds values extracted from the tool call arguments
type Args struct {
	names  []string
	values map[string]any
}

// Extract parses raw JSON arguments and extracts every declared parameter,
// skipping the context parameter.
// Numeric values are coerced to the declared kind, object values are kept
// as json.RawMessage to be decoded by the handler.
func Extract(params []Param, raw string) (Args, error) {
	a := Args{values: map[string]any{}}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = "{}"
	}
	if !gjson.Valid(raw) {
		cleaned := string(llmutils.CleanJSON([]byte(raw)))
		if !gjson.Valid(cleaned) {
			err := chatmodel.NewInvalidInputError("unable to parse arguments: %s", raw)
			return a, errors.Mark(err, chatmodel.ErrSerialization)
		}
		raw = cleaned
	}
	parsed := gjson.Parse(raw)
	if !parsed.IsObject() {
		return a, chatmodel.NewInvalidInputError("arguments must be a JSON object")
	}
	fields := parsed.Map()

	for _, p := range params {
		if p.IsContext() {
			continue
		}
		v, err := extractValue(p.Kind, fields[p.Name])
		if err != nil {
			return a, chatmodel.WrapInvalidInputError(err, "missing or invalid parameter: %s", p.Name)
		}
		a.names = append(a.names, p.Name)
		a.values[p.Name] = v
	}
	return a, nil
}

func extractValue(k Kind, r gjson.Result) (any, error) {
	if !r.Exists() || r.Type == gjson.Null {
		return nil, errors.New("value is missing")
	}

	if k.IsNumber() {
		if r.Type != gjson.Number {
			return nil, errors.Newf("expected number, got %s", r.Type)
		}
		if k.IsInteger() && strings.ContainsAny(r.Raw, ".eE") {
			return nil, errors.Newf("expected integer, got %s", r.Raw)
		}
	}

	switch k {
	case KindInt32:
		n, err := strconv.ParseInt(r.Raw, 10, 64)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		return int32(n), nil
	case KindInt64:
		n, err := strconv.ParseInt(r.Raw, 10, 64)
		return n, errors.WithStack(err)
	case KindUint32, KindUint64:
		if strings.HasPrefix(r.Raw, "-") {
			return nil, errors.Newf("expected unsigned integer, got %s", r.Raw)
		}
		n, err := strconv.ParseUint(r.Raw, 10, 64)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		if k == KindUint32 {
			return uint32(n), nil
		}
		return n, nil
	case KindFloat32:
		return float32(r.Float()), nil
	case KindFloat64:
		return r.Float(), nil
	case KindString:
		if r.Type != gjson.String {
			return nil, errors.Newf("expected string, got %s", r.Type)
		}
		return r.Str, nil
	case KindBool:
		if r.Type != gjson.True && r.Type != gjson.False {
			return nil, errors.Newf("expected boolean, got %s", r.Type)
		}
		return r.Bool(), nil
	default:
		return json.RawMessage(r.Raw), nil
	}
}

// Names returns the extracted parameter names in declaration order
func (a Args) Names() []string {
	return append([]string(nil), a.names...)
}

// Values returns the extracted values in declaration order
func (a Args) Values() []any {
	list := make([]any, 0, len(a.names))
	for _, n := range a.names {
		list = append(list, a.values[n])
	}
	return list
}

// Value returns the extracted value by name
func (a Args) Value(name string) (any, bool) {
	v, ok := a.values[name]
	return v, ok
}

// Int32 returns the value of KindInt32 parameter
func (a Args) Int32(name string) int32 {
	v, _ := a.values[name].(int32)
	return v
}

// Int64 returns the value of KindInt64 parameter
func (a Args) Int64(name string) int64 {
	v, _ := a.values[name].(int64)
	return v
}

// Uint32 returns the value of KindUint32 parameter
func (a Args) Uint32(name string) uint32 {
	v, _ := a.values[name].(uint32)
	return v
}

// Uint64 returns the value of KindUint64 parameter
func (a Args) Uint64(name string) uint64 {
	v, _ := a.values[name].(uint64)
	return v
}

// Float32 returns the value of KindFloat32 parameter
func (a Args) Float32(name string) float32 {
	v, _ := a.values[name].(float32)
	return v
}

// Float64 returns the value of KindFloat64 parameter
func (a Args) Float64(name string) float64 {
	v, _ := a.values[name].(float64)
	return v
}

// String returns the value of KindString parameter
func (a Args) String(name string) string {
	v, _ := a.values[name].(string)
	return v
}

// Bool returns the value of KindBool parameter
func (a Args) Bool(name string) bool {
	v, _ := a.values[name].(bool)
	return v
}

// Decode decodes the value of KindObject parameter into v
func (a Args) Decode(name string, v any) error {
	raw, ok := a.values[name].(json.RawMessage)
	if !ok {
		return chatmodel.NewInvalidInputError("missing or invalid parameter: %s", name)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		err = chatmodel.WrapInvalidInputError(err, "missing or invalid parameter: %s", name)
		return errors.Mark(err, chatmodel.ErrSerialization)
	}
	return nil
}
