package tools

import (
	"context"
	"encoding/json"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/adk/chatmodel"
	"github.com/effective-security/adk/pkg/llmutils"
	"github.com/effective-security/adk/pkg/schema"
	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/tidwall/gjson"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report JSON names of the failed fields
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// StructFunc is the tool logic of a struct-backed tool
type StructFunc[I any] func(ctx context.Context, rc *chatmodel.RunContext, input *I) (string, error)

// StructTool is a Tool whose arguments are described by the I struct.
// The schema is reflected from json and jsonschema tags,
// the input is checked with validate tags.
type StructTool[I any] struct {
	name        string
	description string
	parameters  *jsonschema.Schema
	fn          StructFunc[I]
}

// NewStructTool returns a Tool that decodes the arguments into I
func NewStructTool[I any](name, description string, fn StructFunc[I]) (*StructTool[I], error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, chatmodel.NewConfigurationError("tool %s has no function", name)
	}
	sc, err := schema.ForType(reflect.TypeFor[I]())
	if err != nil {
		return nil, chatmodel.WrapConfigurationError(err, "tool %s", name)
	}
	return &StructTool[I]{
		name:        name,
		description: description,
		parameters:  sc,
		fn:          fn,
	}, nil
}

// Name returns the name of the tool
func (t *StructTool[I]) Name() string {
	return t.name
}

// Description returns the description of the tool
func (t *StructTool[I]) Description() string {
	return t.description
}

// Parameters returns the arguments schema
func (t *StructTool[I]) Parameters() *jsonschema.Schema {
	return t.parameters
}

// Execute decodes and validates the arguments, then calls the tool function
func (t *StructTool[I]) Execute(ctx context.Context, rc *chatmodel.RunContext, args string) (ToolResult, error) {
	input, err := t.Decode(args)
	if err != nil {
		return ToolResult{}, err
	}
	out, err := t.fn(ctx, rc, input)
	if err != nil {
		return ToolResult{}, WrapError(t.name, err)
	}
	return ToolResult{ToolName: t.name, Output: out}, nil
}

// Decode returns the validated input from raw JSON arguments
func (t *StructTool[I]) Decode(args string) (*I, error) {
	cleaned := llmutils.CleanJSON([]byte(args))
	input := new(I)
	if err := json.Unmarshal(cleaned, input); err != nil {
		err = chatmodel.WrapInvalidInputError(err, "unable to parse arguments")
		return nil, errors.Mark(err, chatmodel.ErrSerialization)
	}
	// the schema lists every property as required
	present := gjson.ParseBytes(cleaned).Map()
	for _, key := range schema.Keys(t.parameters) {
		if _, ok := present[key]; !ok {
			return nil, chatmodel.NewInvalidInputError("missing or invalid parameter: %s", key)
		}
	}
	if err := validate.Struct(input); err != nil {
		var verr validator.ValidationErrors
		if errors.As(err, &verr) && len(verr) > 0 {
			return nil, chatmodel.WrapInvalidInputError(err, "missing or invalid parameter: %s", verr[0].Field())
		}
		return nil, chatmodel.WrapInvalidInputError(err, "invalid arguments")
	}
	return input, nil
}
