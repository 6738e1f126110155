// Package calculator provides arithmetic tools: a derived one over float operands
// and a hand-built one over integer operands.
package calculator

import (
	"context"
	"fmt"
	"strconv"

	"github.com/effective-security/adk/chatmodel"
	"github.com/effective-security/adk/pkg/schema"
	"github.com/effective-security/adk/tools"
)

const (
	// ToolName is the name of the float calculator
	ToolName = "calculator"
	// IntegerToolName is the name of the integer calculator
	IntegerToolName = "integer_calculator"
	// DivisionByZero is the output of a division by zero
	DivisionByZero = "Error: Division by zero"

	invalidOperation = "Error: Invalid operation '%s'"
)

// Supported operations
const (
	OpAdd      = "add"
	OpSubtract = "subtract"
	OpMultiply = "multiply"
	OpDivide   = "divide"
)

var params = []tools.Param{
	{Name: tools.ContextParam, Kind: tools.KindRunContext},
	{Name: "a", Kind: tools.KindFloat64, Description: "The first operand"},
	{Name: "b", Kind: tools.KindFloat64, Description: "The second operand"},
	{Name: "operation", Kind: tools.KindString, Description: "One of: add, subtract, multiply, divide"},
}

// New returns the calculator tool.
// Division by zero and unknown operations are reported in the output,
// so the model can recover.
func New() *tools.DerivedTool {
	return tools.MustDefine(ToolName,
		"A simple calculator that can perform basic arithmetic operations (add, subtract, multiply, divide)",
		params,
		func(_ context.Context, _ *chatmodel.RunContext, args tools.Args) (string, error) {
			return Calculate(args.Float64("a"), args.Float64("b"), args.String("operation")), nil
		})
}

// Calculate returns the result of the operation formatted as text
func Calculate(a, b float64, operation string) string {
	var res float64
	switch operation {
	case OpAdd:
		res = a + b
	case OpSubtract:
		res = a - b
	case OpMultiply:
		res = a * b
	case OpDivide:
		if b == 0 {
			return DivisionByZero
		}
		res = a / b
	default:
		return fmt.Sprintf(invalidOperation, operation)
	}
	return strconv.FormatFloat(res, 'f', -1, 64)
}

// NewInteger returns a hand-built calculator over integer operands,
// it reports results as an equation, e.g. "7 / 2 = 3".
func NewInteger() *tools.FunctionTool {
	ps := schema.Object(
		schema.Property{Name: "a", Type: schema.TypeNumber, Description: "The first integer operand"},
		schema.Property{Name: "b", Type: schema.TypeNumber, Description: "The second integer operand"},
		schema.Property{Name: "operation", Type: schema.TypeString, Description: "One of: add, subtract, multiply, divide"},
	)
	return tools.NewFunctionTool(IntegerToolName, "A calculator that performs integer arithmetic", ps,
		func(_ context.Context, _ *chatmodel.RunContext, raw string) (tools.ToolResult, error) {
			args, err := tools.Extract([]tools.Param{
				{Name: "a", Kind: tools.KindInt32},
				{Name: "b", Kind: tools.KindInt32},
				{Name: "operation", Kind: tools.KindString},
			}, raw)
			if err != nil {
				return tools.ToolResult{}, err
			}
			a, b := args.Int32("a"), args.Int32("b")

			var out string
			switch op := args.String("operation"); op {
			case OpAdd:
				out = fmt.Sprintf("%d + %d = %d", a, b, a+b)
			case OpSubtract:
				out = fmt.Sprintf("%d - %d = %d", a, b, a-b)
			case OpMultiply:
				out = fmt.Sprintf("%d * %d = %d", a, b, a*b)
			case OpDivide:
				if b == 0 {
					out = DivisionByZero
				} else {
					out = fmt.Sprintf("%d / %d = %d", a, b, a/b)
				}
			default:
				out = fmt.Sprintf(invalidOperation, op)
			}
			return tools.ToolResult{Output: out}, nil
		})
}
