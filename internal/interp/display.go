package interp

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jvcmarcenes/wisp/internal/token"
)

// display renders a value the way the program sees it: templates,
// write/writeline and string concatenation all go through here. Objects
// may run user code via their to_string method.
func (i *Interpreter) display(v Value, pos token.Position) (string, error) {
	switch val := v.(type) {
	case *NoneValue:
		return "none", nil
	case *NumberValue:
		return val.String(), nil
	case *BoolValue:
		return val.String(), nil
	case *StringValue:
		return val.Value, nil

	case *ListValue:
		parts := make([]string, len(val.Elements))
		for idx, el := range val.Elements {
			s, err := i.display(el, pos)
			if err != nil {
				return "", err
			}
			parts[idx] = s
		}
		return "[" + strings.Join(parts, ", ") + "]", nil

	case *ObjectValue:
		if s, handled, err := i.objectMethodCall(val, "to_string", nil, pos); handled || err != nil {
			if err != nil {
				return "", err
			}
			return i.display(s, pos)
		}
		return "<object>", nil

	case *ErrorValue:
		inner, err := i.display(val.Inner, pos)
		if err != nil {
			return "", err
		}
		return "error: " + inner, nil

	case *AttributeValue:
		return val.Name, nil

	case *FunctionValue, *NativeFn:
		return "<function>", nil
	}

	return fmt.Sprintf("<%s>", v.Type()), nil
}

// inspect is the debug rendering used by the debug native: like display
// but it never runs user code, and strings keep their quotes.
func (i *Interpreter) inspect(v Value) string {
	switch val := v.(type) {
	case *NoneValue:
		return "none"
	case *NumberValue:
		return val.String()
	case *BoolValue:
		return val.String()
	case *StringValue:
		return fmt.Sprintf("%q", val.Value)

	case *ListValue:
		parts := make([]string, len(val.Elements))
		for idx, el := range val.Elements {
			parts[idx] = i.inspect(el)
		}
		return "[" + strings.Join(parts, ", ") + "]"

	case *ObjectValue:
		names := make([]string, 0, len(val.Fields))
		for name := range val.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, len(names))
		for idx, name := range names {
			parts[idx] = name + " = " + i.inspect(val.Fields[name].V)
		}
		return "{ " + strings.Join(parts, ", ") + " }"

	case *ErrorValue:
		return "error(" + i.inspect(val.Inner) + ")"

	case *AttributeValue:
		return "attr " + val.Name

	case *FunctionValue:
		if val.Name != "" {
			return "<fn " + val.Name + ">"
		}
		return "<fn>"
	case *NativeFn:
		return "<native fn " + val.Name + ">"
	}

	return fmt.Sprintf("<%s>", v.Type())
}
