package interp

import (
	"github.com/jvcmarcenes/wisp/internal/ast"
	"github.com/jvcmarcenes/wisp/internal/token"
)

// getField implements `head.field`. Objects check their own field cells
// before their attribute tables; primitives go straight to the implicit
// attribute their kind carries (strings have String, lists List, errors
// Error). A method found in an attribute table comes back bound to the
// value it was looked up on.
func (i *Interpreter) getField(head Value, field string, pos token.Position) (Value, error) {
	switch h := head.(type) {
	case *ObjectValue:
		if cell, ok := h.Fields[field]; ok {
			if fn, isFn := cell.V.(*FunctionValue); isFn && fn.HasSelf {
				return fn.Bind(h), nil
			}
			return cell.V, nil
		}
		if m, ok := i.attrMethod(h.Attrs, field); ok {
			return m.Bind(h), nil
		}

	case *AttributeValue:
		if cell, ok := h.Statics[field]; ok {
			return cell.V, nil
		}
		if m, ok := h.Method(field); ok {
			return m, nil
		}

	case *StringValue:
		if m, ok := i.stringAttr.Method(field); ok {
			return m.Bind(h), nil
		}

	case *ListValue:
		if m, ok := i.listAttr.Method(field); ok {
			return m.Bind(h), nil
		}

	case *ErrorValue:
		if m, ok := i.errorAttr.Method(field); ok {
			return m.Bind(h), nil
		}
	}

	return nil, i.runErrorf(pos, "Property '%s' is undefined for %s", field, head.Type())
}

// attrMethod walks an attribute id list in order, searching each
// attribute and its super-attributes for a method. The DAG search is
// iterative with an explicit work list to bound recursion.
func (i *Interpreter) attrMethod(attrs []int, name string) (Callable, bool) {
	work := make([]int, len(attrs))
	copy(work, attrs)
	seen := make(map[int]bool)

	for len(work) > 0 {
		id := work[0]
		work = work[1:]
		if seen[id] {
			continue
		}
		seen[id] = true

		attr, ok := i.lookupAttribute(id)
		if !ok {
			continue
		}
		if m, found := attr.Method(name); found {
			return m, true
		}
		work = append(work, attr.Supers...)
	}
	return nil, false
}

// hasAttr reports whether the value carries attr (directly or through a
// super-attribute).
func (i *Interpreter) hasAttr(v Value, target int) bool {
	var attrs []int
	switch val := v.(type) {
	case *ObjectValue:
		attrs = val.Attrs
	case *StringValue:
		attrs = []int{i.stringAttr.Id}
	case *ListValue:
		attrs = []int{i.listAttr.Id}
	case *ErrorValue:
		attrs = []int{i.errorAttr.Id}
	default:
		return false
	}

	work := make([]int, len(attrs))
	copy(work, attrs)
	seen := make(map[int]bool)
	for len(work) > 0 {
		id := work[0]
		work = work[1:]
		if id == target {
			return true
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		if attr, ok := i.lookupAttribute(id); ok {
			work = append(work, attr.Supers...)
		}
	}
	return false
}

// lookupAttribute resolves an attribute id to its value through the
// environment (attribute declarations live at their resolved ids, the
// built-ins at their global ids).
func (i *Interpreter) lookupAttribute(id int) (*AttributeValue, bool) {
	v, ok := i.env.Lookup(id)
	if !ok {
		return nil, false
	}
	attr, ok := v.(*AttributeValue)
	return attr, ok
}

// makeAttribute evaluates an attr declaration into an attribute value:
// methods become functions capturing the current environment, static
// fields are evaluated now, and instance fields are kept as templates
// evaluated at each construction.
func (i *Interpreter) makeAttribute(decl *ast.AttrDeclaration) (*AttributeValue, error) {
	attr := &AttributeValue{
		Name:    decl.Name.Name,
		Id:      *decl.Name.Id,
		Methods: make(map[string]Callable, len(decl.Methods)),
		Statics: make(map[string]*Cell),
	}

	for _, m := range decl.Methods {
		attr.Methods[m.Name.Name] = i.makeFunction(m.Name.Name, m.Lambda)
	}

	for _, f := range decl.Fields {
		if f.Static {
			var v Value = None
			if f.Expr != nil {
				var err error
				v, err = i.evalExpr(f.Expr)
				if err != nil {
					return nil, err
				}
			}
			attr.Statics[f.Name.Name] = NewCell(v)
			continue
		}
		expr := f.Expr
		name := f.Name.Name
		attr.instanceFields = append(attr.instanceFields, fieldTemplate{
			name: name,
			expr: func(i *Interpreter) (Value, error) {
				if expr == nil {
					return None, nil
				}
				return i.evalExpr(expr)
			},
		})
	}

	for _, super := range decl.Attributes {
		attr.Supers = append(attr.Supers, *super.Id)
	}

	return attr, nil
}

// constructObject instantiates an attribute: a fresh object whose fields
// come from the attribute's instance-field templates and whose attribute
// set is the attribute itself. An init method, if declared, runs bound to
// the new object with the call's arguments (its arity is checked);
// without one, the call takes no arguments.
func (i *Interpreter) constructObject(attr *AttributeValue, args []Value, pos token.Position) (Value, error) {
	fields := make(map[string]*Cell, len(attr.instanceFields))
	for _, tpl := range attr.instanceFields {
		v, err := tpl.expr(i)
		if err != nil {
			return nil, err
		}
		fields[tpl.name] = NewCell(v)
	}

	obj := NewObject(fields, []int{attr.Id})

	if init, ok := i.attrMethod(obj.Attrs, "init"); ok {
		bound := init.Bind(obj)
		if err := bound.CheckArity(len(args)); err != nil {
			return nil, i.runErrorf(pos, "%s", err)
		}
		if _, err := bound.Call(i, pos, args); err != nil {
			return nil, err
		}
	} else if len(args) != 0 {
		return nil, i.runErrorf(pos, "Expected 0 arguments, but got %d", len(args))
	}

	return obj, nil
}
