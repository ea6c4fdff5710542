package llm

import "fmt"

type Kind int

const (
	KindString Kind = iota
	KindStringList
	KindObjectList
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindStringList:
		return "list of strings"
	case KindObjectList:
		return "list of objects"
	default:
		return "unknown"
	}
}

type Field struct {
	Name     string
	Kind     Kind
	Optional bool
	// Elem describes each element of a KindObjectList field.
	Elem *Schema
}

// Schema is the shape one stage expects from the provider. Fields are checked
// in order, so the first reported error is deterministic.
type Schema struct {
	Fields []Field
	// Assigned lists keys the caller sets itself. Whatever the provider puts
	// there is discarded before decoding.
	Assigned []string
}

func Required(name string, kind Kind) Field {
	return Field{Name: name, Kind: kind}
}

func Optional(name string, kind Kind) Field {
	return Field{Name: name, Kind: kind, Optional: true}
}

func ObjectList(name string, elem Schema) Field {
	return Field{Name: name, Kind: KindObjectList, Elem: &elem}
}

// FieldNames lists the schema's top-level fields in declared order.
func (s Schema) FieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}
	return names
}

// Validate checks value against schema and returns the first violation as a
// *ValidationError. Nothing is repaired or coerced.
func Validate(value any, schema Schema) error {
	return validateObject(value, schema, "$")
}

func validateObject(value any, schema Schema, path string) error {
	obj, ok := value.(map[string]any)
	if !ok {
		return &ValidationError{Path: path, Reason: fmt.Sprintf("expected object, got %s", jsonType(value))}
	}

	for _, field := range schema.Fields {
		v, present := obj[field.Name]
		if !present || (v == nil && field.Optional) {
			if field.Optional {
				continue
			}
			return &ValidationError{MissingField: field.Name, Path: path, Reason: "required field is missing"}
		}
		if err := validateField(v, field, path); err != nil {
			return err
		}
	}
	return nil
}

func validateField(v any, field Field, path string) error {
	mismatch := func(got any) error {
		return &ValidationError{
			MissingField: field.Name,
			Path:         path,
			Reason:       fmt.Sprintf("expected %s, got %s", field.Kind, jsonType(got)),
		}
	}

	switch field.Kind {
	case KindString:
		if _, ok := v.(string); !ok {
			return mismatch(v)
		}
	case KindStringList:
		items, ok := v.([]any)
		if !ok {
			return mismatch(v)
		}
		for i, item := range items {
			if _, ok := item.(string); !ok {
				return &ValidationError{
					MissingField: field.Name,
					Path:         path,
					Reason:       fmt.Sprintf("element %d: expected string, got %s", i, jsonType(item)),
				}
			}
		}
	case KindObjectList:
		items, ok := v.([]any)
		if !ok {
			return mismatch(v)
		}
		if field.Elem == nil {
			return nil
		}
		for i, item := range items {
			if err := validateObject(item, *field.Elem, fmt.Sprintf("%s.%s[%d]", path, field.Name, i)); err != nil {
				return err
			}
		}
	}
	return nil
}

func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "bool"
	case float64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
