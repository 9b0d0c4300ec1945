package docstore

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Operator is a comparison applied by a Filter.
type Operator string

const (
	OpEqual            Operator = "=="
	OpNotEqual         Operator = "!="
	OpLess             Operator = "<"
	OpLessEqual        Operator = "<="
	OpGreater          Operator = ">"
	OpGreaterEqual     Operator = ">="
	OpIn               Operator = "in"
	OpNotIn            Operator = "not-in"
	OpArrayContains    Operator = "array-contains"
	OpArrayContainsAny Operator = "array-contains-any"
)

// Filter is a single (field, operator, value) predicate. Filters passed
// together are applied conjunctively.
type Filter struct {
	Field string
	Op    Operator
	Value interface{}
}

// Where builds a Filter.
func Where(field string, op Operator, value interface{}) Filter {
	return Filter{Field: field, Op: op, Value: value}
}

// Validate reports filters with an unknown operator, an empty field, or a
// non-list value where the operator expects a list.
func (f Filter) Validate() error {
	if f.Field == "" {
		return fmt.Errorf("filter has empty field")
	}
	switch f.Op {
	case OpEqual, OpNotEqual, OpLess, OpLessEqual, OpGreater, OpGreaterEqual, OpArrayContains:
		return nil
	case OpIn, OpNotIn, OpArrayContainsAny:
		if _, ok := toList(f.Value); !ok {
			return fmt.Errorf("operator %q on %q requires a list value", f.Op, f.Field)
		}
		return nil
	default:
		return fmt.Errorf("unsupported operator %q", f.Op)
	}
}

func validateFilters(filters []Filter) error {
	for _, f := range filters {
		if err := f.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Matches reports whether doc satisfies every filter.
func Matches(doc Document, filters []Filter) bool {
	for _, f := range filters {
		if !matchOne(doc, f) {
			return false
		}
	}
	return true
}

func matchOne(doc Document, f Filter) bool {
	field, present := doc[f.Field]
	value := jsonValue(f.Value)

	switch f.Op {
	case OpEqual:
		return present && reflect.DeepEqual(field, value)
	case OpNotEqual:
		return present && !reflect.DeepEqual(field, value)
	case OpLess, OpLessEqual, OpGreater, OpGreaterEqual:
		if !present {
			return false
		}
		c, ok := compare(field, value)
		if !ok {
			return false
		}
		switch f.Op {
		case OpLess:
			return c < 0
		case OpLessEqual:
			return c <= 0
		case OpGreater:
			return c > 0
		default:
			return c >= 0
		}
	case OpIn, OpNotIn:
		list, _ := value.([]interface{})
		found := present && containsValue(list, field)
		if f.Op == OpIn {
			return found
		}
		return present && !found
	case OpArrayContains:
		arr, ok := field.([]interface{})
		return ok && containsValue(arr, value)
	case OpArrayContainsAny:
		arr, ok := field.([]interface{})
		if !ok {
			return false
		}
		list, _ := value.([]interface{})
		for _, v := range list {
			if containsValue(arr, v) {
				return true
			}
		}
		return false
	}
	return false
}

func containsValue(list []interface{}, v interface{}) bool {
	for _, item := range list {
		if reflect.DeepEqual(item, v) {
			return true
		}
	}
	return false
}

// compare orders two numbers or two strings.
func compare(a, b interface{}) (int, bool) {
	switch av := a.(type) {
	case float64:
		bv, ok := b.(float64)
		if !ok {
			return 0, false
		}
		switch {
		case av < bv:
			return -1, true
		case av > bv:
			return 1, true
		}
		return 0, true
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		switch {
		case av < bv:
			return -1, true
		case av > bv:
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// jsonValue converts a filter value to the types stored documents use.
func jsonValue(v interface{}) interface{} {
	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return v
	}
	return out
}

// toList converts any slice or array value into []interface{}.
func toList(v interface{}) ([]interface{}, bool) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, false
	}
	out := make([]interface{}, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
