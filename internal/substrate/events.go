package substrate

import (
	"fmt"
	"reflect"
	"strings"
)

// Event names inspected after inclusion.
const (
	eventSuccess = "System.ExtrinsicSuccess"
	eventFailed  = "System.ExtrinsicFailed"
)

// moduleErrorIndex digs the pallet and error index out of the decoded
// fields of a System.ExtrinsicFailed event. The registry decoder hands back
// nested field lists whose concrete types vary by runtime, so the walk is
// reflective: it looks for a node carrying both an "index" and an "error"
// field.
func moduleErrorIndex(fields any) (pallet, index uint8, ok bool) {
	var walk func(v reflect.Value, depth int) bool
	walk = func(v reflect.Value, depth int) bool {
		if depth > 16 || !v.IsValid() {
			return false
		}
		for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
			if v.IsNil() {
				return false
			}
			v = v.Elem()
		}
		named := namedChildren(v)
		if idx, hasIdx := named["index"]; hasIdx {
			if errv, hasErr := named["error"]; hasErr {
				p, ok1 := firstUint(idx)
				e, ok2 := firstUint(errv)
				if ok1 && ok2 {
					pallet, index = uint8(p), uint8(e)
					return true
				}
			}
		}
		switch v.Kind() {
		case reflect.Slice, reflect.Array:
			for i := 0; i < v.Len(); i++ {
				if walk(v.Index(i), depth+1) {
					return true
				}
			}
		case reflect.Map:
			iter := v.MapRange()
			for iter.Next() {
				if walk(iter.Value(), depth+1) {
					return true
				}
			}
		case reflect.Struct:
			for i := 0; i < v.NumField(); i++ {
				if v.Type().Field(i).IsExported() && walk(v.Field(i), depth+1) {
					return true
				}
			}
		}
		return false
	}
	ok = walk(reflect.ValueOf(fields), 0)
	return pallet, index, ok
}

// namedChildren returns the named children of v: map entries keyed by
// string, or list elements that are structs with Name and Value fields.
func namedChildren(v reflect.Value) map[string]reflect.Value {
	out := map[string]reflect.Value{}
	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return out
		}
		iter := v.MapRange()
		for iter.Next() {
			out[strings.ToLower(iter.Key().String())] = iter.Value()
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			e := v.Index(i)
			for e.Kind() == reflect.Pointer || e.Kind() == reflect.Interface {
				if e.IsNil() {
					break
				}
				e = e.Elem()
			}
			if e.Kind() != reflect.Struct {
				continue
			}
			name, value := e.FieldByName("Name"), e.FieldByName("Value")
			if name.IsValid() && name.Kind() == reflect.String && value.IsValid() {
				out[strings.ToLower(name.String())] = value
			}
		}
	}
	return out
}

// firstUint reads an unsigned integer from v, or from the first element
// when v is a byte array such as the 4-byte module error.
func firstUint(v reflect.Value) (uint64, bool) {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return 0, false
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if v.Int() < 0 {
			return 0, false
		}
		return uint64(v.Int()), true
	case reflect.Slice, reflect.Array:
		if v.Len() == 0 {
			return 0, false
		}
		return firstUint(v.Index(0))
	}
	return 0, false
}

// describeFields renders event fields for errors that are not module
// errors (BadOrigin, Other, ...).
func describeFields(fields any) string {
	s := fmt.Sprintf("%+v", fields)
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return "extrinsic failed: " + s
}
