package specdex

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

const tagKey = "specdex"

// schemaMeta holds parsed struct tag metadata, cached per TypedCollection.
type schemaMeta struct {
	typ reflect.Type

	nameIdx    int
	fields     []fieldMapping
	attributes []fieldMapping
}

type fieldMapping struct {
	structIdx int
	name      string
}

// parseSchema reflects on T and extracts specdex struct tag metadata.
//
//	type Pie struct {
//		Name    string   `specdex:"item_name,name"`
//		Group   string   `specdex:"item_group"`
//		Weight  float64  `specdex:"weight_per_unit"`
//		Flavors []string `specdex:"Flavor,attribute"`
//	}
func parseSchema[T any]() (*schemaMeta, error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		return nil, fmt.Errorf("specdex: type parameter must be a struct")
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("specdex: type %s is not a struct", t)
	}

	meta := &schemaMeta{typ: t, nameIdx: -1}
	for i := range t.NumField() {
		f := t.Field(i)
		tag := f.Tag.Get(tagKey)
		if tag == "" || tag == "-" {
			continue
		}
		if err := applyTag(meta, i, f, tag); err != nil {
			return nil, err
		}
	}
	if meta.nameIdx == -1 {
		return nil, fmt.Errorf("specdex: no field with `specdex:\"...,name\"` tag in %s", t)
	}
	return meta, nil
}

func applyTag(meta *schemaMeta, idx int, f reflect.StructField, tag string) error {
	name, modifier, _ := strings.Cut(tag, ",")
	if name == "" {
		return fmt.Errorf("specdex: empty name in tag on field %s", f.Name)
	}

	switch modifier {
	case "name":
		if meta.nameIdx != -1 {
			return fmt.Errorf("specdex: duplicate name tag on field %s", f.Name)
		}
		if f.Type.Kind() != reflect.String {
			return fmt.Errorf("specdex: name field %s must be a string", f.Name)
		}
		meta.nameIdx = idx
		meta.fields = append(meta.fields, fieldMapping{structIdx: idx, name: name})
	case "attribute":
		k := f.Type.Kind()
		if k != reflect.String && (k != reflect.Slice || f.Type.Elem().Kind() != reflect.String) {
			return fmt.Errorf("specdex: attribute field %s must be a string or []string", f.Name)
		}
		meta.attributes = append(meta.attributes, fieldMapping{structIdx: idx, name: name})
	case "":
		if !scalarKind(f.Type.Kind()) {
			return fmt.Errorf("specdex: field %s has unsupported type %s", f.Name, f.Type)
		}
		meta.fields = append(meta.fields, fieldMapping{structIdx: idx, name: name})
	default:
		return fmt.Errorf("specdex: unknown modifier %q on field %s", modifier, f.Name)
	}
	return nil
}

func scalarKind(k reflect.Kind) bool {
	switch k {
	case reflect.String, reflect.Bool,
		reflect.Float32, reflect.Float64,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	default:
		return false
	}
}

// toDocument splits a typed struct into document name, fields and manual attribute values.
func (m *schemaMeta) toDocument(item any) (string, map[string]any, map[string]AttributeValue) {
	v := reflect.ValueOf(item)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}

	fields := make(map[string]any, len(m.fields))
	for _, fm := range m.fields {
		fields[fm.name] = toScalar(v.Field(fm.structIdx))
	}

	var attrs map[string]AttributeValue
	for _, am := range m.attributes {
		fv := v.Field(am.structIdx)
		if fv.Kind() == reflect.String {
			if fv.String() == "" {
				continue
			}
			if attrs == nil {
				attrs = make(map[string]AttributeValue)
			}
			attrs[am.name] = Value(fv.String())
			continue
		}
		if fv.Len() == 0 {
			continue
		}
		if attrs == nil {
			attrs = make(map[string]AttributeValue)
		}
		vals := make([]string, fv.Len())
		for i := range vals {
			vals[i] = fv.Index(i).String()
		}
		attrs[am.name] = Values(vals...)
	}

	return v.Field(m.nameIdx).String(), fields, attrs
}

// fromDocument builds a typed struct from a document and its stored values.
func (m *schemaMeta) fromDocument(doc Document, values []StoredValue) any {
	v := reflect.New(m.typ).Elem()

	for _, fm := range m.fields {
		if raw, ok := doc.Fields[fm.name]; ok {
			setScalar(v.Field(fm.structIdx), raw)
		}
	}
	v.Field(m.nameIdx).SetString(doc.Name)

	for _, am := range m.attributes {
		fv := v.Field(am.structIdx)
		for _, sv := range values {
			if sv.Attribute != am.name {
				continue
			}
			if fv.Kind() == reflect.String {
				fv.SetString(sv.Value)
				break
			}
			fv.Set(reflect.Append(fv, reflect.ValueOf(sv.Value).Convert(fv.Type().Elem())))
		}
	}
	return v.Interface()
}

func toScalar(v reflect.Value) any {
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Bool:
		return v.Bool()
	case reflect.Float32, reflect.Float64:
		return v.Float()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	default:
		return nil
	}
}

func setScalar(v reflect.Value, raw any) {
	switch v.Kind() {
	case reflect.String:
		switch t := raw.(type) {
		case nil:
		case string:
			v.SetString(t)
		case float64:
			v.SetString(strconv.FormatFloat(t, 'f', -1, 64))
		default:
			v.SetString(fmt.Sprint(t))
		}
	case reflect.Bool:
		if b, ok := raw.(bool); ok {
			v.SetBool(b)
		}
	case reflect.Float32, reflect.Float64:
		if f, ok := asFloat(raw); ok {
			v.SetFloat(f)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if f, ok := asFloat(raw); ok {
			v.SetInt(int64(f))
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if f, ok := asFloat(raw); ok && f >= 0 {
			v.SetUint(uint64(f))
		}
	}
}

func asFloat(raw any) (float64, bool) {
	switch t := raw.(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
