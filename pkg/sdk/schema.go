package labsearch

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

const tagKey = "labsearch"

// Field roles in a `labsearch:"<name>,<role>"` tag.
const (
	roleID    = "id"    // document id
	roleName  = "name"  // display name
	roleField = "field" // searchable scalar field
	roleAttr  = "attr"  // free-form attribute
)

// schemaMeta holds parsed struct tag metadata, cached per TypedIndex.
type schemaMeta struct {
	typ     reflect.Type
	idIdx   int // -1 if not present
	nameIdx int // -1 if not present
	fields  []fieldMapping
	attrs   []fieldMapping
}

type fieldMapping struct {
	structIdx int
	name      string
}

// parseSchema reflects on T and extracts labsearch struct tag metadata.
func parseSchema[T any]() (*schemaMeta, error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		return nil, fmt.Errorf("labsearch: type parameter must be a struct")
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("labsearch: type %s is not a struct", t)
	}

	meta := &schemaMeta{typ: t, idIdx: -1, nameIdx: -1}
	for i := range t.NumField() {
		f := t.Field(i)
		tag := f.Tag.Get(tagKey)
		if tag == "" || tag == "-" || !f.IsExported() {
			continue
		}
		if err := applyTag(meta, i, f, tag); err != nil {
			return nil, err
		}
	}

	if len(meta.fields) == 0 && len(meta.attrs) == 0 && meta.nameIdx == -1 {
		return nil, fmt.Errorf("labsearch: %s has no name, field or attr tags", t)
	}
	return meta, nil
}

// applyTag processes a single struct field's labsearch tag.
func applyTag(meta *schemaMeta, idx int, f reflect.StructField, tag string) error {
	name, role, _ := strings.Cut(tag, ",")
	if name == "" {
		name = strings.ToLower(f.Name)
	}
	if role == "" {
		role = roleField
	}
	if !scalarKind(f.Type.Kind()) {
		return fmt.Errorf("labsearch: field %s has unsupported type %s", f.Name, f.Type)
	}

	switch role {
	case roleID:
		if meta.idIdx != -1 {
			return fmt.Errorf("labsearch: duplicate id tag on field %s", f.Name)
		}
		if f.Type.Kind() != reflect.String {
			return fmt.Errorf("labsearch: id field %s must be a string", f.Name)
		}
		meta.idIdx = idx
	case roleName:
		if meta.nameIdx != -1 {
			return fmt.Errorf("labsearch: duplicate name tag on field %s", f.Name)
		}
		meta.nameIdx = idx
	case roleField:
		meta.fields = append(meta.fields, fieldMapping{structIdx: idx, name: name})
	case roleAttr:
		meta.attrs = append(meta.attrs, fieldMapping{structIdx: idx, name: name})
	default:
		return fmt.Errorf("labsearch: unknown role %q on field %s", role, f.Name)
	}
	return nil
}

func scalarKind(k reflect.Kind) bool {
	switch k {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

// toDocument converts a struct value into an id and a Document.
func (m *schemaMeta) toDocument(v reflect.Value) (string, Document) {
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	var id string
	if m.idIdx != -1 {
		id = v.Field(m.idIdx).String()
	}

	doc := Document{Fields: make(map[string]string, len(m.fields)+1)}
	if m.nameIdx != -1 {
		doc.Fields["name"] = formatScalar(v.Field(m.nameIdx))
	}
	for _, fm := range m.fields {
		doc.Fields[fm.name] = formatScalar(v.Field(fm.structIdx))
	}
	for _, am := range m.attrs {
		doc.Attributes = append(doc.Attributes, Attribute{Key: am.name, Value: formatScalar(v.Field(am.structIdx))})
	}
	return id, doc
}

// fromHit rebuilds a struct value from a hit. Values that do not parse into the
// field's type are left zero.
func (m *schemaMeta) fromHit(h Hit, dst reflect.Value) {
	if m.idIdx != -1 {
		dst.Field(m.idIdx).SetString(h.ID)
	}
	if m.nameIdx != -1 {
		setScalar(dst.Field(m.nameIdx), h.Name)
	}

	values := make(map[string]string, len(h.Attributes))
	for _, a := range h.Attributes {
		values[a.Key] = a.Value
	}
	for _, fm := range m.fields {
		if s, ok := values[fm.name]; ok {
			setScalar(dst.Field(fm.structIdx), s)
		}
	}
	for _, am := range m.attrs {
		if s, ok := values[am.name]; ok {
			setScalar(dst.Field(am.structIdx), s)
		}
	}
}

func formatScalar(v reflect.Value) string {
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'g', -1, 64)
	default:
		return ""
	}
}

func setScalar(v reflect.Value, s string) {
	switch v.Kind() {
	case reflect.String:
		v.SetString(s)
	case reflect.Bool:
		if b, err := strconv.ParseBool(s); err == nil {
			v.SetBool(b)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if n, err := strconv.ParseInt(s, 10, 64); err == nil && !v.OverflowInt(n) {
			v.SetInt(n)
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if n, err := strconv.ParseUint(s, 10, 64); err == nil && !v.OverflowUint(n) {
			v.SetUint(n)
		}
	case reflect.Float32, reflect.Float64:
		if f, err := strconv.ParseFloat(s, 64); err == nil && !v.OverflowFloat(f) {
			v.SetFloat(f)
		}
	}
}
