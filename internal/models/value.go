package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
)

// Value is a request field kept as sent. Create-task fields may arrive as any
// JSON type; validation decides what each one means.
type Value struct {
	raw json.RawMessage
}

// StringValue builds a Value holding the JSON string s.
func StringValue(s string) Value {
	raw, _ := json.Marshal(s)
	return Value{raw: raw}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	v.raw = append(v.raw[:0], bytes.TrimSpace(data)...)
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.IsNull() {
		return []byte("null"), nil
	}
	return v.raw, nil
}

// IsNull reports a missing field or an explicit null.
func (v Value) IsNull() bool {
	return len(v.raw) == 0 || bytes.Equal(v.raw, []byte("null"))
}

// Str returns the content of a JSON string.
func (v Value) Str() (string, bool) {
	if len(v.raw) == 0 || v.raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(v.raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// Num returns the value of a JSON number.
func (v Value) Num() (float64, bool) {
	if len(v.raw) == 0 || !(v.raw[0] == '-' || (v.raw[0] >= '0' && v.raw[0] <= '9')) {
		return 0, false
	}
	f, err := strconv.ParseFloat(string(v.raw), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return f, true
}

// Bool returns the value of a JSON boolean.
func (v Value) Bool() (bool, bool) {
	switch string(v.raw) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// Truthy: null, false, 0 and "" are falsy, everything else (objects and
// arrays included) is truthy.
func (v Value) Truthy() bool {
	if v.IsNull() {
		return false
	}
	if s, ok := v.Str(); ok {
		return s != ""
	}
	if f, ok := v.Num(); ok {
		return f != 0
	}
	if b, ok := v.Bool(); ok {
		return b
	}
	return true
}

// Text is the value as stored in a text column: string content as is,
// numbers in shortest form, objects and arrays as compact JSON.
func (v Value) Text() (string, bool) {
	if v.IsNull() {
		return "", false
	}
	if s, ok := v.Str(); ok {
		return s, true
	}
	if f, ok := v.Num(); ok {
		if n, err := strconv.ParseInt(string(v.raw), 10, 64); err == nil {
			return strconv.FormatInt(n, 10), true
		}
		return strconv.FormatFloat(f, 'f', -1, 64), true
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, v.raw); err != nil {
		return string(v.raw), true
	}
	return buf.String(), true
}

func (v Value) String() string {
	if v.IsNull() {
		return ""
	}
	return string(v.raw)
}
