package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeInput(t *testing.T, body string) CreateTaskInput {
	t.Helper()
	var in CreateTaskInput
	require.NoError(t, json.Unmarshal([]byte(body), &in))
	return in
}

func TestValue_Truthy(t *testing.T) {
	for raw, want := range map[string]bool{
		`0`: false, `0.0`: false, `-0`: false, `false`: false, `""`: false, `null`: false,
		`1`: true, `-2.5`: true, `true`: true, `"x"`: true, `" "`: true, `{}`: true, `[]`: true,
	} {
		in := decodeInput(t, `{"application_id":`+raw+`}`)
		assert.Equal(t, want, in.ApplicationID.Truthy(), raw)
	}
	assert.False(t, decodeInput(t, `{}`).ApplicationID.Truthy())
}

func TestValue_Text(t *testing.T) {
	cases := map[string]string{
		`"app-1"`:          "app-1",
		`42`:               "42",
		`42.0`:             "42",
		`1.5`:              "1.5",
		`true`:             "true",
		`{ "a" : [1, 2] }`: `{"a":[1,2]}`,
	}
	for raw, want := range cases {
		got, ok := decodeInput(t, `{"title":`+raw+`}`).Title.Text()
		require.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}
	_, ok := decodeInput(t, `{"title":null}`).Title.Text()
	assert.False(t, ok)
}

func TestValue_Kinds(t *testing.T) {
	in := decodeInput(t, `{"task_type":7,"due_at":"2026-10-18","title":false}`)

	_, isStr := in.TaskType.Str()
	assert.False(t, isStr)
	n, isNum := in.TaskType.Num()
	assert.True(t, isNum)
	assert.Equal(t, 7.0, n)

	s, isStr := in.DueAt.Str()
	assert.True(t, isStr)
	assert.Equal(t, "2026-10-18", s)

	b, isBool := in.Title.Bool()
	assert.True(t, isBool)
	assert.False(t, b)

	assert.True(t, in.Description.IsNull())
}

func TestStringValue(t *testing.T) {
	v := StringValue(`say "hi"`)
	s, ok := v.Str()
	require.True(t, ok)
	assert.Equal(t, `say "hi"`, s)

	out, err := json.Marshal(struct {
		V Value `json:"v"`
		W Value `json:"w"`
	}{V: StringValue("x")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":"x","w":null}`, string(out))
}
