package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crmtasks/internal/models"
)

var fixedNow = time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)

func TestValidateCreate(t *testing.T) {
	const typeMsg = "task_type must be one of: call, email, review"
	cases := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"missing application", `{"task_type":"call","due_at":"2026-10-18T10:00:00Z"}`, "application_id is required"},
		{"zero application", `{"application_id":0,"task_type":"call","due_at":"2026-10-18T10:00:00Z"}`, "application_id is required"},
		{"false application", `{"application_id":false,"task_type":"call","due_at":"2026-10-18T10:00:00Z"}`, "application_id is required"},
		{"empty application", `{"application_id":"","task_type":"call","due_at":"2026-10-18T10:00:00Z"}`, "application_id is required"},
		{"missing type", `{"application_id":"a1","due_at":"2026-10-18T10:00:00Z"}`, typeMsg},
		{"unknown type", `{"application_id":"a1","task_type":"meeting","due_at":"2026-10-18T10:00:00Z"}`, typeMsg},
		{"numeric type", `{"application_id":"a1","task_type":7,"due_at":"2026-10-18T10:00:00Z"}`, typeMsg},
		{"array type", `{"application_id":"a1","task_type":["call"],"due_at":"2026-10-18T10:00:00Z"}`, typeMsg},
		{"type checked before due", `{"application_id":"a1","task_type":"fax"}`, typeMsg},
		{"missing due", `{"application_id":"a1","task_type":"email"}`, "due_at is required"},
		{"zero due", `{"application_id":"a1","task_type":"email","due_at":0}`, "due_at is required"},
		{"empty due", `{"application_id":"a1","task_type":"email","due_at":""}`, "due_at is required"},
		{"garbage due", `{"application_id":"a1","task_type":"email","due_at":"tomorrow"}`, "due_at must be a valid ISO timestamp"},
		{"object due", `{"application_id":"a1","task_type":"email","due_at":{}}`, "due_at must be a valid ISO timestamp"},
		{"out of range millis", `{"application_id":"a1","task_type":"email","due_at":1e17}`, "due_at must be a valid ISO timestamp"},
		{"past millis", `{"application_id":"a1","task_type":"email","due_at":1000}`, "due_at must be in the future"},
		{"past due", `{"application_id":"a1","task_type":"review","due_at":"2026-10-16T10:00:00Z"}`, "due_at must be in the future"},
		{"due equals now", `{"application_id":"a1","task_type":"review","due_at":"2026-10-17T10:00:00Z"}`, "due_at must be in the future"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateCreate(createInput(t, tc.body), fixedNow, time.UTC)
			require.Error(t, err)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.wantErr, verr.Message)
		})
	}
}

func TestValidateCreateAccepts(t *testing.T) {
	v, err := ValidateCreate(createInput(t, `{"application_id":"42","task_type":"call","due_at":"2026-10-17T12:30:00+02:00"}`), fixedNow, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "42", v.ApplicationID)
	assert.Equal(t, models.TypeCall, v.Type)
	assert.True(t, v.DueAt.Equal(time.Date(2026, 10, 17, 10, 30, 0, 0, time.UTC)))
}

func TestValidateCreateLooseTypes(t *testing.T) {
	// 2099-01-01T00:00:00Z in epoch milliseconds
	v, err := ValidateCreate(createInput(t, `{"application_id":42,"task_type":"review","due_at":4070908800000}`), fixedNow, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "42", v.ApplicationID)
	assert.True(t, v.DueAt.Equal(time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC)))

	v, err = ValidateCreate(createInput(t, `{"application_id":" app-9 ","task_type":"email","due_at":"2026-10-18"}`), fixedNow, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "app-9", v.ApplicationID)
}

func TestParseTimestamp(t *testing.T) {
	almaty := time.FixedZone("ALMT", 5*3600)

	got, err := ParseTimestamp("2026-10-20", almaty)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)))

	got, err = ParseTimestamp("2026-10-20T09:15:00", almaty)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2026, 10, 20, 4, 15, 0, 0, time.UTC)))

	got, err = ParseTimestamp("2026-10-20T09:15:00.250Z", nil)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, time.Duration(got.Nanosecond()))

	_, err = ParseTimestamp("20/10/2026", nil)
	assert.Error(t, err)
}
