package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampJSON(t *testing.T) {
	ts := NewTimestamp(time.Date(2025, 7, 4, 13, 5, 9, 123456789, time.Local))

	data, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2025-07-04 13:05:09"`, string(data))

	var back Timestamp
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, ts.Equal(back.Time))
}

func TestTimestampEmptyAndInvalid(t *testing.T) {
	var ts Timestamp
	require.NoError(t, json.Unmarshal([]byte(`""`), &ts))
	assert.True(t, ts.IsZero())

	data, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `""`, string(data))

	assert.Error(t, json.Unmarshal([]byte(`"04/07/2025"`), &ts))
	assert.Error(t, json.Unmarshal([]byte(`12`), &ts))
}

func TestUserJSONKeys(t *testing.T) {
	u := User{ID: "1", Name: "Ann", Email: "ann@x.com", Password: "$argon2id$x", CreatedAt: NewTimestamp(time.Date(2025, 1, 2, 3, 4, 5, 0, time.Local))}
	data, err := json.Marshal(u)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"1","name":"Ann","email":"ann@x.com","password":"$argon2id$x","created_at":"2025-01-02 03:04:05"}`, string(data))
}

func TestContactJSONKeys(t *testing.T) {
	c := ContactSubmission{ID: "1", Name: "Ann", Email: "ann@x.com", Subject: "Hi", Message: "hello there", Rating: 5, SubmittedAt: NewTimestamp(time.Date(2025, 1, 2, 3, 4, 5, 0, time.Local))}
	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"1","name":"Ann","email":"ann@x.com","subject":"Hi","message":"hello there","rating":5,"submitted_at":"2025-01-02 03:04:05"}`, string(data))
}

func TestDaysAsMember(t *testing.T) {
	created := time.Date(2025, 1, 1, 12, 0, 0, 0, time.Local)
	u := User{CreatedAt: NewTimestamp(created)}

	assert.Equal(t, 0, u.DaysAsMember(NewTimestamp(created.Add(23*time.Hour))))
	assert.Equal(t, 10, u.DaysAsMember(NewTimestamp(created.Add(10*24*time.Hour+time.Hour))))
	assert.Equal(t, 0, u.DaysAsMember(NewTimestamp(created.Add(-time.Hour))))
	assert.Equal(t, 0, (&User{}).DaysAsMember(NewTimestamp(created)))
}

func TestIdentity(t *testing.T) {
	u := User{ID: "1", Name: "Ann", Email: "ann@x.com"}
	assert.Equal(t, Identity{UserID: "1", Name: "Ann", Email: "ann@x.com"}, u.Identity())
}
