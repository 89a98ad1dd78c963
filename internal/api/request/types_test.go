package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryText(t *testing.T) {
	q := Query{"s": "abc", "n": float64(966500000001), "f": 1.5, "t": true, "no": false, "null": nil, "obj": map[string]any{}}

	tests := []struct {
		key  string
		want string
	}{
		{"s", "abc"},
		{"n", "966500000001"},
		{"f", "1.5"},
		{"t", "true"},
		{"no", ""},
		{"null", ""},
		{"obj", ""},
		{"missing", ""},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, q.Text(tt.key))
		})
	}
}

func TestQueryTruthy(t *testing.T) {
	q := Query{"t": true, "f": false, "s": "x", "empty": "", "one": float64(1), "zero": float64(0), "list": []any{}}

	assert.True(t, q.Truthy("t"))
	assert.False(t, q.Truthy("f"))
	assert.True(t, q.Truthy("s"))
	assert.False(t, q.Truthy("empty"))
	assert.True(t, q.Truthy("one"))
	assert.False(t, q.Truthy("zero"))
	assert.True(t, q.Truthy("list"))
	assert.False(t, q.Truthy("missing"))
}

func TestQueryEventCopiesRawQuery(t *testing.T) {
	q := Query{"sender": "a@c.us", "message": " hi ", "isGroup": true, "groupParticipant": "a to b", "extra": "x"}

	ev := q.Event()
	assert.Equal(t, "a@c.us", ev.Sender)
	assert.Equal(t, " hi ", ev.Message)
	assert.True(t, ev.IsGroup)
	assert.Equal(t, "a to b", ev.GroupParticipant)
	assert.Equal(t, "x", ev.Query["extra"])

	ev.Query["extra"] = "changed"
	assert.Equal(t, "x", q["extra"])
}
