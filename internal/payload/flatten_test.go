package payload

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	node, err := Decode([]byte(raw))
	require.NoError(t, err)
	return node
}

func TestFlattenShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []Record
	}{
		{"data wrapper", `{"data":[{"a":1},{"a":2}]}`, []Record{{"a": 1.0}, {"a": 2.0}}},
		{"ragged arrays", `[[{"a":1}],[{"a":2},{"a":3}]]`, []Record{{"a": 1.0}, {"a": 2.0}, {"a": 3.0}}},
		{"bare record", `{"a":1,"b":2}`, []Record{{"a": 1.0, "b": 2.0}}},
		{"nested single key", `[{"data":{"items":[{"a":1}]}}]`, []Record{{"a": 1.0}}},
		{"empty key wrapper", `[{"":[{"a":1}]}]`, []Record{{"a": 1.0}}},
		{"scalars dropped", `[1,"x",null,{"a":1},true]`, []Record{{"a": 1.0}}},
		{"multi key is terminal", `{"a":[{"x":1}],"b":2}`, []Record{{"a": []any{map[string]any{"x": 1.0}}, "b": 2.0}}},
		{"single key scalar is a record", `[{"id":"T1"}]`, []Record{{"id": "T1"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Flatten(decode(t, tt.raw)))
		})
	}
}

func TestFlattenEmpty(t *testing.T) {
	assert.Empty(t, Flatten(nil))
	assert.Empty(t, Flatten([]any{}))
	assert.Empty(t, Flatten(decode(t, `{"data":[]}`)))
	assert.Empty(t, Flatten("text"))
}

func TestFlattenIdempotent(t *testing.T) {
	inputs := []string{
		`[[{"a":1}],[{"a":2},{"a":3}]]`,
		`{"data":[{"a":1,"b":[1,2]}]}`,
		`[{"id":"x"},{"k":{"nested":true},"z":1}]`,
	}
	for _, raw := range inputs {
		once := Flatten(decode(t, raw))
		assert.Equal(t, once, Flatten(once), raw)
	}
}

func TestFlattenDepthBound(t *testing.T) {
	raw := strings.Repeat("[", MaxDepth+5) + `{"a":1}` + strings.Repeat("]", MaxDepth+5)
	assert.Empty(t, Flatten(decode(t, raw)))

	shallow := strings.Repeat("[", 3) + `{"a":1}` + strings.Repeat("]", 3)
	assert.Len(t, Flatten(decode(t, shallow)), 1)
}

func TestRecordsExpandsEnvelopes(t *testing.T) {
	node := decode(t, `[{"status":"success","data":[{"ticket_id":"A"},{"ticket_id":"B"}]}]`)
	got := Records(node)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0]["ticket_id"])

	// a ticket record that happens to carry data stays intact
	node = decode(t, `[{"ticket_id":"A","data":{"x":1}}]`)
	got = Records(node)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0]["ticket_id"])
}

func TestUnwrap(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		id   any
	}{
		{"array of envelopes", `[{"status":"success","data":{"ticket_id":"T1"}}]`, "T1"},
		{"envelope", `{"message":"ok","data":{"ticket_id":"T2"}}`, "T2"},
		{"bare", `{"ticket_id":"T3","status":"Đã phân công"}`, "T3"},
		{"leading null", `[null,{"ticket_id":"T4"}]`, "T4"},
		{"data array", `{"data":[{"ticket_id":"T5"},{"ticket_id":"T6"}]}`, "T5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.id, Unwrap(decode(t, tt.raw))["ticket_id"])
		})
	}
	assert.Equal(t, Record{}, Unwrap(nil))
	assert.Equal(t, Record{}, Unwrap(decode(t, `[]`)))
}

func TestOptions(t *testing.T) {
	assert.Equal(t, []string{"Demo", "Đào tạo"},
		Options(decode(t, `[{"data":[{"option":"Demo"},{"option":""},{"option":" Đào tạo "}]}]`)))
	assert.Equal(t, []string{"Bảo hành"}, Options(decode(t, `{"data":[{"option":"Bảo hành"}]}`)))
	assert.Empty(t, Options(decode(t, `{"status":"error"}`)))
}

func TestDecodeBlank(t *testing.T) {
	node, err := Decode([]byte("  "))
	require.NoError(t, err)
	assert.Nil(t, node)

	_, err = Decode([]byte("{oops"))
	assert.Error(t, err)
}
