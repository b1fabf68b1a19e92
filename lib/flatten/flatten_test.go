package flatten

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestFlatten(t *testing.T) {
	testCases := []struct {
		name     string
		input    Record
		expected Flat
	}{
		{
			name:     "nested object",
			input:    Record{"a": Record{"b": json.Number("1"), "c": json.Number("2")}},
			expected: Flat{"a_b": "1", "a_c": "2"},
		},
		{
			name:     "scalar list joins",
			input:    Record{"tags": []any{"x", "y"}},
			expected: Flat{"tags": "x|y"},
		},
		{
			name:     "empty list",
			input:    Record{"tags": []any{}},
			expected: Flat{"tags": ""},
		},
		{
			name: "record list indexes",
			input: Record{"images": []any{
				Record{"src": "u1"},
				Record{"src": "u2"},
			}},
			expected: Flat{"images_0_src": "u1", "images_1_src": "u2"},
		},
		{
			name: "mixed list keeps scalar tail",
			input: Record{"options": []any{
				Record{"name": "Size"},
				"raw",
			}},
			expected: Flat{"options_0_name": "Size", "options_1": "raw"},
		},
		{
			name: "deep nesting",
			input: Record{"a": Record{"b": Record{"c": "leaf"}}},
			expected: Flat{"a_b_c": "leaf"},
		},
		{
			name:     "empty nested record vanishes",
			input:    Record{"a": Record{}, "b": "x"},
			expected: Flat{"b": "x"},
		},
		{
			name:     "scalar rendering",
			input:    Record{"published": true, "body_html": nil, "weight": json.Number("9.99")},
			expected: Flat{"published": "true", "body_html": "", "weight": "9.99"},
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			got := Flatten(test.input)
			if diff := cmp.Diff(test.expected, got); diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestFlattenDeterministic(t *testing.T) {
	input := Record{
		"id":    json.Number("42"),
		"title": "Widget",
		"options": []any{
			Record{"name": "Size", "values": []any{"S", "M"}},
		},
		"tags": []any{"a", "b", "c"},
	}

	first := Flatten(input)
	second := Flatten(input)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatal(diff)
	}
}

func TestFlattenNoParentKey(t *testing.T) {
	got := Flatten(Record{"a": Record{"b": json.Number("1"), "c": json.Number("2")}})
	_, hasParent := got["a"]
	require.False(t, hasParent)
}

func TestFlattenPreservesLargeIds(t *testing.T) {
	// float64 would round this to ...992
	body := `{"id": 9007199254740993, "price": "15.00"}`

	var rec Record
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&rec))

	got := Flatten(rec)
	require.Equal(t, "9007199254740993", got["id"])
	require.Equal(t, "15.00", got["price"])
}

func TestFlattenDecodedPayload(t *testing.T) {
	body := `{
		"id": 632910392,
		"title": "IPod Nano - 8GB",
		"tags": ["Emotive", "Flash Memory", "MP3"],
		"variants": [
			{"id": 808950810, "price": "199.00", "option1": "Pink"},
			{"id": 49148385, "price": "199.00", "option1": "Red"}
		],
		"options": [{"name": "Title", "position": 1}],
		"image": {"src": "http://example.com/ipod.png"}
	}`

	var rec Record
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&rec))

	got := Flatten(rec)
	expected := Flat{
		"id":                 "632910392",
		"title":              "IPod Nano - 8GB",
		"tags":               "Emotive|Flash Memory|MP3",
		"variants_0_id":      "808950810",
		"variants_0_price":   "199.00",
		"variants_0_option1": "Pink",
		"variants_1_id":      "49148385",
		"variants_1_price":   "199.00",
		"variants_1_option1": "Red",
		"options_0_name":     "Title",
		"options_0_position": "1",
		"image_src":          "http://example.com/ipod.png",
	}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Fatal(diff)
	}
}
