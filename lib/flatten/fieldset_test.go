package flatten

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestFieldSetUnion(t *testing.T) {
	set := NewFieldSet()
	set.AddRecord(Record{"a": json.Number("1")})
	set.AddRecord(Record{"b": json.Number("2")})

	if diff := cmp.Diff([]string{"a", "b"}, set.Sorted()); diff != "" {
		t.Fatal(diff)
	}
}

func TestFieldSetDeduplicates(t *testing.T) {
	set := NewFieldSet()
	set.AddRecord(Record{"id": json.Number("1"), "title": "x"})
	set.AddRecord(Record{"id": json.Number("2"), "vendor": "y"})

	require.Equal(t, 3, set.Len())
	if diff := cmp.Diff([]string{"id", "title", "vendor"}, set.Sorted()); diff != "" {
		t.Fatal(diff)
	}
}

func TestFieldSetSeesNestedKeys(t *testing.T) {
	set := NewFieldSet()
	set.AddRecord(Record{
		"handle": "widget",
		"variants": []any{
			Record{"price": "9.99"},
		},
	})

	if diff := cmp.Diff([]string{"handle", "variants_0_price"}, set.Sorted()); diff != "" {
		t.Fatal(diff)
	}
}

func TestFieldSetEmpty(t *testing.T) {
	set := NewFieldSet()
	require.Equal(t, 0, set.Len())
	require.Empty(t, set.Sorted())
}
