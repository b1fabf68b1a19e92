package tabular

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestCSVSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.csv")
	sink := NewCSVSink(path)

	ctx := context.Background()
	require.NoError(t, sink.Begin(ctx, Header{"scraped_url", "title", "tags"}))
	require.NoError(t, sink.Write(ctx, Row{"https://store.example.com/products/a", "Chain Bracelet", "gold|jewelry"}))
	require.NoError(t, sink.Write(ctx, Row{"https://store.example.com/products/b", `says "hi", loudly`, ""}))
	require.NoError(t, sink.Close(ctx))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	expected := "scraped_url,title,tags\n" +
		"https://store.example.com/products/a,Chain Bracelet,gold|jewelry\n" +
		"https://store.example.com/products/b,\"says \"\"hi\"\", loudly\",\n"
	if diff := cmp.Diff(expected, string(raw)); diff != "" {
		t.Fatal(diff)
	}
}

func TestCSVSinkFlushesEveryRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.csv")
	sink := NewCSVSink(path)

	ctx := context.Background()
	require.NoError(t, sink.Begin(ctx, Header{"title"}))
	require.NoError(t, sink.Write(ctx, Row{"Chain Bracelet"}))

	// readable before Close, a crashed run should not lose rows
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "title\nChain Bracelet\n", string(raw))

	require.NoError(t, sink.Close(ctx))
}

func TestCSVSinkRejectsMisalignedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.csv")
	sink := NewCSVSink(path)

	ctx := context.Background()
	require.NoError(t, sink.Begin(ctx, Header{"a", "b"}))
	require.ErrorContains(t, sink.Write(ctx, Row{"only one"}), "row has 1 cells, header has 2")
	require.ErrorContains(t, sink.Write(ctx, Row{"1", "2", "3"}), "row has 3 cells, header has 2")
	require.NoError(t, sink.Close(ctx))
}

func TestCSVSinkWriteBeforeBegin(t *testing.T) {
	sink := NewCSVSink(filepath.Join(t.TempDir(), "products.csv"))
	require.ErrorContains(t, sink.Write(context.Background(), Row{"x"}), "not been started")
}
