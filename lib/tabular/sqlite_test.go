package tabular

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func newMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// a single connection so every statement sees the same in-memory database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSQLiteSink(t *testing.T) {
	db := newMemoryDB(t)

	sink := NewSQLiteSink(db, "products")
	ctx := context.Background()

	require.NoError(t, sink.Begin(ctx, Header{"scraped_url", "title", "variant_price"}))
	require.NoError(t, sink.Write(ctx, Row{"https://store.example.com/products/a", "Chain Bracelet", "199.00"}))
	require.NoError(t, sink.Write(ctx, Row{"https://store.example.com/products/b", "Leather Anchor", ""}))
	require.NoError(t, sink.Close(ctx))

	rows, err := db.QueryContext(ctx, `SELECT "title", "variant_price" FROM "products" ORDER BY "title"`)
	require.NoError(t, err)
	defer rows.Close()

	var got [][2]string
	for rows.Next() {
		var title, price string
		require.NoError(t, rows.Scan(&title, &price))
		got = append(got, [2]string{title, price})
	}
	require.NoError(t, rows.Err())
	require.Equal(t, [][2]string{
		{"Chain Bracelet", "199.00"},
		{"Leather Anchor", ""},
	}, got)
}

func TestSQLiteSinkReplacesTableOnBegin(t *testing.T) {
	db := newMemoryDB(t)

	sink := NewSQLiteSink(db, "products")
	ctx := context.Background()

	require.NoError(t, sink.Begin(ctx, Header{"title"}))
	require.NoError(t, sink.Write(ctx, Row{"stale row"}))
	require.NoError(t, sink.Close(ctx))

	// a second run replaces last run's snapshot, including its columns
	sink = NewSQLiteSink(db, "products")
	require.NoError(t, sink.Begin(ctx, Header{"title", "handle"}))
	require.NoError(t, sink.Write(ctx, Row{"Chain Bracelet", "chain-bracelet"}))
	require.NoError(t, sink.Close(ctx))

	var count int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM "products"`).Scan(&count))
	require.Equal(t, 1, count)

	var handle string
	require.NoError(t, db.QueryRowContext(ctx, `SELECT "handle" FROM "products"`).Scan(&handle))
	require.Equal(t, "chain-bracelet", handle)
}

func TestSQLiteSinkQuotesAwkwardColumnNames(t *testing.T) {
	db := newMemoryDB(t)

	sink := NewSQLiteSink(db, "products")
	ctx := context.Background()

	// flattened keys can collide with keywords or carry punctuation
	require.NoError(t, sink.Begin(ctx, Header{"select", `option "1"`, "images_0_src"}))
	require.NoError(t, sink.Write(ctx, Row{"a", "b", "c"}))
	require.NoError(t, sink.Close(ctx))

	var a, b, c string
	err := db.QueryRowContext(ctx, `SELECT "select", "option ""1""", "images_0_src" FROM "products"`).Scan(&a, &b, &c)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, []string{a, b, c})
}

func TestSQLiteSinkRejectsMisalignedRows(t *testing.T) {
	db := newMemoryDB(t)

	sink := NewSQLiteSink(db, "products")
	ctx := context.Background()

	require.NoError(t, sink.Begin(ctx, Header{"a", "b"}))
	require.ErrorContains(t, sink.Write(ctx, Row{"short"}), "row has 1 cells, header has 2")
	require.NoError(t, sink.Close(ctx))
}
