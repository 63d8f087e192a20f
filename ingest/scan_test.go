package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "2024", "march"), 0o755))
	for _, p := range []string{"acct-b.csv", "acct-a.csv", "notes.txt", filepath.Join("2024", "march", "acct-c.csv")} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, p), []byte("x"), 0o644))
	}

	srcs, err := Scan(dir, "")
	require.NoError(t, err)
	require.Len(t, srcs, 3)

	ids := []string{}
	for _, s := range srcs {
		ids = append(ids, s.AccountID)
	}
	assert.ElementsMatch(t, []string{"acct-a", "acct-b", "acct-c"}, ids)

	top, err := Scan(dir, "*.csv")
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "acct-a", top[0].AccountID)
	assert.Equal(t, "acct-b", top[1].AccountID)

	_, err = Scan(dir, "[")
	assert.Error(t, err)
}

func TestAccountID(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "acct-1", AccountID("/data/in/acct-1.csv"))
	assert.Equal(t, "trades.2024", AccountID("trades.2024.csv"))
	assert.Equal(t, "plain", AccountID("plain"))
}
