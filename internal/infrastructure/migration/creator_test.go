package migration

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/hexasamples/backend/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add cancel reason", "add_cancel_reason"},
		{"Add-Cancel-Reason", "add_cancel_reason"},
		{"ADD_CANCEL_REASON", "add_cancel_reason"},
		{"add__order__index", "add_order_index"},
		{"Orders 2", "orders_2"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "add order notes", "Free text notes on sales orders")
	require.NoError(t, err)
	assert.Equal(t, uint(1), mf.Version)
	assert.Equal(t, filepath.Join(dir, "000001_add_order_notes.up.sql"), mf.UpPath)
	assert.Equal(t, filepath.Join(dir, "000001_add_order_notes.down.sql"), mf.DownPath)

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "add order notes")
	assert.Contains(t, string(up), "Free text notes on sales orders")

	down, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "(Rollback)")

	t.Run("next version follows the highest existing one", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "000007_manual.up.sql"), []byte("--"), 0o644))

		next, err := CreateMigration(dir, "index status", "")
		require.NoError(t, err)
		assert.Equal(t, uint(8), next.Version)
	})

	t.Run("rejects an empty name", func(t *testing.T) {
		_, err := CreateMigration(dir, "!!!", "")
		assert.Error(t, err)
	})
}

func TestCreateMigration_CreatesDirectory(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "nested", "migrations")

	_, err := CreateMigration(nested, "init", "")
	require.NoError(t, err)

	info, err := os.Stat(nested)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestListMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"000002_add_notes.up.sql":      {Data: []byte("--")},
		"000002_add_notes.down.sql":    {Data: []byte("--")},
		"000001_init_schema.up.sql":    {Data: []byte("--")},
		"000001_init_schema.down.sql":  {Data: []byte("--")},
		"000003_backfill.up.sql":       {Data: []byte("--")},
		"README.md":                    {Data: []byte("docs")},
		"notes_without_version.up.sql": {Data: []byte("--")},
		"subdir.up.sql/file":           {Data: []byte("--")},
	}

	list, err := ListMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, list, 3)

	assert.Equal(t, "000001_init_schema", list[0].BaseName())
	assert.Equal(t, "000002_add_notes", list[1].BaseName())
	assert.Equal(t, "000003_backfill", list[2].BaseName())
	assert.True(t, list[0].HasDown)
	assert.False(t, list[2].HasDown)
}

func TestListMigrations_NonexistentDirectory(t *testing.T) {
	list, err := ListMigrations(os.DirFS("/nonexistent/path/to/migrations"))
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	list, err := ListMigrations(migrations.FS)
	require.NoError(t, err)
	require.NotEmpty(t, list)

	for i, m := range list {
		assert.Equal(t, uint(i+1), m.Version, "versions must be contiguous")
		assert.True(t, m.HasDown, "%s has no down script", m.BaseName())
	}
}
