package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/sections"
	"github.com/aretw0/sections/internal/config"
	"github.com/aretw0/sections/internal/logging"
	"github.com/aretw0/sections/pkg/domain"
)

func TestBuildStore(t *testing.T) {
	logger := logging.NewNop()
	ctx := context.Background()

	store, locker, closeStore, err := buildStore("none", config.Server{}, logger)
	require.NoError(t, err)
	defer closeStore()
	assert.Nil(t, store)
	assert.Nil(t, locker)

	_, _, _, err = buildStore("disk", config.Server{}, logger)
	assert.Error(t, err)

	_, _, _, err = buildStore("redis", config.Server{}, logger)
	assert.Error(t, err, "redis needs an address")

	_, _, _, err = buildStore("memory", config.Server{EncryptionKey: "short"}, logger)
	assert.Error(t, err)

	t.Run("memory with middleware", func(t *testing.T) {
		store, locker, closeStore, err := buildStore("memory", config.Server{
			EncryptionKey: strings.Repeat("0f", 32),
			PIIPatterns:   []string{"^data-email$"},
		}, logger)
		require.NoError(t, err)
		defer closeStore()
		require.NotNil(t, locker)

		require.NoError(t, store.Save(ctx, &domain.StoredDocument{
			ID:   "doc",
			HTML: `<p class="a" data-email="ada@example.com" onclick="x()">Hi</p>`,
		}))
		loaded, err := store.Load(ctx, "doc")
		require.NoError(t, err)
		assert.Equal(t, `<p class="a" data-email="***">Hi</p>`, loaded.HTML)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		store, locker, closeStore, err := buildStore("redis", config.Server{
			Redis: &config.Redis{Addr: mr.Addr(), Prefix: "test"},
		}, logger)
		require.NoError(t, err)
		defer closeStore()
		require.NotNil(t, locker)

		require.NoError(t, store.Save(ctx, &domain.StoredDocument{ID: "doc", HTML: "<p>x</p>"}))
		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"doc"}, ids)
	})
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "sections version "+sections.Version+"\n", out.String())
}

func TestNormalizeCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sections.yaml"), []byte(`
templates:
  card: '<div class="card"><h2 class="title" ck-name="title" ck-editable-type="text"></h2></div>'
`), 0o644))
	doc := filepath.Join(dir, "doc.html")
	require.NoError(t, os.WriteFile(doc, []byte(`<div class="card"></div>`), 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"normalize", "--dir", dir, doc})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, `<div class="card"><h2 class="title"></h2></div>`+"\n", out.String())
}
