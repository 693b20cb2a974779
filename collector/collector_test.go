package collector_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/classdep/classdep/collector"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func names(t *testing.T, entries []collector.Entry) []string {
	t.Helper()
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}

func TestCollectDirYieldsClassFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a", "Foo.class"), "x")
	writeFile(t, filepath.Join(dir, "a", "notes.txt"), "x")
	writeFile(t, filepath.Join(dir, "b", "Bar.CLASS"), "x")

	c := collector.New(collector.Options{})
	entries, err := c.Collect(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestCollectDirRejectsInnerClassesWhenConfigured(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Outer.class"), "x")
	writeFile(t, filepath.Join(dir, "Outer$Inner.class"), "x")
	writeFile(t, filepath.Join(dir, "$Weird.class"), "x") // '$' at position 0 is not an inner-class marker

	c := collector.New(collector.Options{RejectInnerClasses: true})
	entries, err := c.Collect(dir)
	require.NoError(t, err)

	got := names(t, entries)
	assertContainsSuffix(t, got, "Outer.class")
	assertContainsSuffix(t, got, "$Weird.class")
	assertNotContainsSuffix(t, got, "Outer$Inner.class")
}

func TestCollectDirAcceptsInnerClassesByDefault(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Outer$Inner.class"), "x")

	c := collector.New(collector.Options{})
	entries, err := c.Collect(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCollectDirEntriesAreSortedAndDeduped(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "z.class"), "x")
	writeFile(t, filepath.Join(dir, "a.class"), "x")

	c := collector.New(collector.Options{})
	entries, err := c.Collect(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].Name < entries[1].Name)
}

func TestCollectRejectsUnrecognizedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plain.txt")
	writeFile(t, path, "x")

	c := collector.New(collector.Options{})
	_, err := c.Collect(path)
	assert.Error(t, err)
}

func TestCollectRejectsMissingRoot(t *testing.T) {
	c := collector.New(collector.Options{})
	_, err := c.Collect(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)
}

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

func TestCollectArchiveYieldsClassEntries(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "lib.jar")
	writeZip(t, archivePath, map[string]string{
		"com/acme/Foo.class":  "one",
		"META-INF/MANIFEST.MF": "manifest",
	})

	c := collector.New(collector.Options{})
	entries, err := c.Collect(archivePath)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "com/acme/Foo.class", entries[0].Name)

	rc, err := entries[0].Open()
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "one", string(data))
}

func TestCollectArchiveContentReadableAfterCollectReturns(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "lib.zip")
	writeZip(t, archivePath, map[string]string{"a/B.class": "payload"})

	c := collector.New(collector.Options{})
	entries, err := c.Collect(archivePath)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	// The archive's underlying file handle is already closed by the time
	// Collect returns; reading the entry must still work.
	rc, err := entries[0].Open()
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func assertContainsSuffix(t *testing.T, names []string, suffix string) {
	t.Helper()
	for _, n := range names {
		if len(n) >= len(suffix) && n[len(n)-len(suffix):] == suffix {
			return
		}
	}
	t.Fatalf("expected some entry ending in %q among %v", suffix, names)
}

func assertNotContainsSuffix(t *testing.T, names []string, suffix string) {
	t.Helper()
	for _, n := range names {
		if len(n) >= len(suffix) && n[len(n)-len(suffix):] == suffix {
			t.Fatalf("did not expect any entry ending in %q, found %q", suffix, n)
		}
	}
}
