package sprite7800

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bodgit/sprite7800/canvas"
	"github.com/bodgit/sprite7800/codegen"
	"github.com/bodgit/sprite7800/mode"
	"github.com/bodgit/sprite7800/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(cells ...int) []*int {
	r := make([]*int, len(cells))
	for i, c := range cells {
		if c < 0 {
			continue
		}
		v := c
		r[i] = &v
	}
	return r
}

func testSnapshot() *snapshot.Snapshot {
	s := snapshot.Empty()
	s.Background = 0x0e
	s.Palettes[0] = []int{0x34, 0x56, 0x78}
	s.Groups = []snapshot.Group{
		{
			Name: "ships",
			Objects: []snapshot.Object{
				{Name: "a", DisplayModeName: "160A", Width: 4, Height: 1, PixelWidth: 2, PixelHeight: 1, PixelData: [][]*int{row(1, 2, 3, 0)}},
				{Name: "b", DisplayModeName: "160A", PaletteReference: 1, Width: 4, Height: 1, PixelWidth: 2, PixelHeight: 1, PixelData: [][]*int{row(1, 2, 3, 0)}},
			},
			Groups: []snapshot.Group{
				{
					Name: "fonts",
					Objects: []snapshot.Object{
						{Name: "c", DisplayModeName: "320A", Width: 8, Height: 2, PixelWidth: 1, PixelHeight: 1, PixelData: [][]*int{row(1, -1, 1, -1, 1, -1, 1, -1), row(-1, -1, -1, -1, -1, -1, -1, 1)}},
					},
				},
			},
		},
	}
	return s
}

func singleMode() *snapshot.Snapshot {
	s := snapshot.Empty()
	s.Groups = []snapshot.Group{
		{
			Name: "tiles",
			Objects: []snapshot.Object{
				{Name: "t", DisplayModeName: "320A", Width: 8, Height: 1, PixelWidth: 1, PixelHeight: 1, PixelData: [][]*int{row(1, 1, 1, 1, 0, 0, 0, 0)}},
			},
		},
	}
	return s
}

func newWorkspace(t *testing.T) *Workspace {
	w, err := New(filepath.Join(t.TempDir(), "test.db"), log.New(io.Discard, "", 0))
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })
	return w
}

func TestOpenProject(t *testing.T) {
	s := testSnapshot()

	p, err := OpenProject(s, canvas.DefaultConfig())
	require.NoError(t, err)
	defer p.Close()

	assert.Len(t, p.Objects(), 3)

	var paths [][]string
	require.NoError(t, p.Walk(func(path []string, c *canvas.Canvas) error {
		paths = append(paths, append(path, c.Name()))
		return nil
	}))
	assert.Equal(t, [][]string{{"ships", "a"}, {"ships", "b"}, {"ships", "fonts", "c"}}, paths)

	assert.Equal(t, s, p.Snapshot())
}

func TestOpenProjectError(t *testing.T) {
	s := testSnapshot()
	s.Groups[0].Groups[0].Objects[0].DisplayModeName = "640Z"

	_, err := OpenProject(s, canvas.DefaultConfig())
	var fe *snapshot.FieldError
	assert.ErrorAs(t, err, &fe)
}

func TestProjectExport(t *testing.T) {
	p, err := OpenProject(testSnapshot(), canvas.DefaultConfig())
	require.NoError(t, err)
	defer p.Close()

	exports := p.Export(codegen.DefaultOptions())
	require.Len(t, exports, 2)

	assert.Equal(t, mode.M160A, exports[0].Mode)
	assert.Equal(t, []byte{0x6c, 0x6c}, exports[0].Result.Bytes)
	assert.Contains(t, exports[0].Result.Text, "b_PALWIDTH")

	assert.Equal(t, mode.M320A, exports[1].Mode)
	assert.Equal(t, []byte{0xaa, 0x01}, exports[1].Result.Bytes)
}

func TestExportFilename(t *testing.T) {
	assert.Equal(t, filepath.Join("dir", "x.asm"), ExportFilename(filepath.Join("dir", "x.s78"), mode.M160A, true))
	assert.Equal(t, filepath.Join("dir", "x_160b.asm"), ExportFilename(filepath.Join("dir", "x.json"), mode.M160B, false))
}

func TestCatalog(t *testing.T) {
	c, err := NewCatalog(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer c.Close()

	s := testSnapshot()
	n, err := c.AddSnapshot("one.s78", "ABC", s)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	sha, err := c.SnapshotSHA1("one.s78")
	require.NoError(t, err)
	assert.Equal(t, "ABC", sha)

	sha, err = c.SnapshotSHA1("missing.s78")
	require.NoError(t, err)
	assert.Empty(t, sha)

	d, err := ObjectDigest(s.Groups[0].Objects[0])
	require.NoError(t, err)

	entries, err := c.FindObjectsByDigest(d)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, Entry{File: "one.s78", Group: "ships", Name: "a", Mode: "160A", Width: 4, Height: 1, Digest: d}, entries[0])
	assert.Equal(t, "b", entries[1].Name)

	entries, err = c.FindObjectsByMode("320a")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ships/fonts", entries[0].Group)

	// Re-adding replaces rather than duplicates
	_, err = c.AddSnapshot("one.s78", "DEF", s)
	require.NoError(t, err)
	entries, err = c.FindObjectsByMode("160A")
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	_, err = c.AddSnapshot("two.s78", "123", singleMode())
	require.NoError(t, err)

	groups, err := c.Duplicates()
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0], 2)

	require.NoError(t, c.RemoveSnapshot("one.s78"))
	groups, err = c.Duplicates()
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestObjectDigestClamps(t *testing.T) {
	a := singleMode().Groups[0].Objects[0]
	b := singleMode().Groups[0].Objects[0]
	b.PixelData = [][]*int{row(1, 5, 9, 1, 0, 0, 0, 0)}

	da, err := ObjectDigest(a)
	require.NoError(t, err)
	db, err := ObjectDigest(b)
	require.NoError(t, err)
	assert.Equal(t, da, db)
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".hidden"), 0o755))

	require.NoError(t, snapshot.Save(filepath.Join(dir, "project.s78"), testSnapshot(), true))
	require.NoError(t, snapshot.Save(filepath.Join(dir, "sub", "tiles.json"), singleMode(), false))
	require.NoError(t, snapshot.Save(filepath.Join(dir, ".hidden", "ignored.json"), singleMode(), false))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0o644))

	w := newWorkspace(t)
	w.SetExport(true)
	require.NoError(t, w.Scan(dir))

	for _, file := range []string{"project_160a.asm", "project_320a.asm", filepath.Join("sub", "tiles.asm")} {
		_, err := os.Stat(filepath.Join(dir, file))
		assert.NoError(t, err, file)
	}
	_, err := os.Stat(filepath.Join(dir, ".hidden", "ignored.asm"))
	assert.True(t, os.IsNotExist(err))

	entries, err := w.Catalog().FindObjectsByMode("320A")
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	// Scanning again finds nothing new
	require.NoError(t, w.Scan(dir))
	entries, err = w.Catalog().FindObjectsByMode("320A")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestImportAndExport(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "tiles.json")
	require.NoError(t, snapshot.Save(file, singleMode(), false))

	w := newWorkspace(t)
	require.NoError(t, w.Import(file))

	entries, err := w.Catalog().FindObjectsByMode("320A")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "t", entries[0].Name)

	_, err = os.Stat(filepath.Join(dir, "tiles.asm"))
	assert.True(t, os.IsNotExist(err))

	opts := codegen.DefaultOptions()
	opts.Palette = false
	w.SetOptions(opts)

	files, err := w.Export(file)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "tiles.asm")}, files)

	b, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(b), "t:")
	assert.NotContains(t, string(b), "BACKGRND")
}

func TestWatcher(t *testing.T) {
	dir := t.TempDir()

	wt, err := NewWatcher(dir)
	require.NoError(t, err)
	defer wt.Close()

	file := filepath.Join(dir, "tiles.json")
	require.NoError(t, snapshot.Save(file, singleMode(), false))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0o644))

	select {
	case got := <-wt.Events:
		assert.Equal(t, file, got)
	case <-time.After(5 * time.Second):
		t.Fatal("no event")
	}
}

func TestWatcherSlowReader(t *testing.T) {
	dir := t.TempDir()

	wt, err := NewWatcher(dir)
	require.NoError(t, err)
	defer wt.Close()

	// More files than the events channel buffers, none read until all
	// have settled
	want := make(map[string]struct{})
	for i := 0; i < 24; i++ {
		file := filepath.Join(dir, fmt.Sprintf("object%02d.json", i))
		require.NoError(t, os.WriteFile(file, []byte("{}"), 0o644))
		want[file] = struct{}{}
	}
	time.Sleep(4 * settleDelay)

	got := make(map[string]struct{})
	timeout := time.After(10 * time.Second)
	for len(got) < len(want) {
		select {
		case file := <-wt.Events:
			got[file] = struct{}{}
		case <-timeout:
			t.Fatalf("received %d of %d events", len(got), len(want))
		}
	}
	assert.Equal(t, want, got)
}

func TestWatcherCloseWhileBlocked(t *testing.T) {
	dir := t.TempDir()

	wt, err := NewWatcher(dir)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, fmt.Sprintf("object%02d.json", i)), []byte("{}"), 0o644))
	}
	time.Sleep(4 * settleDelay)

	done := make(chan error, 1)
	go func() {
		done <- wt.Close()
	}()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("close blocked")
	}
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "tiles.json")

	w := newWorkspace(t)
	w.SetExport(true)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Watch(ctx, dir)
	}()

	assert.Eventually(t, func() bool {
		if err := snapshot.Save(file, singleMode(), false); err != nil {
			return false
		}
		_, err := os.Stat(filepath.Join(dir, "tiles.asm"))
		return err == nil
	}, 5*time.Second, 250*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
