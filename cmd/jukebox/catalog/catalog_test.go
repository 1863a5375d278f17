package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/gigurra/noteblock/cmd/jukebox"
	"github.com/gigurra/noteblock/cmd/jukebox/timeline"
	"github.com/mholt/archives"
	"github.com/samber/lo"
)

func songData(t *testing.T, title string) []byte {
	t.Helper()
	tl := timeline.New(title, 10, map[int]timeline.Chord{
		0: {{Tick: 0, Instrument: timeline.Piano, Pitch: 45}},
	})
	data, err := timeline.Encode(tl)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	return data
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("WriteFile(%s) error = %v", path, err)
	}
}

func names(rs []jukebox.Resource) []string {
	return lo.Map(rs, func(r jukebox.Resource, _ int) string { return r.Name() })
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"tune.song", true},
		{"TUNE.NBS", true},
		{"dir/tune.nbs", true},
		{"tune.mp3", false},
		{"song", false},
	}
	for _, tt := range tests {
		if got := Match(tt.name, DefaultExtensions); got != tt.want {
			t.Errorf("Match(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestDecode_ByExtension(t *testing.T) {
	tl, err := Decode("x.song", songData(t, ""))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if tl.Title != "x" {
		t.Errorf("Title = %q, want file name %q", tl.Title, "x")
	}

	if _, err := Decode("x.nbs", songData(t, "native")); err == nil {
		t.Errorf("native data decoded as NBS")
	}
	if _, err := Decode("x.song", []byte{1}); !errors.Is(err, timeline.ErrMalformed) {
		t.Errorf("Decode(truncated) error = %v, want malformed", err)
	}
}

func TestDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.song"), songData(t, "b"))
	writeFile(t, filepath.Join(dir, "a.nbs"), []byte("x"))
	writeFile(t, filepath.Join(dir, "notes.txt"), []byte("x"))
	if err := os.Mkdir(filepath.Join(dir, "sub.song"), 0755); err != nil {
		t.Fatal(err)
	}

	got, err := Dir(dir, DefaultExtensions)
	if err != nil {
		t.Fatalf("Dir() error = %v", err)
	}
	if want := []string{"a.nbs", "b.song"}; !slices.Equal(names(got), want) {
		t.Errorf("Dir() = %v, want %v", names(got), want)
	}

	if _, err := Dir(filepath.Join(dir, "missing"), DefaultExtensions); err == nil {
		t.Errorf("Dir(missing) succeeded")
	}
}

func makeZip(t *testing.T, dir string, files map[string][]byte) string {
	t.Helper()
	ctx := context.Background()
	src := filepath.Join(dir, "src")
	if err := os.Mkdir(src, 0755); err != nil {
		t.Fatal(err)
	}
	fileMap := make(map[string]string)
	for name, data := range files {
		p := filepath.Join(src, name)
		writeFile(t, p, data)
		fileMap[p] = "songs/" + name
	}

	infos, err := archives.FilesFromDisk(ctx, nil, fileMap)
	if err != nil {
		t.Fatalf("FilesFromDisk() error = %v", err)
	}
	out := filepath.Join(dir, "songs.zip")
	f, err := os.Create(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := (archives.Zip{}).Archive(ctx, f, infos); err != nil {
		t.Fatalf("Archive() error = %v", err)
	}
	return out
}

func TestArchive(t *testing.T) {
	dir := t.TempDir()
	zipPath := makeZip(t, dir, map[string][]byte{
		"two.song":   songData(t, "two"),
		"one.song":   songData(t, "one"),
		"readme.txt": []byte("hello"),
	})

	got, err := Archive(context.Background(), zipPath, DefaultExtensions)
	if err != nil {
		t.Fatalf("Archive() error = %v", err)
	}
	if want := []string{"one.song", "two.song"}; !slices.Equal(names(got), want) {
		t.Fatalf("Archive() = %v, want %v", names(got), want)
	}

	data, err := got[1].Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}
	tl, err := Decode(got[1].Name(), data)
	if err != nil || tl.Title != "two" {
		t.Errorf("Decode() = %v, %v, want title two", tl, err)
	}
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	songs := filepath.Join(dir, "songs")
	if err := os.Mkdir(songs, 0755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(songs, "a.song"), songData(t, "a"))
	single := filepath.Join(dir, "single.nbs")
	writeFile(t, single, []byte("x"))
	zipPath := makeZip(t, dir, map[string][]byte{"z.song": songData(t, "z")})

	got, err := Resolve(context.Background(), []string{single, songs, zipPath}, DefaultExtensions)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if want := []string{"single.nbs", "a.song", "z.song"}; !slices.Equal(names(got), want) {
		t.Errorf("Resolve() = %v, want %v", names(got), want)
	}

	other := filepath.Join(dir, "notes.txt")
	writeFile(t, other, []byte("just text"))
	if _, err := Resolve(context.Background(), []string{other}, DefaultExtensions); err == nil {
		t.Errorf("Resolve(%s) succeeded", other)
	}
	if _, err := Resolve(context.Background(), []string{filepath.Join(dir, "missing")}, DefaultExtensions); err == nil {
		t.Errorf("Resolve(missing) succeeded")
	}
}

func TestWatcher_ReportsNewSongs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "old.song"), songData(t, "old"))

	found := make(chan jukebox.Resource, 8)
	w, err := NewWatcher(dir, DefaultExtensions, func(r jukebox.Resource) { found <- r })
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	w.StartAsync()
	defer w.Stop()

	writeFile(t, filepath.Join(dir, "ignored.txt"), []byte("x"))
	writeFile(t, filepath.Join(dir, "new.song"), songData(t, "new"))

	select {
	case r := <-found:
		if r.Name() != "new.song" {
			t.Errorf("reported %q, want new.song", r.Name())
		}
	case <-time.After(5 * time.Second):
		t.Fatal("new song was not reported")
	}

	select {
	case r := <-found:
		t.Errorf("unexpected report %q", r.Name())
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcher_WaitsForCompleteSongs(t *testing.T) {
	dir := t.TempDir()
	found := make(chan jukebox.Resource, 8)
	w, err := NewWatcher(dir, DefaultExtensions, func(r jukebox.Resource) { found <- r })
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	w.StartAsync()
	defer w.Stop()

	full := songData(t, "slow")
	path := filepath.Join(dir, "slow.song")
	writeFile(t, path, full[:len(full)/2])

	select {
	case r := <-found:
		t.Fatalf("half-written %q was reported", r.Name())
	case <-time.After(200 * time.Millisecond):
	}

	writeFile(t, path, full)
	select {
	case r := <-found:
		if r.Name() != "slow.song" {
			t.Errorf("reported %q, want slow.song", r.Name())
		}
	case <-time.After(5 * time.Second):
		t.Fatal("completed song was not reported")
	}

	select {
	case r := <-found:
		t.Errorf("unexpected report %q", r.Name())
	case <-time.After(100 * time.Millisecond):
	}
}
