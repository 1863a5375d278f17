package catalog

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"sort"

	"github.com/gigurra/noteblock/cmd/jukebox"
	"github.com/mholt/archives"
)

// Archive loads every song file inside an archive into memory. Any format
// the archives package can identify and extract is accepted.
func Archive(ctx context.Context, archivePath string, exts []string) ([]jukebox.Resource, error) {
	archiveFile, err := os.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("cannot open archive: %w", err)
	}
	defer archiveFile.Close()

	format, reader, err := archives.Identify(ctx, archivePath, archiveFile)
	if err != nil {
		return nil, fmt.Errorf("cannot identify archive format: %w", err)
	}

	extractor, ok := format.(archives.Extractor)
	if !ok {
		return nil, fmt.Errorf("%s: format does not support extraction", archivePath)
	}

	// For formats that need seeking (zip, 7z), we need to use the file directly
	var archiveReader io.Reader = reader
	switch format.(type) {
	case archives.Zip, archives.SevenZip:
		if _, err := archiveFile.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("cannot rewind archive: %w", err)
		}
		archiveReader = archiveFile
	}

	type entry struct {
		name string
		data []byte
	}
	var entries []entry

	err = extractor.Extract(ctx, archiveReader, func(ctx context.Context, f archives.FileInfo) error {
		if f.IsDir() || !Match(f.NameInArchive, exts) {
			return nil
		}
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("cannot open %s: %w", f.NameInArchive, err)
		}
		defer rc.Close()

		data, err := io.ReadAll(rc)
		if err != nil {
			return fmt.Errorf("cannot read %s: %w", f.NameInArchive, err)
		}
		entries = append(entries, entry{name: f.NameInArchive, data: data})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", archivePath, err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })

	out := make([]jukebox.Resource, 0, len(entries))
	for _, e := range entries {
		out = append(out, jukebox.BytesResource{Title: path.Base(e.name), Data: e.data})
	}
	return out, nil
}
