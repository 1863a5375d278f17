// Package catalog finds song resources in directories and archives and
// decodes them by file type.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gigurra/noteblock/cmd/jukebox"
	"github.com/gigurra/noteblock/cmd/jukebox/timeline"
	"github.com/mholt/archives"
	"github.com/samber/lo"
)

// DefaultExtensions are the song file types picked up from directories and
// archives.
var DefaultExtensions = []string{".song", ".nbs"}

// Match reports whether name has one of exts, ignoring case.
func Match(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return slices.ContainsFunc(exts, func(e string) bool { return strings.ToLower(e) == ext })
}

// Decode is a jukebox.Decoder choosing the codec by extension: .nbs files
// use the Note Block Studio format, everything else the native one. Songs
// without a title are named after their file.
func Decode(name string, data []byte) (*timeline.Timeline, error) {
	var (
		tl  *timeline.Timeline
		err error
	)
	if strings.EqualFold(filepath.Ext(name), ".nbs") {
		tl, err = timeline.DecodeNBS(data)
	} else {
		tl, err = timeline.Decode(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if tl.Title == "" {
		tl.Title = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	}
	return tl, nil
}

// Dir lists the song files directly inside dir, sorted by name.
func Dir(dir string, exts []string) ([]jukebox.Resource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot read directory: %w", err)
	}
	songs := lo.Filter(entries, func(e os.DirEntry, _ int) bool {
		return !e.IsDir() && Match(e.Name(), exts)
	})
	return lo.Map(songs, func(e os.DirEntry, _ int) jukebox.Resource {
		return jukebox.FileResource{Path: filepath.Join(dir, e.Name())}
	}), nil
}

// Resolve expands command line arguments into resources. Song files are
// taken as they are, directories are listed with Dir and anything else is
// opened as an archive.
func Resolve(ctx context.Context, paths []string, exts []string) ([]jukebox.Resource, error) {
	var out []jukebox.Resource
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", path, err)
		}

		switch {
		case info.IsDir():
			songs, err := Dir(path, exts)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			out = append(out, songs...)
		case Match(path, exts):
			out = append(out, jukebox.FileResource{Path: path})
		default:
			songs, err := Archive(ctx, path, exts)
			if err != nil {
				if errors.Is(err, archives.NoMatch) {
					return nil, fmt.Errorf("%s: not a song, directory or archive", path)
				}
				return nil, err
			}
			out = append(out, songs...)
		}
	}
	return out, nil
}
