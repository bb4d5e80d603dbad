// Package staging owns the filesystem hand-off between pipeline stages:
// an append-only area of raw API responses and the staged CSV the
// transformer writes for the loader.
package staging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonboulle/clockwork"
)

// rawTimestampLayout names raw files down to the second so successive
// extraction runs never collide.
const rawTimestampLayout = "20060102_150405"

// RawFile is one discovered raw response with the city inferred from its
// filename.
type RawFile struct {
	Path string
	City string
}

// RawStore manages the append-only raw staging directory. Files follow
// the {city}_raw_{timestamp}.json convention; earlier runs are superseded
// by later ones but never deleted or overwritten.
type RawStore struct {
	dir   string
	clock clockwork.Clock
}

// NewRawStore creates the raw directory if needed.
func NewRawStore(dir string) (*RawStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create raw dir: %w", err)
	}
	return &RawStore{dir: dir, clock: clockwork.NewRealClock()}, nil
}

// SetClock swaps the time source used for file timestamps.
func (s *RawStore) SetClock(clk clockwork.Clock) {
	s.clock = clk
}

// Write stores one response verbatim under a fresh timestamped name and
// returns the path. It refuses to overwrite: a name collision (same city
// within the same second) is an error, not a silent replacement.
func (s *RawStore) Write(city string, payload []byte) (string, error) {
	name := fmt.Sprintf("%s_raw_%s.json", strings.ToLower(city), s.clock.Now().Format(rawTimestampLayout))
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create raw file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(payload); err != nil {
		return "", fmt.Errorf("write raw file: %w", err)
	}
	return path, nil
}

// List discovers every raw file ever written, across all extraction runs,
// in lexical order.
func (s *RawStore) List() ([]RawFile, error) {
	paths, err := filepath.Glob(filepath.Join(s.dir, "*_raw_*.json"))
	if err != nil {
		return nil, fmt.Errorf("glob raw dir: %w", err)
	}

	files := make([]RawFile, 0, len(paths))
	for _, p := range paths {
		files = append(files, RawFile{Path: p, City: CityFromFilename(filepath.Base(p))})
	}
	return files, nil
}

// CityFromFilename recovers the city name from a raw filename, e.g.
// "delhi_raw_20260824_100000.json" → "Delhi". Only the first rune is
// capitalized, mirroring how Write lowercases the whole name.
func CityFromFilename(name string) string {
	base := strings.TrimSuffix(name, ".json")
	city, _, found := strings.Cut(base, "_raw_")
	if !found || city == "" {
		return ""
	}
	return strings.ToUpper(city[:1]) + city[1:]
}
