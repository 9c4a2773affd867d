package output

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/natefinch/atomic"
	"github.com/segmentio/encoding/json"
)

const ManifestFile = ".adapter-manifest.json"

type Manifest struct {
	Version int             `json:"version"`
	Files   []ManifestEntry `json:"files"`
}

type ManifestEntry struct {
	Path     string `json:"path"`
	Size     int64  `json:"size"`
	Encoding string `json:"encoding,omitempty"`
}

// writeManifest lists entries (already sorted) in the stage root. It holds
// no timestamps so identical builds produce identical manifests.
func writeManifest(dir string, entries []Entry) (Entry, error) {
	m := Manifest{Version: 1, Files: make([]ManifestEntry, 0, len(entries))}
	for _, e := range entries {
		m.Files = append(m.Files, ManifestEntry{Path: e.Path, Size: e.Size, Encoding: e.Encoding})
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return Entry{}, fmt.Errorf("encode manifest: %w", err)
	}
	data = append(data, '\n')

	if err := atomic.WriteFile(filepath.Join(dir, ManifestFile), bytes.NewReader(data)); err != nil {
		return Entry{}, fmt.Errorf("write manifest: %w", err)
	}
	return Entry{Path: ManifestFile, Size: int64(len(data))}, nil
}

func ReadManifest(data []byte) (Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("decode manifest: %w", err)
	}
	return m, nil
}
