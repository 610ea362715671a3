// Package catalog provides the source-of-truth snapshot used to seed the
// cache at warmup: the bundled catalog shipped with the binary, optionally
// overridden by a JSON file on disk for content updates without a rebuild.
package catalog

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mezoapp/salon-core/internal/domain"
)

//go:embed seed.json
var seedFS embed.FS

// Snapshot is the full catalog payload: categories, services, and the
// default profile for first-run installs.
type Snapshot struct {
	Categories []domain.Category `json:"categories"`
	Services   []domain.Service  `json:"services"`
	Profile    domain.Profile    `json:"profile"`
}

// Source yields the current source-of-truth snapshot. The bundled source
// is the default; a remote implementation can replace it without touching
// the warmup orchestrator.
type Source interface {
	Snapshot(ctx context.Context) (*Snapshot, error)
}

// Bundled is a Source backed by the embedded seed, optionally overridden
// by a JSON file at Path.
type Bundled struct {
	// Path optionally points at an on-disk snapshot overriding the
	// embedded seed. Ignored when empty or unreadable.
	Path string
}

// Snapshot implements Source.
func (b Bundled) Snapshot(context.Context) (*Snapshot, error) {
	if b.Path != "" {
		if raw, err := os.ReadFile(b.Path); err == nil {
			var snap Snapshot
			if err := json.Unmarshal(raw, &snap); err == nil {
				return &snap, nil
			}
			// Fall through to the embedded seed on a corrupt override.
		}
	}

	raw, err := seedFS.ReadFile("seed.json")
	if err != nil {
		return nil, fmt.Errorf("read bundled catalog: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("parse bundled catalog: %w", err)
	}
	return &snap, nil
}
