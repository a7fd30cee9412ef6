package jobs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cloo-solutions/onetool/internal/domain"
	"github.com/cloo-solutions/onetool/internal/storage"
	"github.com/cloo-solutions/onetool/internal/telemetry"
)

const (
	SnapshotPrefix    = "catalog/"
	SnapshotLatestKey = SnapshotPrefix + "latest.json"

	snapshotHashMeta = "content-sha256"
)

// CatalogSource provides the tools to export.
type CatalogSource interface {
	EnabledTools(ctx context.Context) ([]*domain.Tool, error)
}

// SnapshotStore is the subset of storage.S3Client used by the exporter.
type SnapshotStore interface {
	PutObject(ctx context.Context, in storage.PutObjectInput) error
	HeadObject(ctx context.Context, key string) (*storage.ObjectMetadata, error)
}

// SnapshotTool is the public shape of a tool in the exported JSON.
type SnapshotTool struct {
	Slug          string   `json:"slug"`
	Title         string   `json:"title"`
	Category      string   `json:"category"`
	CategoryLabel string   `json:"category_label"`
	Description   string   `json:"description,omitempty"`
	Path          string   `json:"path"`
	Keywords      []string `json:"keywords,omitempty"`
}

// Snapshot is the document written to object storage.
type Snapshot struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Hash        string         `json:"hash"`
	Count       int            `json:"count"`
	Tools       []SnapshotTool `json:"tools"`
}

// SnapshotExporter uploads the enabled catalog as JSON whenever it changes.
type SnapshotExporter struct {
	source CatalogSource
	store  SnapshotStore
	now    func() time.Time

	mu       sync.Mutex
	lastHash string
	primed   bool
}

// NewSnapshotExporter creates a new SnapshotExporter instance
func NewSnapshotExporter(source CatalogSource, store SnapshotStore) *SnapshotExporter {
	return &SnapshotExporter{
		source: source,
		store:  store,
		now:    time.Now,
	}
}

// ProcessJobs implements the JobProcessor interface
func (e *SnapshotExporter) ProcessJobs(ctx context.Context) error {
	_, err := e.Export(ctx)
	return err
}

// Export writes a new snapshot if the catalog changed since the last export
// and reports whether anything was uploaded.
func (e *SnapshotExporter) Export(ctx context.Context) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "SnapshotExporter.Export", telemetry.SpanAttributes{
		Operation: "snapshot",
	})
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	tools, err := e.source.EnabledTools(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load catalog: %w", err)
	}

	entries := snapshotTools(tools)
	hash, err := hashTools(entries)
	if err != nil {
		return false, err
	}

	if !e.primed {
		e.lastHash = e.remoteHash(ctx)
		e.primed = true
	}
	if hash == e.lastHash {
		return false, nil
	}

	now := e.now().UTC()
	body, err := json.Marshal(Snapshot{
		GeneratedAt: now,
		Hash:        hash,
		Count:       len(entries),
		Tools:       entries,
	})
	if err != nil {
		return false, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	meta := map[string]string{snapshotHashMeta: hash}

	versioned := fmt.Sprintf("%s%d.json", SnapshotPrefix, now.Unix())
	if err := e.store.PutObject(ctx, storage.PutObjectInput{
		Key:          versioned,
		Body:         body,
		ContentType:  "application/json",
		CacheControl: "public, max-age=31536000, immutable",
		Metadata:     meta,
	}); err != nil {
		span.SetError(err)
		return false, err
	}

	if err := e.store.PutObject(ctx, storage.PutObjectInput{
		Key:          SnapshotLatestKey,
		Body:         body,
		ContentType:  "application/json",
		CacheControl: "public, max-age=60",
		Metadata:     meta,
	}); err != nil {
		span.SetError(err)
		return false, err
	}

	e.lastHash = hash
	log.Printf("snapshot: exported %d tools to %s (hash %s)", len(entries), versioned, hash[:12])
	return true, nil
}

// remoteHash reads the hash of the currently published snapshot so that a
// restart does not re-upload an unchanged catalog.
func (e *SnapshotExporter) remoteHash(ctx context.Context) string {
	meta, err := e.store.HeadObject(ctx, SnapshotLatestKey)
	if err != nil {
		if !errors.Is(err, storage.ErrObjectNotFound) {
			log.Printf("snapshot: failed to read %s: %v", SnapshotLatestKey, err)
		}
		return ""
	}
	for k, v := range meta.Metadata {
		if strings.EqualFold(k, snapshotHashMeta) {
			return v
		}
	}
	return ""
}

func snapshotTools(tools []*domain.Tool) []SnapshotTool {
	out := make([]SnapshotTool, 0, len(tools))
	for _, t := range tools {
		out = append(out, SnapshotTool{
			Slug:          t.Slug,
			Title:         t.Title,
			Category:      string(t.Category),
			CategoryLabel: t.Category.Label(),
			Description:   t.Description,
			Path:          t.Path,
			Keywords:      t.Keywords,
		})
	}
	slices.SortFunc(out, func(a, b SnapshotTool) int {
		return strings.Compare(a.Slug, b.Slug)
	})
	return out
}

func hashTools(tools []SnapshotTool) (string, error) {
	raw, err := json.Marshal(tools)
	if err != nil {
		return "", fmt.Errorf("failed to hash snapshot: %w", err)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
