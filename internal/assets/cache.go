package assets

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"reelforge/internal/fileutil"
	"reelforge/internal/logging"
	"reelforge/internal/script"
	"reelforge/internal/services"
	"reelforge/internal/textutil"
)

// EndingKey is the reserved scene_assets key for the synthetic poster scene.
const EndingKey = "ending_scene"

// SceneKey returns the cache key for a numbered scene.
func SceneKey(index int) string {
	return fmt.Sprintf("scene_%d", index)
}

// SceneRecord is the serializable subset of a SceneAsset needed to skip
// re-fetching on an offline run.
type SceneRecord struct {
	AudioPath     string       `json:"audio_path"`
	AudioDuration float64      `json:"audio_duration"`
	VideoPath     string       `json:"video_path,omitempty"`
	VideoMeta     *FootageMeta `json:"video_metadata,omitempty"`
	PosterPath    string       `json:"poster_path,omitempty"`
	Narration     string       `json:"narration,omitempty"`
}

// FilesPresent reports whether every file the record references still
// exists. A record is only trusted offline when this holds.
func (r SceneRecord) FilesPresent() bool {
	if r.AudioPath == "" || !fileutil.FileExists(r.AudioPath) {
		return false
	}
	if r.PosterPath != "" {
		return fileutil.FileExists(r.PosterPath)
	}
	return r.VideoPath != "" && fileutil.FileExists(r.VideoPath)
}

// Asset rebuilds a SceneAsset from the record.
func (r SceneRecord) Asset(index int, narration string, queries []string, ending bool) SceneAsset {
	asset := SceneAsset{
		Index:         index,
		Narration:     narration,
		VisualQueries: queries,
		AudioPath:     r.AudioPath,
		AudioDuration: r.AudioDuration,
		VideoPath:     r.VideoPath,
		PosterPath:    r.PosterPath,
		IsEndingScene: ending,
	}
	if r.VideoMeta != nil {
		asset.VideoMeta = *r.VideoMeta
	}
	return asset
}

// Document is one job's persisted intermediate state: everything an
// offline replay needs to skip the paid and network calls.
type Document struct {
	MovieDetails *MovieDetails          `json:"movie_details,omitempty"`
	VideoScript  *script.Script         `json:"video_script,omitempty"`
	SceneAssets  map[string]SceneRecord `json:"scene_assets,omitempty"`
}

// NewDocument returns an empty document ready to accumulate a run.
func NewDocument() *Document {
	return &Document{SceneAssets: make(map[string]SceneRecord)}
}

// PutScene records a completed scene's assets.
func (d *Document) PutScene(key string, record SceneRecord) {
	if d.SceneAssets == nil {
		d.SceneAssets = make(map[string]SceneRecord)
	}
	d.SceneAssets[key] = record
}

// Scene looks up a cached scene record.
func (d *Document) Scene(key string) (SceneRecord, bool) {
	record, ok := d.SceneAssets[key]
	return record, ok
}

// CacheStore persists one JSON document per job, keyed by the sanitized
// job name. Online runs write exactly once, after full success; offline
// runs only read.
type CacheStore struct {
	dir    string
	logger *slog.Logger
}

func NewCacheStore(dir string, logger *slog.Logger) *CacheStore {
	return &CacheStore{dir: dir, logger: logging.NewComponentLogger(logger, "cache")}
}

// Path returns the cache file location for a job name.
func (s *CacheStore) Path(jobName string) string {
	return filepath.Join(s.dir, textutil.SanitizeJobName(jobName)+"_cache.json")
}

// Load reads a job's cache document. A missing document is ErrNotFound;
// a corrupt one is a validation error, not silently ignored.
func (s *CacheStore) Load(jobName string) (*Document, error) {
	path := s.Path(jobName)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, services.Wrap(services.ErrNotFound, "cache", "load", "no cached data for "+jobName, err)
	}
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "cache", "load", "read cache file", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, services.Wrap(services.ErrValidation, "cache", "load", "corrupt cache document", err)
	}
	if doc.VideoScript != nil {
		doc.VideoScript.Normalize()
		if err := doc.VideoScript.Validate(); err != nil {
			return nil, services.Wrap(services.ErrValidation, "cache", "load", "cached script invalid", err)
		}
	}

	s.logger.Debug("cache loaded", logging.String("path", path), logging.Int("scenes", len(doc.SceneAssets)))
	return &doc, nil
}

// Save atomically writes the full accumulated document. Called once, at
// the very end of a successful online run.
func (s *CacheStore) Save(jobName string, doc *Document) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return services.Wrap(services.ErrTransient, "cache", "save", "create cache directory", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return services.Wrap(services.ErrValidation, "cache", "save", "encode cache document", err)
	}

	path := s.Path(jobName)
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return services.Wrap(services.ErrTransient, "cache", "save", "write cache file", err)
	}

	s.logger.Info("cache saved", logging.String("path", path), logging.Int("scenes", len(doc.SceneAssets)))
	return nil
}
