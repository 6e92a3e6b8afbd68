package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/buger/jsonparser"

	"github.com/reason-healthcare/qrvalidator/cache"
	"github.com/reason-healthcare/qrvalidator/logger"
	"github.com/reason-healthcare/qrvalidator/model"
	"github.com/reason-healthcare/qrvalidator/service"
)

// DefaultCacheSize bounds the form cache when no capacity is configured.
const DefaultCacheSize = 50

// FormLoader resolves questionnaires by canonical URL from a list of
// search directories. Resolved forms are cached by URL in an LRU, so
// repeated resolutions of the same questionnaire skip the directory
// scan entirely.
type FormLoader struct {
	dirs      []string
	cache     *cache.Cache[string, *model.Form]
	converter *R4Converter
}

// NewFormLoader creates a loader over the given search directories.
// A non-positive cacheSize falls back to DefaultCacheSize.
func NewFormLoader(dirs []string, cacheSize int) *FormLoader {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	return &FormLoader{
		dirs:      dirs,
		cache:     cache.New[string, *model.Form](cacheSize),
		converter: NewR4Converter(),
	}
}

// AddDirectory appends a search directory.
func (l *FormLoader) AddDirectory(dir string) {
	l.dirs = append(l.dirs, dir)
}

// Resolve returns the questionnaire with the given canonical URL,
// scanning the search directories on a cache miss.
func (l *FormLoader) Resolve(ctx context.Context, url string) (*model.Form, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if form, ok := l.cache.Get(url); ok {
		return form, nil
	}

	for _, dir := range l.dirs {
		form, err := l.scanDirectory(dir, url)
		if err != nil {
			logger.Warn("scan %s: %v", dir, err)
			continue
		}
		if form != nil {
			l.cache.Set(url, form)
			return form, nil
		}
	}

	return nil, fmt.Errorf("questionnaire not found: %s", url)
}

// scanDirectory probes every JSON file in dir for a questionnaire with
// the requested URL. Files that are not questionnaires, or that fail to
// parse, are skipped.
func (l *FormLoader) scanDirectory(dir, url string) (*model.Form, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if !probeQuestionnaire(data, url) {
			continue
		}

		form, err := l.converter.Convert(data)
		if err != nil {
			logger.Warn("parse %s: %v", path, err)
			continue
		}
		logger.Debug("resolved questionnaire %s from %s", url, path)
		return form, nil
	}

	return nil, nil
}

// probeQuestionnaire checks the two top-level keys that identify a
// matching file without decoding the whole document.
func probeQuestionnaire(data []byte, url string) bool {
	resourceType, err := jsonparser.GetString(data, "resourceType")
	if err != nil || resourceType != "Questionnaire" {
		return false
	}
	candidate, err := jsonparser.GetString(data, "url")
	return err == nil && candidate == url
}

// Register pre-seeds the cache with an already-built form. Forms
// without a canonical URL cannot be resolved and are ignored.
func (l *FormLoader) Register(form *model.Form) {
	if form == nil || form.URL == "" {
		return
	}
	l.cache.Set(form.URL, form)
}

// LoadFromFile parses one questionnaire file and registers it.
func (l *FormLoader) LoadFromFile(path string) (*model.Form, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return l.LoadFromJSON(data)
}

// LoadFromJSON parses a questionnaire from JSON data and registers it.
// Duplicate linkIds surface here as an error, before the form can reach
// a validation.
func (l *FormLoader) LoadFromJSON(data []byte) (*model.Form, error) {
	form, err := l.converter.Convert(data)
	if err != nil {
		return nil, err
	}
	if _, err := model.BuildIndex(form); err != nil {
		return nil, err
	}
	l.Register(form)
	return form, nil
}

// LoadDirectory parses and registers every questionnaire in a
// directory, returning the number loaded. Files that are not
// questionnaires are skipped silently; questionnaires that fail to
// parse are skipped with a warning.
func (l *FormLoader) LoadDirectory(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read directory: %w", err)
	}

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if resourceType, err := jsonparser.GetString(data, "resourceType"); err != nil || resourceType != "Questionnaire" {
			continue
		}

		if _, err := l.LoadFromJSON(data); err != nil {
			logger.Warn("load %s: %v", path, err)
			continue
		}
		loaded++
	}

	logger.Info("loaded %d questionnaire(s) from %s", loaded, dir)
	return loaded, nil
}

// CacheStats reports the form cache's hit and eviction counters.
func (l *FormLoader) CacheStats() cache.Stats {
	return l.cache.Stats()
}

// Clear empties the form cache.
func (l *FormLoader) Clear() {
	l.cache.Clear()
}

// Verify interface compliance
var _ service.FormSource = (*FormLoader)(nil)
