package terminology

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/gofhir/fhir/r4"
)

// LoadStats contains statistics about terminology loading.
type LoadStats struct {
	CodeSystemsLoaded int64
	ValueSetsLoaded   int64
	Errors            int64
}

// LoadFromJSON loads CodeSystems or ValueSets from JSON data.
// Auto-detects Bundle vs single resource format.
func (s *InMemoryValueSetService) LoadFromJSON(data []byte) (*LoadStats, error) {
	stats := &LoadStats{}

	// Detect resource type
	var probe struct {
		ResourceType string `json:"resourceType"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	switch probe.ResourceType {
	case "Bundle":
		// Try loading as CodeSystems first
		csLoaded, _ := s.loadCodeSystemsFromBundle(data)
		stats.CodeSystemsLoaded += csLoaded

		// Then try ValueSets
		vsLoaded, _ := s.loadValueSetsFromBundle(data)
		stats.ValueSetsLoaded += vsLoaded

	case "CodeSystem":
		var cs r4.CodeSystem
		if err := json.Unmarshal(data, &cs); err != nil {
			return nil, fmt.Errorf("failed to parse CodeSystem: %w", err)
		}
		if err := s.LoadR4CodeSystem(&cs); err != nil {
			stats.Errors++
			return stats, err
		}
		stats.CodeSystemsLoaded++

	case "ValueSet":
		var vs r4.ValueSet
		if err := json.Unmarshal(data, &vs); err != nil {
			return nil, fmt.Errorf("failed to parse ValueSet: %w", err)
		}
		if err := s.LoadR4ValueSet(&vs); err != nil {
			stats.Errors++
			return stats, err
		}
		stats.ValueSetsLoaded++

	default:
		return nil, fmt.Errorf("unsupported resourceType: %s", probe.ResourceType)
	}

	return stats, nil
}

// LoadFromDirectory loads CodeSystems and ValueSets from a directory.
// This is useful for loading terminology from IG packages.
// CodeSystems are loaded before ValueSets to ensure filter expansion works.
func (s *InMemoryValueSetService) LoadFromDirectory(dirPath string) (*LoadStats, error) {
	stats := &LoadStats{}

	// Check if directory exists
	info, err := os.Stat(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to access directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dirPath)
	}

	// Read all JSON files
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	codeSystems, valueSets := categorizeEntries(entries)

	// Load CodeSystems first
	for _, name := range codeSystems {
		data, err := os.ReadFile(filepath.Join(dirPath, name))
		if err != nil {
			atomic.AddInt64(&stats.Errors, 1)
			continue
		}
		s.loadCodeSystemData(data, stats)
	}

	// Then load ValueSets
	for _, name := range valueSets {
		data, err := os.ReadFile(filepath.Join(dirPath, name))
		if err != nil {
			atomic.AddInt64(&stats.Errors, 1)
			continue
		}
		s.loadValueSetData(data, stats)
	}

	return stats, nil
}

// LoadFromFS loads CodeSystems and ValueSets from a filesystem, such as an
// embedded artifact bundle. CodeSystems are loaded before ValueSets.
func (s *InMemoryValueSetService) LoadFromFS(fsys fs.FS, dir string) (*LoadStats, error) {
	stats := &LoadStats{}

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	codeSystems, valueSets := categorizeEntries(entries)

	for _, name := range codeSystems {
		data, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			atomic.AddInt64(&stats.Errors, 1)
			continue
		}
		s.loadCodeSystemData(data, stats)
	}

	for _, name := range valueSets {
		data, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			atomic.AddInt64(&stats.Errors, 1)
			continue
		}
		s.loadValueSetData(data, stats)
	}

	return stats, nil
}

// categorizeEntries separates directory entries by resource type prefix.
// FHIR packages use consistent file naming (CodeSystem-*.json, ValueSet-*.json).
func categorizeEntries(entries []fs.DirEntry) (codeSystems, valueSets []string) {
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		// Skip package metadata files
		name := entry.Name()
		if name == "package.json" || name == ".index.json" {
			continue
		}

		switch {
		case strings.HasPrefix(name, "CodeSystem-"):
			codeSystems = append(codeSystems, name)
		case strings.HasPrefix(name, "ValueSet-"):
			valueSets = append(valueSets, name)
		}
	}
	return codeSystems, valueSets
}

// loadCodeSystemData parses and loads one CodeSystem, recording stats.
func (s *InMemoryValueSetService) loadCodeSystemData(data []byte, stats *LoadStats) {
	var cs r4.CodeSystem
	if err := json.Unmarshal(data, &cs); err != nil {
		atomic.AddInt64(&stats.Errors, 1)
		return
	}
	if err := s.LoadR4CodeSystem(&cs); err != nil {
		atomic.AddInt64(&stats.Errors, 1)
		return
	}
	atomic.AddInt64(&stats.CodeSystemsLoaded, 1)
}

// loadValueSetData parses and loads one ValueSet, recording stats.
func (s *InMemoryValueSetService) loadValueSetData(data []byte, stats *LoadStats) {
	var vs r4.ValueSet
	if err := json.Unmarshal(data, &vs); err != nil {
		atomic.AddInt64(&stats.Errors, 1)
		return
	}
	if err := s.LoadR4ValueSet(&vs); err != nil {
		atomic.AddInt64(&stats.Errors, 1)
		return
	}
	atomic.AddInt64(&stats.ValueSetsLoaded, 1)
}

// bundleEntry represents an entry in a FHIR Bundle.
type bundleEntry struct {
	Resource json.RawMessage `json:"resource"`
}

// bundle represents a minimal FHIR Bundle structure.
type bundle struct {
	ResourceType string        `json:"resourceType"`
	Entry        []bundleEntry `json:"entry"`
}

// resourceLoader is a function type for loading a specific resource type.
type resourceLoader func(data json.RawMessage) error

// loadResourcesFromBundle is a generic function to load resources from a Bundle JSON.
func loadResourcesFromBundle(data []byte, targetType string, loader resourceLoader) (loaded, errors int64) {
	var b bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return 0, 1
	}

	if b.ResourceType != "Bundle" {
		return 0, 1
	}

	for _, entry := range b.Entry {
		if entry.Resource == nil {
			continue
		}

		var probe struct {
			ResourceType string `json:"resourceType"`
		}
		if err := json.Unmarshal(entry.Resource, &probe); err != nil {
			continue
		}

		if probe.ResourceType != targetType {
			continue
		}

		if err := loader(entry.Resource); err != nil {
			errors++
			continue
		}
		loaded++
	}

	return loaded, errors
}

// loadCodeSystemsFromBundle loads CodeSystems from a Bundle JSON.
func (s *InMemoryValueSetService) loadCodeSystemsFromBundle(data []byte) (loaded, errors int64) {
	return loadResourcesFromBundle(data, "CodeSystem", func(raw json.RawMessage) error {
		var cs r4.CodeSystem
		if err := json.Unmarshal(raw, &cs); err != nil {
			return err
		}
		return s.LoadR4CodeSystem(&cs)
	})
}

// loadValueSetsFromBundle loads ValueSets from a Bundle JSON.
func (s *InMemoryValueSetService) loadValueSetsFromBundle(data []byte) (loaded, errors int64) {
	return loadResourcesFromBundle(data, "ValueSet", func(raw json.RawMessage) error {
		var vs r4.ValueSet
		if err := json.Unmarshal(raw, &vs); err != nil {
			return err
		}
		return s.LoadR4ValueSet(&vs)
	})
}
