package qrvalidator

import (
	"runtime"
)

// DefaultRootLabel is the path prefix used for issues when no override is
// configured.
const DefaultRootLabel = "QuestionnaireResponse"

// DefaultFormCacheSize is the number of questionnaires the loader keeps
// resident before evicting the least recently used entry.
const DefaultFormCacheSize = 50

// Option configures the Validator.
type Option func(*Options)

// Options holds all configuration for the Validator.
type Options struct {
	// RootLabel is the first segment of every issue path.
	RootLabel string

	// Validation flags
	ValidateValueSets bool
	ValidateUnits     bool
	StrictMode        bool

	// Performance
	WorkerCount   int
	EnablePooling bool

	// FormCacheSize bounds the loader's questionnaire cache.
	FormCacheSize int
}

// DefaultOptions returns the default configuration.
func DefaultOptions() *Options {
	return &Options{
		RootLabel: DefaultRootLabel,

		// Oracle-backed checks run whenever a service is attached
		ValidateValueSets: true,
		ValidateUnits:     true,

		// Performance defaults
		WorkerCount:   runtime.NumCPU(),
		EnablePooling: true,

		FormCacheSize: DefaultFormCacheSize,
	}
}

// --- Validation Options ---

// WithRootLabel overrides the first segment of issue paths.
// An empty label is ignored.
func WithRootLabel(label string) Option {
	return func(o *Options) {
		if label != "" {
			o.RootLabel = label
		}
	}
}

// WithValueSetChecks enables answerValueSet membership validation.
// Requires a ValueSetOracle to be configured.
func WithValueSetChecks(enable bool) Option {
	return func(o *Options) {
		o.ValidateValueSets = enable
	}
}

// WithUnitChecks enables quantity range and unit validation.
// Requires a UnitOracle to be configured.
func WithUnitChecks(enable bool) Option {
	return func(o *Options) {
		o.ValidateUnits = enable
	}
}

// WithStrictMode treats warnings as errors.
func WithStrictMode(enable bool) Option {
	return func(o *Options) {
		o.StrictMode = enable
	}
}

// --- Performance Options ---

// WithWorkerCount sets the number of workers for batch validation.
// Defaults to runtime.NumCPU().
func WithWorkerCount(count int) Option {
	return func(o *Options) {
		if count > 0 {
			o.WorkerCount = count
		}
	}
}

// WithPooling enables or disables object pooling.
// Pooling reduces GC pressure but requires calling Release() on results.
func WithPooling(enable bool) Option {
	return func(o *Options) {
		o.EnablePooling = enable
	}
}

// --- Cache Options ---

// WithFormCacheSize sets the loader's questionnaire cache capacity.
func WithFormCacheSize(size int) Option {
	return func(o *Options) {
		if size > 0 {
			o.FormCacheSize = size
		}
	}
}

// --- Presets ---

// StrictOptions returns options for strict validation.
// Enables all checks and treats warnings as errors.
func StrictOptions() []Option {
	return []Option{
		WithValueSetChecks(true),
		WithUnitChecks(true),
		WithStrictMode(true),
	}
}

// StructuralOptions returns options for running without terminology or
// unit services. Oracle-backed checks are skipped entirely.
func StructuralOptions() []Option {
	return []Option{
		WithValueSetChecks(false),
		WithUnitChecks(false),
	}
}
