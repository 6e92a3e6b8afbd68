package qrvalidator

import (
	"runtime"
	"testing"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if opts.RootLabel != "QuestionnaireResponse" {
		t.Errorf("RootLabel = %q; want %q", opts.RootLabel, "QuestionnaireResponse")
	}

	// Validation flags
	if opts.ValidateValueSets != true {
		t.Error("ValidateValueSets should be true by default")
	}
	if opts.ValidateUnits != true {
		t.Error("ValidateUnits should be true by default")
	}
	if opts.StrictMode != false {
		t.Error("StrictMode should be false by default")
	}

	// Performance defaults
	if opts.WorkerCount != runtime.NumCPU() {
		t.Errorf("WorkerCount = %d; want %d", opts.WorkerCount, runtime.NumCPU())
	}
	if opts.EnablePooling != true {
		t.Error("EnablePooling should be true by default")
	}

	// Cache defaults
	if opts.FormCacheSize != 50 {
		t.Errorf("FormCacheSize = %d; want 50", opts.FormCacheSize)
	}
}

func TestWithRootLabel(t *testing.T) {
	opts := DefaultOptions()

	WithRootLabel("Response")(opts)
	if opts.RootLabel != "Response" {
		t.Errorf("RootLabel = %q; want %q", opts.RootLabel, "Response")
	}

	// Empty should not change
	WithRootLabel("")(opts)
	if opts.RootLabel != "Response" {
		t.Errorf("RootLabel = %q; want %q (unchanged)", opts.RootLabel, "Response")
	}
}

func TestWithValueSetChecks(t *testing.T) {
	opts := DefaultOptions()

	WithValueSetChecks(false)(opts)
	if opts.ValidateValueSets {
		t.Error("WithValueSetChecks(false) should disable value set validation")
	}

	WithValueSetChecks(true)(opts)
	if !opts.ValidateValueSets {
		t.Error("WithValueSetChecks(true) should enable value set validation")
	}
}

func TestWithUnitChecks(t *testing.T) {
	opts := DefaultOptions()

	WithUnitChecks(false)(opts)
	if opts.ValidateUnits {
		t.Error("WithUnitChecks(false) should disable unit validation")
	}

	WithUnitChecks(true)(opts)
	if !opts.ValidateUnits {
		t.Error("WithUnitChecks(true) should enable unit validation")
	}
}

func TestWithStrictMode(t *testing.T) {
	opts := DefaultOptions()

	WithStrictMode(true)(opts)
	if !opts.StrictMode {
		t.Error("WithStrictMode(true) should enable strict mode")
	}
}

func TestWithWorkerCount(t *testing.T) {
	opts := DefaultOptions()

	WithWorkerCount(4)(opts)
	if opts.WorkerCount != 4 {
		t.Errorf("WorkerCount = %d; want 4", opts.WorkerCount)
	}

	// Zero should not change
	WithWorkerCount(0)(opts)
	if opts.WorkerCount != 4 {
		t.Errorf("WorkerCount = %d; want 4 (unchanged)", opts.WorkerCount)
	}

	// Negative should not change
	WithWorkerCount(-1)(opts)
	if opts.WorkerCount != 4 {
		t.Errorf("WorkerCount = %d; want 4 (unchanged)", opts.WorkerCount)
	}
}

func TestWithPooling(t *testing.T) {
	opts := DefaultOptions()

	WithPooling(false)(opts)
	if opts.EnablePooling {
		t.Error("WithPooling(false) should disable pooling")
	}
}

func TestWithFormCacheSize(t *testing.T) {
	opts := DefaultOptions()

	WithFormCacheSize(100)(opts)
	if opts.FormCacheSize != 100 {
		t.Errorf("FormCacheSize = %d; want 100", opts.FormCacheSize)
	}

	// Zero should not change
	WithFormCacheSize(0)(opts)
	if opts.FormCacheSize != 100 {
		t.Error("Zero should not change FormCacheSize")
	}
}

func TestStrictOptions(t *testing.T) {
	opts := DefaultOptions()

	for _, opt := range StrictOptions() {
		opt(opts)
	}

	if !opts.ValidateValueSets {
		t.Error("StrictOptions should enable value set checks")
	}
	if !opts.ValidateUnits {
		t.Error("StrictOptions should enable unit checks")
	}
	if !opts.StrictMode {
		t.Error("StrictOptions should enable strict mode")
	}
}

func TestStructuralOptions(t *testing.T) {
	opts := DefaultOptions()

	for _, opt := range StructuralOptions() {
		opt(opts)
	}

	if opts.ValidateValueSets {
		t.Error("StructuralOptions should disable value set checks")
	}
	if opts.ValidateUnits {
		t.Error("StructuralOptions should disable unit checks")
	}
}

func TestOptionsCombination(t *testing.T) {
	opts := DefaultOptions()

	// Apply multiple options
	options := []Option{
		WithRootLabel("Survey"),
		WithValueSetChecks(false),
		WithWorkerCount(2),
		WithFormCacheSize(10),
	}

	for _, opt := range options {
		opt(opts)
	}

	if opts.RootLabel != "Survey" {
		t.Errorf("RootLabel = %q; want %q", opts.RootLabel, "Survey")
	}
	if opts.ValidateValueSets {
		t.Error("ValidateValueSets should be false")
	}
	if opts.WorkerCount != 2 {
		t.Errorf("WorkerCount = %d; want 2", opts.WorkerCount)
	}
	if opts.FormCacheSize != 10 {
		t.Errorf("FormCacheSize = %d; want 10", opts.FormCacheSize)
	}
}

func BenchmarkApplyOptions(b *testing.B) {
	options := []Option{
		WithRootLabel("QuestionnaireResponse"),
		WithValueSetChecks(true),
		WithUnitChecks(true),
		WithWorkerCount(8),
		WithFormCacheSize(100),
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		opts := DefaultOptions()
		for _, opt := range options {
			opt(opts)
		}
	}
}
