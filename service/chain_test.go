package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/reason-healthcare/qrvalidator/model"
)

// mockValueSetOracle is a test implementation backed by a fixed member set.
type mockValueSetOracle struct {
	codings map[string]bool
	strings map[string]bool
	err     error
}

func (m *mockValueSetOracle) ContainsCoding(_ context.Context, valueSetURL, system, code string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.codings[valueSetURL+"|"+system+"|"+code], nil
}

func (m *mockValueSetOracle) ContainsString(_ context.Context, valueSetURL, value string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.strings[valueSetURL+"|"+value], nil
}

func TestOracleChain(t *testing.T) {
	first := &mockValueSetOracle{
		codings: map[string]bool{"vs1|sys|a": true},
	}
	second := &mockValueSetOracle{
		codings: map[string]bool{"vs1|sys|b": true},
	}

	chain := NewOracleChain(first, second)

	// Member of the first oracle
	ok, err := chain.ContainsCoding(context.Background(), "vs1", "sys", "a")
	if err != nil {
		t.Fatalf("ContainsCoding failed: %v", err)
	}
	if !ok {
		t.Error("expected membership from first oracle")
	}

	// Member of the second oracle (fallback)
	ok, err = chain.ContainsCoding(context.Background(), "vs1", "sys", "b")
	if err != nil {
		t.Fatalf("ContainsCoding failed: %v", err)
	}
	if !ok {
		t.Error("expected membership from second oracle")
	}

	// Member of neither
	ok, err = chain.ContainsCoding(context.Background(), "vs1", "sys", "c")
	if err != nil {
		t.Fatalf("ContainsCoding failed: %v", err)
	}
	if ok {
		t.Error("expected no membership")
	}
}

func TestOracleChain_ErrorFallthrough(t *testing.T) {
	oracleErr := errors.New("backend down")
	failing := &mockValueSetOracle{err: oracleErr}
	working := &mockValueSetOracle{
		strings: map[string]bool{"vs1|blue": true},
	}

	chain := NewOracleChain(failing, working)

	// A failing oracle does not mask a later positive answer
	ok, err := chain.ContainsString(context.Background(), "vs1", "blue")
	if err != nil {
		t.Fatalf("ContainsString failed: %v", err)
	}
	if !ok {
		t.Error("expected membership despite failing first oracle")
	}

	// With no positive answer the last error surfaces
	_, err = chain.ContainsString(context.Background(), "vs1", "red")
	if !errors.Is(err, oracleErr) {
		t.Errorf("expected oracle error, got %v", err)
	}
}

func TestOracleChain_Add(t *testing.T) {
	chain := NewOracleChain(nil)
	if chain.Len() != 0 {
		t.Errorf("Len() = %d; want 0", chain.Len())
	}

	chain.Add(&mockValueSetOracle{codings: map[string]bool{"vs|s|c": true}})
	chain.Add(nil)
	if chain.Len() != 1 {
		t.Errorf("Len() = %d; want 1", chain.Len())
	}

	ok, err := chain.ContainsCoding(context.Background(), "vs", "s", "c")
	if err != nil || !ok {
		t.Errorf("ContainsCoding = %v, %v; want true, nil", ok, err)
	}
}

func TestNullImplementations(t *testing.T) {
	// NullValueSetOracle is permissive
	nvo := NullValueSetOracle{}
	ok, err := nvo.ContainsCoding(context.Background(), "vs", "sys", "code")
	if err != nil || !ok {
		t.Errorf("NullValueSetOracle.ContainsCoding = %v, %v; want true, nil", ok, err)
	}
	ok, err = nvo.ContainsString(context.Background(), "vs", "value")
	if err != nil || !ok {
		t.Errorf("NullValueSetOracle.ContainsString = %v, %v; want true, nil", ok, err)
	}

	// NullUnitOracle treats everything as comparable and equal
	nuo := NullUnitOracle{}
	if !nuo.Compatible("kg", "furlong") {
		t.Error("NullUnitOracle.Compatible should always report true")
	}
	cmp, err := nuo.Compare(decimal.NewFromInt(1), "kg", decimal.NewFromInt(2), "g")
	if err != nil || cmp != 0 {
		t.Errorf("NullUnitOracle.Compare = %d, %v; want 0, nil", cmp, err)
	}

	// NullFormSource resolves nothing
	nfs := NullFormSource{}
	_, err = nfs.Resolve(context.Background(), "http://example.org/form")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("NullFormSource.Resolve should return ErrNotFound, got %v", err)
	}
}

// mockFormSource is a test implementation over a fixed form map.
type mockFormSource struct {
	forms map[string]*model.Form
}

func (m *mockFormSource) Resolve(_ context.Context, url string) (*model.Form, error) {
	if f, ok := m.forms[url]; ok {
		return f, nil
	}
	return nil, ErrNotFound
}

func TestServices(t *testing.T) {
	services := NewServices()

	// Null implementations by default
	if _, err := services.Forms.Resolve(context.Background(), "url"); !errors.Is(err, ErrNotFound) {
		t.Error("default Forms should return ErrNotFound")
	}

	// Fluent replacement
	source := &mockFormSource{
		forms: map[string]*model.Form{
			"http://example.org/form": {URL: "http://example.org/form", Title: "Custom"},
		},
	}
	services.WithForms(source).WithValueSets(NullValueSetOracle{}).WithUnits(NullUnitOracle{})

	f, err := services.Forms.Resolve(context.Background(), "http://example.org/form")
	if err != nil {
		t.Fatalf("Forms.Resolve failed: %v", err)
	}
	if f.Title != "Custom" {
		t.Errorf("Title = %q; want %q", f.Title, "Custom")
	}
}

func BenchmarkOracleChain(b *testing.B) {
	first := &mockValueSetOracle{codings: make(map[string]bool)}
	second := &mockValueSetOracle{
		codings: map[string]bool{"vs|sys|code": true},
	}

	chain := NewOracleChain(first, second)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		chain.ContainsCoding(context.Background(), "vs", "sys", "code")
	}
}
