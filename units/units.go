// Package units provides a unit oracle backed by a built-in table of UCUM
// unit codes. Each known code carries a dimension and an exact decimal
// factor scaling it to the dimension's base unit, so quantities in
// different units of the same dimension compare without floating point
// error.
package units

import (
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/reason-healthcare/qrvalidator/service"
)

// Dimensions of the built-in unit table. RegisterUnit accepts any string;
// two codes are compatible when their dimensions are equal.
const (
	DimensionMass   = "mass"
	DimensionLength = "length"
	DimensionTime   = "time"
	DimensionVolume = "volume"
	DimensionUnity  = "1"
)

// unitEntry describes one unit code: its dimension and the factor that
// scales a value in this unit to the dimension's base unit.
type unitEntry struct {
	dimension string
	factor    decimal.Decimal
}

// InMemoryUnitService implements service.UnitOracle over a registry of
// unit codes. The built-in table covers the metric mass, length, time and
// volume units common in questionnaire answers; callers extend it with
// RegisterUnit.
type InMemoryUnitService struct {
	mu    sync.RWMutex
	units map[string]unitEntry
}

// NewInMemoryUnitService creates a unit service with the built-in table.
func NewInMemoryUnitService() *InMemoryUnitService {
	s := &InMemoryUnitService{
		units: make(map[string]unitEntry, 32),
	}
	s.loadBuiltinUnits()
	return s
}

// RegisterUnit adds or replaces a unit code. The factor scales a value in
// this unit to the base unit of its dimension; codes sharing a dimension
// become mutually comparable.
func (s *InMemoryUnitService) RegisterUnit(code, dimension string, factor decimal.Decimal) {
	s.mu.Lock()
	s.units[code] = unitEntry{dimension: dimension, factor: factor}
	s.mu.Unlock()
}

// Compatible implements service.UnitOracle. Unknown codes are never
// compatible.
func (s *InMemoryUnitService) Compatible(a, b string) bool {
	ua, ok := s.lookup(a)
	if !ok {
		return false
	}
	ub, ok := s.lookup(b)
	if !ok {
		return false
	}
	return ua.dimension == ub.dimension
}

// Compare implements service.UnitOracle. Both values are scaled to the
// shared base unit before comparison.
func (s *InMemoryUnitService) Compare(valA decimal.Decimal, codeA string, valB decimal.Decimal, codeB string) (int, error) {
	ua, ok := s.lookup(codeA)
	if !ok {
		return 0, fmt.Errorf("unknown unit code: %s", codeA)
	}
	ub, ok := s.lookup(codeB)
	if !ok {
		return 0, fmt.Errorf("unknown unit code: %s", codeB)
	}
	if ua.dimension != ub.dimension {
		return 0, fmt.Errorf("units %s and %s measure different dimensions", codeA, codeB)
	}
	return valA.Mul(ua.factor).Cmp(valB.Mul(ub.factor)), nil
}

// Count returns the number of registered unit codes.
func (s *InMemoryUnitService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.units)
}

// lookup resolves a unit code. UCUM annotations are dimensionless unity:
// a bare "{beats}" resolves to "1", and a trailing annotation as in
// "mL{total}" is stripped before the table lookup.
func (s *InMemoryUnitService) lookup(code string) (unitEntry, bool) {
	code = stripAnnotation(code)
	if code == "" {
		return unitEntry{}, false
	}

	s.mu.RLock()
	entry, ok := s.units[code]
	s.mu.RUnlock()
	return entry, ok
}

// stripAnnotation removes a trailing {...} annotation from a unit code.
// A code that is only an annotation becomes unity.
func stripAnnotation(code string) string {
	if !strings.HasSuffix(code, "}") {
		return code
	}
	idx := strings.LastIndex(code, "{")
	if idx == -1 {
		return code
	}
	if idx == 0 {
		return "1"
	}
	return code[:idx]
}

// loadBuiltinUnits fills the table with common UCUM codes. Factors are
// exact decimals relative to each dimension's base unit (g, m, s, L).
func (s *InMemoryUnitService) loadBuiltinUnits() {
	add := func(code, dimension string, factor decimal.Decimal) {
		s.units[code] = unitEntry{dimension: dimension, factor: factor}
	}

	// Mass, base gram
	add("ug", DimensionMass, decimal.New(1, -6))
	add("mg", DimensionMass, decimal.New(1, -3))
	add("g", DimensionMass, decimal.New(1, 0))
	add("kg", DimensionMass, decimal.New(1, 3))
	add("[lb_av]", DimensionMass, decimal.RequireFromString("453.59237"))
	add("[oz_av]", DimensionMass, decimal.RequireFromString("28.349523125"))

	// Length, base metre
	add("mm", DimensionLength, decimal.New(1, -3))
	add("cm", DimensionLength, decimal.New(1, -2))
	add("m", DimensionLength, decimal.New(1, 0))
	add("km", DimensionLength, decimal.New(1, 3))
	add("[in_i]", DimensionLength, decimal.RequireFromString("0.0254"))
	add("[ft_i]", DimensionLength, decimal.RequireFromString("0.3048"))

	// Time, base second
	add("ms", DimensionTime, decimal.New(1, -3))
	add("s", DimensionTime, decimal.New(1, 0))
	add("min", DimensionTime, decimal.New(60, 0))
	add("h", DimensionTime, decimal.New(3600, 0))
	add("d", DimensionTime, decimal.New(86400, 0))
	add("wk", DimensionTime, decimal.New(604800, 0))

	// Volume, base litre
	add("uL", DimensionVolume, decimal.New(1, -6))
	add("mL", DimensionVolume, decimal.New(1, -3))
	add("dL", DimensionVolume, decimal.New(1, -1))
	add("L", DimensionVolume, decimal.New(1, 0))

	// Dimensionless
	add("1", DimensionUnity, decimal.New(1, 0))
	add("%", DimensionUnity, decimal.New(1, -2))
}

// Verify interface compliance
var _ service.UnitOracle = (*InMemoryUnitService)(nil)
