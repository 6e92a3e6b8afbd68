package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/reason-healthcare/qrvalidator/model"
)

// ErrNotFound is returned when a resource cannot be found.
var ErrNotFound = errors.New("resource not found")

// ErrNotSupported is returned when an operation is not supported.
var ErrNotSupported = errors.New("operation not supported")

// --- Oracle Chain ---

// OracleChain implements ValueSetOracle by trying multiple oracles in
// order and returning the first positive membership answer. An oracle
// error moves on to the next oracle; the last error is surfaced only when
// no oracle answered positively.
type OracleChain struct {
	oracles []ValueSetOracle
}

var _ ValueSetOracle = (*OracleChain)(nil)

// NewOracleChain creates a chain over the given oracles, skipping nils.
func NewOracleChain(oracles ...ValueSetOracle) *OracleChain {
	c := &OracleChain{}
	for _, o := range oracles {
		c.Add(o)
	}
	return c
}

// Add appends an oracle to the chain.
func (c *OracleChain) Add(o ValueSetOracle) {
	if o != nil {
		c.oracles = append(c.oracles, o)
	}
}

// Len reports the number of chained oracles.
func (c *OracleChain) Len() int {
	return len(c.oracles)
}

// ContainsCoding tries each oracle until one reports membership.
func (c *OracleChain) ContainsCoding(ctx context.Context, valueSetURL, system, code string) (bool, error) {
	var lastErr error
	for _, o := range c.oracles {
		ok, err := o.ContainsCoding(ctx, valueSetURL, system, code)
		if err != nil {
			lastErr = err
			continue
		}
		if ok {
			return true, nil
		}
	}
	return false, lastErr
}

// ContainsString tries each oracle until one reports membership.
func (c *OracleChain) ContainsString(ctx context.Context, valueSetURL, value string) (bool, error) {
	var lastErr error
	for _, o := range c.oracles {
		ok, err := o.ContainsString(ctx, valueSetURL, value)
		if err != nil {
			lastErr = err
			continue
		}
		if ok {
			return true, nil
		}
	}
	return false, lastErr
}

// --- Null Implementations ---

// NullValueSetOracle is a permissive no-op oracle: every value is a
// member.
type NullValueSetOracle struct{}

var _ ValueSetOracle = NullValueSetOracle{}

// ContainsCoding always reports membership.
func (NullValueSetOracle) ContainsCoding(_ context.Context, _, _, _ string) (bool, error) {
	return true, nil
}

// ContainsString always reports membership.
func (NullValueSetOracle) ContainsString(_ context.Context, _, _ string) (bool, error) {
	return true, nil
}

// NullUnitOracle is a permissive no-op oracle: all units are compatible
// and compare as equal.
type NullUnitOracle struct{}

var _ UnitOracle = NullUnitOracle{}

// Compatible always reports compatibility.
func (NullUnitOracle) Compatible(_, _ string) bool { return true }

// Compare always reports equality.
func (NullUnitOracle) Compare(_ decimal.Decimal, _ string, _ decimal.Decimal, _ string) (int, error) {
	return 0, nil
}

// NullFormSource always returns ErrNotFound.
type NullFormSource struct{}

var _ FormSource = NullFormSource{}

// Resolve always returns ErrNotFound.
func (NullFormSource) Resolve(_ context.Context, _ string) (*model.Form, error) {
	return nil, ErrNotFound
}

// --- Service Aggregator ---

// Services aggregates the injectable dependencies of the engine.
type Services struct {
	ValueSets ValueSetOracle
	Units     UnitOracle
	Forms     FormSource
}

// NewServices creates a Services with null implementations.
func NewServices() *Services {
	return &Services{
		ValueSets: NullValueSetOracle{},
		Units:     NullUnitOracle{},
		Forms:     NullFormSource{},
	}
}

// WithValueSets sets the value set oracle.
func (s *Services) WithValueSets(o ValueSetOracle) *Services {
	s.ValueSets = o
	return s
}

// WithUnits sets the unit oracle.
func (s *Services) WithUnits(o UnitOracle) *Services {
	s.Units = o
	return s
}

// WithForms sets the form source.
func (s *Services) WithForms(f FormSource) *Services {
	s.Forms = f
	return s
}
