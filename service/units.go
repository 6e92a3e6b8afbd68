package service

import "github.com/shopspring/decimal"

// UnitOracle relates formal unit codes so quantity answers can be checked
// against quantity bounds expressed in different units of the same
// dimension.
type UnitOracle interface {
	// Compatible reports whether two unit codes measure the same
	// dimension. Unknown codes are never compatible.
	Compatible(a, b string) bool

	// Compare compares a value in unit codeA against a value in unit
	// codeB, returning -1, 0 or 1. It fails when either code is unknown
	// or the dimensions differ.
	Compare(valA decimal.Decimal, codeA string, valB decimal.Decimal, codeB string) (int, error)
}
