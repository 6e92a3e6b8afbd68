// Package terminology provides value set oracles backed by locally loaded
// FHIR ValueSet and CodeSystem resources.
//
// The package provides:
//   - InMemoryValueSetService: Answers membership queries against loaded ValueSets
//   - CachedValueSetService: Wraps the in-memory service with a sharded TTL cache
//   - Common code systems pre-loaded for questionnaire answers (yes/no, gender, etc.)
//
// Example usage:
//
//	// Create an in-memory value set service
//	vs := terminology.NewInMemoryValueSetService()
//
//	// Load a ValueSet
//	vs.LoadR4ValueSet(valueSet)
//
//	// Check membership of a coded answer
//	ok, err := vs.ContainsCoding(ctx, "http://example.org/vs", "http://example.org", "code123")
package terminology
