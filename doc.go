// Package qrvalidator validates FHIR QuestionnaireResponse resources
// against the Questionnaire they claim to answer.
//
// The validator walks the response tree item by item, matching every
// answer to its questionnaire definition by linkId, and reports all
// findings as issues rather than stopping at the first problem. A second
// pass over the questionnaire then reports required items the response
// failed to answer, honoring enableWhen conditions so that disabled
// items are never demanded.
//
// # Quick Start
//
//	import (
//	    qv "github.com/reason-healthcare/qrvalidator"
//	    "github.com/reason-healthcare/qrvalidator/engine"
//	    "github.com/reason-healthcare/qrvalidator/loader"
//	)
//
//	forms := loader.NewFormLoader(nil, loader.DefaultCacheSize)
//	form, err := forms.LoadFromJSON(questionnaireJSON)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	validator := engine.New()
//	result, err := validator.Validate(ctx, form, responseJSON)
//	if result.HasErrors() {
//	    for _, issue := range result.Errors() {
//	        fmt.Println(issue.Diagnostics)
//	    }
//	}
//	result.Release() // Return to pool for better performance
//
// # What Gets Checked
//
//   - Structure: answers for unknown linkIds, answers on group and
//     display items, missing sub-items of answered groups
//   - Cardinality: repeats, minOccurs and maxOccurs extensions
//   - Typing: each answer's value[x] choice against the item type
//   - Values: minValue, maxValue, maxDecimalPlaces, maxLength, regex
//   - Options: answerOption membership, exclusive options,
//     answerValueSet membership through a pluggable terminology service
//   - Quantities: range and unit checks through a pluggable unit service
//   - Attachments: payload size consistency, maxSize, allowed MIME types
//   - References: syntactic form, resource types, allowed target types
//   - Required items: presence, gated by enableWhen evaluation
//
// Issue order is deterministic. Answer issues appear in response order,
// and all required-item issues follow them in questionnaire order, so
// two runs over the same inputs always serialize identically.
//
// # Functional Options
//
//	validator := engine.New(
//	    qv.WithRootLabel("QuestionnaireResponse"),
//	    qv.WithWorkerCount(runtime.NumCPU()),
//	    qv.WithFormCacheSize(100),
//	)
//
// # Performance Features
//
//   - Worker Pool: Parallel batch validation using runtime.NumCPU() workers
//   - sync.Pool: Reduces GC pressure through result and path-builder reuse
//   - Generic Cache: Type-safe LRU questionnaire cache without
//     interface{} overhead
//   - Streaming: Validate bundles of responses without loading them
//     entirely into memory
//
// # Architecture
//
//   - Small interfaces (1-2 methods each) for the terminology and unit
//     services
//   - An immutable questionnaire index shared across goroutines
//   - A fixed two-pass walk so issue order never depends on scheduling
//   - Context is forwarded to the pluggable services; the walk itself
//     always runs to completion
package qrvalidator
