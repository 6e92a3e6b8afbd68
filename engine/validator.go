// Package engine provides the QuestionnaireResponse validation engine.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/buger/jsonparser"

	qv "github.com/reason-healthcare/qrvalidator"
	"github.com/reason-healthcare/qrvalidator/cache"
	"github.com/reason-healthcare/qrvalidator/check"
	"github.com/reason-healthcare/qrvalidator/model"
	"github.com/reason-healthcare/qrvalidator/service"
	"github.com/reason-healthcare/qrvalidator/stream"
	"github.com/reason-healthcare/qrvalidator/worker"
)

// ErrNilForm is returned when validation is attempted without a
// questionnaire.
var ErrNilForm = errors.New("questionnaire form is nil")

// ErrNoFormSource is returned by ValidateByURL when no questionnaire
// source has been attached.
var ErrNoFormSource = errors.New("no questionnaire source attached")

// Validator validates QuestionnaireResponses against their
// questionnaires. It coordinates the two validation passes and manages
// the optional terminology, unit, and questionnaire services.
type Validator struct {
	// Configuration
	version qv.FHIRVersion
	options *qv.Options

	// Services
	valueSets service.ValueSetOracle
	units     service.UnitOracle
	forms     service.FormSource

	// Checks
	checker *check.Checker

	// indexes caches the linkId index built for each questionnaire so
	// repeated validations against the same form skip the index pass.
	indexes *cache.Cache[*model.Form, *model.FormIndex]

	// Metrics
	metrics *qv.Metrics
}

// New creates a Validator with the given options. Services are attached
// afterwards through the Set methods or UseServices; without them the
// oracle-backed checks are skipped.
func New(opts ...qv.Option) *Validator {
	options := qv.DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	v := &Validator{
		version: qv.R4,
		options: options,
		indexes: cache.New[*model.Form, *model.FormIndex](options.FormCacheSize),
		metrics: qv.NewMetrics(),
	}
	v.buildChecker()

	return v
}

// buildChecker rebuilds the answer checker from the attached services
// and option gates.
func (v *Validator) buildChecker() {
	var valueSets service.ValueSetOracle
	if v.options.ValidateValueSets {
		valueSets = v.valueSets
	}
	var units service.UnitOracle
	if v.options.ValidateUnits {
		units = v.units
	}
	v.checker = check.New(valueSets, units)
}

// SetValueSets attaches a terminology service used for answerValueSet
// membership checks.
func (v *Validator) SetValueSets(oracle service.ValueSetOracle) {
	v.valueSets = oracle
	v.buildChecker()
}

// SetUnits attaches a unit service used for quantity range checks.
func (v *Validator) SetUnits(oracle service.UnitOracle) {
	v.units = oracle
	v.buildChecker()
}

// SetForms attaches a questionnaire source used by ValidateByURL.
func (v *Validator) SetForms(source service.FormSource) {
	v.forms = source
}

// UseServices attaches all services from the bundle at once.
func (v *Validator) UseServices(s *service.Services) {
	if s == nil {
		return
	}
	v.valueSets = s.ValueSets
	v.units = s.Units
	v.forms = s.Forms
	v.buildChecker()
}

// Validate validates a QuestionnaireResponse JSON document against the
// form. Malformed JSON is reported as a structure issue, not an error;
// the returned error is reserved for unusable forms (nil, or duplicate
// linkIds).
func (v *Validator) Validate(ctx context.Context, form *model.Form, response []byte) (*qv.Result, error) {
	start := time.Now()

	// UseNumber keeps the textual form of decimals for the
	// decimal-places check.
	dec := json.NewDecoder(bytes.NewReader(response))
	dec.UseNumber()
	var responseMap map[string]any
	if err := dec.Decode(&responseMap); err != nil {
		result := qv.AcquireResult()
		result.AddError(qv.IssueTypeStructure, fmt.Sprintf("Invalid JSON: %v", err), "")
		v.metrics.RecordValidation(time.Since(start), false)
		return result, nil
	}

	return v.validateParsed(ctx, form, responseMap, start)
}

// ValidateMap validates a QuestionnaireResponse that has already been
// parsed to a map.
func (v *Validator) ValidateMap(ctx context.Context, form *model.Form, responseMap map[string]any) (*qv.Result, error) {
	return v.validateParsed(ctx, form, responseMap, time.Now())
}

// ValidateByURL resolves the questionnaire by canonical URL through the
// attached form source and validates the response against it.
func (v *Validator) ValidateByURL(ctx context.Context, url string, response []byte) (*qv.Result, error) {
	if v.forms == nil {
		return nil, ErrNoFormSource
	}
	form, err := v.forms.Resolve(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("resolve questionnaire %q: %w", url, err)
	}
	return v.Validate(ctx, form, response)
}

// validateParsed runs the two passes over a parsed response.
func (v *Validator) validateParsed(ctx context.Context, form *model.Form, responseMap map[string]any, start time.Time) (*qv.Result, error) {
	index, err := v.indexFor(form)
	if err != nil {
		return nil, err
	}

	result := qv.AcquireResult()
	result.QuestionnaireURL = form.URL

	w := newWalker(ctx, v, index, responseMap, result)

	answersStart := time.Now()
	w.walkAnswers()
	v.metrics.RecordStage("answers", time.Since(answersStart), len(result.Issues))

	requiredStart := time.Now()
	before := len(result.Issues)
	w.walkRequired(form.Items)
	v.metrics.RecordStage("required", time.Since(requiredStart), len(result.Issues)-before)

	w.close()
	v.finish(result, start)
	return result, nil
}

// indexFor returns the cached linkId index for the form, building it on
// first use. Duplicate linkIds surface here as an error.
func (v *Validator) indexFor(form *model.Form) (*model.FormIndex, error) {
	if form == nil {
		return nil, ErrNilForm
	}
	if index, ok := v.indexes.Get(form); ok {
		v.metrics.RecordCacheHit()
		return index, nil
	}
	v.metrics.RecordCacheMiss()

	index, err := model.BuildIndex(form)
	if err != nil {
		return nil, err
	}
	v.indexes.Set(form, index)
	return index, nil
}

// finish applies strict mode and records metrics for a completed
// validation.
func (v *Validator) finish(result *qv.Result, start time.Time) {
	for _, issue := range result.Issues {
		v.metrics.RecordIssue(issue.Severity)
		if v.options.StrictMode && issue.IsWarning() {
			result.Valid = false
		}
	}
	v.metrics.RecordValidation(time.Since(start), result.Valid)
}

// ValidateBatch validates multiple responses against one form in
// parallel, preserving input order. The form's index is built once up
// front, so per-response errors cannot occur; malformed responses come
// back as results with structure issues.
func (v *Validator) ValidateBatch(ctx context.Context, form *model.Form, responses [][]byte) ([]*qv.Result, error) {
	if _, err := v.indexFor(form); err != nil {
		return nil, err
	}

	bv := worker.NewBatchValidator(func(ctx context.Context, response []byte) (*qv.Result, error) {
		return v.Validate(ctx, form, response)
	}, v.options.WorkerCount)

	batch := bv.ValidateBatch(ctx, responses)

	results := make([]*qv.Result, len(responses))
	for i, jr := range batch.Results {
		if jr == nil || jr.Result == nil {
			continue
		}
		jr.Result.JobID = jr.ID
		results[i] = jr.Result
	}
	return results, nil
}

// ValidateBundleStream validates a Bundle of QuestionnaireResponses from
// a reader without loading the whole document, emitting results as
// entries are processed, in order.
func (v *Validator) ValidateBundleStream(ctx context.Context, form *model.Form, r io.Reader) <-chan *stream.EntryResult {
	sv := stream.NewBundleValidator(func(ctx context.Context, response []byte) (*qv.Result, error) {
		return v.Validate(ctx, form, response)
	}).
		WithWorkerCount(v.options.WorkerCount).
		WithBufferSize(100)

	return sv.ValidateStream(ctx, r)
}

// ValidateBundleStreamParallel validates bundle entries in parallel
// while preserving order.
func (v *Validator) ValidateBundleStreamParallel(ctx context.Context, form *model.Form, r io.Reader) <-chan *stream.EntryResult {
	sv := stream.NewBundleValidator(func(ctx context.Context, response []byte) (*qv.Result, error) {
		return v.Validate(ctx, form, response)
	}).
		WithWorkerCount(v.options.WorkerCount).
		WithBufferSize(100)

	return sv.ValidateStreamParallel(ctx, r)
}

// ValidateBundleStreamByCanonical validates a Bundle whose entries name
// their own questionnaire. Each entry's form is resolved from the
// entry's questionnaire canonical through the attached form source;
// entries without one, or with an unresolvable one, come back as
// structure errors.
func (v *Validator) ValidateBundleStreamByCanonical(ctx context.Context, r io.Reader) <-chan *stream.EntryResult {
	sv := stream.NewBundleValidator(func(ctx context.Context, response []byte) (*qv.Result, error) {
		url, err := jsonparser.GetString(response, "questionnaire")
		if err != nil || url == "" {
			result := qv.AcquireResult()
			result.AddError(qv.IssueTypeStructure, "Response does not name a questionnaire", "")
			return result, nil
		}
		result, err := v.ValidateByURL(ctx, url, response)
		if err != nil {
			result = qv.AcquireResult()
			result.AddError(qv.IssueTypeStructure,
				fmt.Sprintf("Questionnaire '%s' could not be resolved: %v", url, err), "")
			return result, nil
		}
		return result, nil
	}).
		WithWorkerCount(v.options.WorkerCount).
		WithBufferSize(100)

	return sv.ValidateStream(ctx, r)
}

// AggregateBundleResults collects all results from a streaming bundle
// validation.
func AggregateBundleResults(results <-chan *stream.EntryResult) *stream.BundleStreamResult {
	return stream.Aggregate(results)
}

// Metrics returns the validator's metrics.
func (v *Validator) Metrics() *qv.Metrics {
	return v.metrics
}

// Version returns the FHIR release this validator implements.
func (v *Validator) Version() qv.FHIRVersion {
	return v.version
}

// Options returns the validator's options.
func (v *Validator) Options() *qv.Options {
	return v.options
}

// Close releases resources held by the validator.
func (v *Validator) Close() error {
	v.indexes.Clear()
	return nil
}
