package engine

import (
	"context"
	"fmt"
	"runtime"
	"testing"
	"time"

	qv "github.com/reason-healthcare/qrvalidator"
	"github.com/reason-healthcare/qrvalidator/model"
	"github.com/reason-healthcare/qrvalidator/worker"
)

// Sample responses for benchmarking
var (
	simpleResponse = []byte(`{
		"resourceType": "QuestionnaireResponse",
		"status": "completed",
		"item": [
			{"linkId": "smoker", "answer": [{"valueBoolean": false}]}
		]
	}`)

	complexResponse = []byte(cleanIntakeResponse())
)

// BenchmarkValidate_Simple benchmarks validation of a one-answer response
func BenchmarkValidate_Simple(b *testing.B) {
	ctx := context.Background()
	v := New()
	form := intakeForm()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		result, err := v.Validate(ctx, form, simpleResponse)
		if err != nil {
			b.Fatalf("Validation error: %v", err)
		}
		result.Release()
	}
}

// BenchmarkValidate_Complex benchmarks validation of a full intake response
func BenchmarkValidate_Complex(b *testing.B) {
	ctx := context.Background()
	v := New()
	v.SetUnits(gramOracle{})
	form := intakeForm()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		result, err := v.Validate(ctx, form, complexResponse)
		if err != nil {
			b.Fatalf("Validation error: %v", err)
		}
		result.Release()
	}
}

// BenchmarkValidate_WithoutPooling measures the cost of disabling pools
func BenchmarkValidate_WithoutPooling(b *testing.B) {
	ctx := context.Background()
	v := New(qv.WithPooling(false))
	form := intakeForm()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := v.Validate(ctx, form, complexResponse); err != nil {
			b.Fatalf("Validation error: %v", err)
		}
	}
}

// BenchmarkValidate_WideForm benchmarks a flat form with many items
func BenchmarkValidate_WideForm(b *testing.B) {
	items := make([]*model.Item, 200)
	responseItems := make([]any, 200)
	for i := range items {
		linkID := fmt.Sprintf("q%d", i)
		items[i] = &model.Item{LinkID: linkID, Type: model.ItemTypeString}
		responseItems[i] = map[string]any{
			"linkId": linkID,
			"answer": []any{map[string]any{"valueString": "answer"}},
		}
	}
	form := &model.Form{URL: "http://example.org/fhir/Questionnaire/wide", Items: items}
	response := map[string]any{"item": responseItems}

	ctx := context.Background()
	v := New()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		result, err := v.ValidateMap(ctx, form, response)
		if err != nil {
			b.Fatalf("Validation error: %v", err)
		}
		result.Release()
	}
}

// BenchmarkBatchValidation compares sequential vs parallel batch validation
func BenchmarkBatchValidation(b *testing.B) {
	ctx := context.Background()
	v := New()
	form := intakeForm()

	responses := make([][]byte, 100)
	for i := 0; i < 100; i++ {
		responses[i] = complexResponse
	}

	b.Run("sequential", func(b *testing.B) {
		b.ResetTimer()
		b.ReportAllocs()

		for i := 0; i < b.N; i++ {
			for _, r := range responses {
				result, _ := v.Validate(ctx, form, r)
				result.Release()
			}
		}
	})

	for _, workers := range []int{2, 4, 8} {
		b.Run(fmt.Sprintf("parallel_%d_workers", workers), func(b *testing.B) {
			bv := worker.NewBatchValidator(func(ctx context.Context, response []byte) (*qv.Result, error) {
				return v.Validate(ctx, form, response)
			}, workers)

			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				_ = bv.ValidateBatch(ctx, responses)
			}
		})
	}
}

// BenchmarkParallelValidation tests scaling with different worker counts
func BenchmarkParallelValidation(b *testing.B) {
	ctx := context.Background()
	v := New()
	form := intakeForm()

	responses := make([][]byte, 1000)
	for i := 0; i < 1000; i++ {
		responses[i] = simpleResponse
	}

	maxWorkers := runtime.NumCPU() * 2
	for workers := 1; workers <= maxWorkers; workers *= 2 {
		b.Run(fmt.Sprintf("workers_%d", workers), func(b *testing.B) {
			bv := worker.NewBatchValidator(func(ctx context.Context, response []byte) (*qv.Result, error) {
				return v.Validate(ctx, form, response)
			}, workers)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = bv.ValidateBatch(ctx, responses)
			}
		})
	}
}

// BenchmarkMemoryUsage tests memory usage patterns
func BenchmarkMemoryUsage(b *testing.B) {
	ctx := context.Background()
	v := New()
	form := intakeForm()

	b.Run("single_validation", func(b *testing.B) {
		b.ResetTimer()
		b.ReportAllocs()

		for i := 0; i < b.N; i++ {
			result, _ := v.Validate(ctx, form, complexResponse)
			_ = result
		}
	})

	b.Run("with_result_release", func(b *testing.B) {
		b.ResetTimer()
		b.ReportAllocs()

		for i := 0; i < b.N; i++ {
			result, _ := v.Validate(ctx, form, complexResponse)
			if result != nil {
				result.Release()
			}
		}
	})
}

// BenchmarkThroughput measures validation throughput
func BenchmarkThroughput(b *testing.B) {
	ctx := context.Background()
	v := New()
	form := intakeForm()

	responses := make([][]byte, 10000)
	for i := 0; i < 10000; i++ {
		responses[i] = simpleResponse
	}

	bv := worker.NewBatchValidator(func(ctx context.Context, response []byte) (*qv.Result, error) {
		return v.Validate(ctx, form, response)
	}, runtime.NumCPU())

	start := time.Now()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = bv.ValidateBatch(ctx, responses)
	}

	b.StopTimer()
	duration := time.Since(start)
	totalResponses := b.N * 10000
	throughput := float64(totalResponses) / duration.Seconds()
	b.ReportMetric(throughput, "responses/sec")
}
