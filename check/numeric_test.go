package check

import (
	"encoding/json"
	"testing"

	qv "github.com/reason-healthcare/qrvalidator"
	"github.com/reason-healthcare/qrvalidator/model"
)

func TestCheckDecimal(t *testing.T) {
	tests := []struct {
		name        string
		constraints model.Constraints
		value       json.Number
		wantDiags   []string
	}{
		{
			name:        "within bounds",
			constraints: model.Constraints{MinDecimal: decp("0"), MaxDecimal: decp("100")},
			value:       json.Number("72.5"),
		},
		{
			name:        "below minimum",
			constraints: model.Constraints{MinDecimal: decp("4")},
			value:       json.Number("3.5"),
			wantDiags:   []string{"The value 3.5 is less than the allowed minimum of 4"},
		},
		{
			name:        "above maximum",
			constraints: model.Constraints{MaxDecimal: decp("10")},
			value:       json.Number("10.2"),
			wantDiags:   []string{"The value 10.2 is greater than the allowed maximum of 10"},
		},
		{
			name:        "boundary value passes",
			constraints: model.Constraints{MinDecimal: decp("4"), MaxDecimal: decp("4")},
			value:       json.Number("4.0"),
		},
		{
			name:        "trailing zeros count as decimal places",
			constraints: model.Constraints{MaxDecimalPlaces: intp(2)},
			value:       json.Number("3.100"),
			wantDiags:   []string{"The value 3.100 has too many decimal places (limit = 2)"},
		},
		{
			name:        "places at the limit pass",
			constraints: model.Constraints{MaxDecimalPlaces: intp(2)},
			value:       json.Number("3.14"),
		},
		{
			name:        "integer form has zero places",
			constraints: model.Constraints{MaxDecimalPlaces: intp(0)},
			value:       json.Number("3"),
		},
		{
			name: "no constraints",
			value: json.Number("99999.123"),
		},
	}

	c := New(nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := qv.AcquireResult()
			defer r.Release()

			item := &model.Item{LinkID: "q", Type: model.ItemTypeDecimal, Constraints: tt.constraints}
			c.checkDecimal(item, newAnswer(map[string]any{"valueDecimal": tt.value}), "QuestionnaireResponse.item[0].answer[0]", r)

			if got := len(r.Issues); got != len(tt.wantDiags) {
				t.Fatalf("checkDecimal() produced %d issues, want %d: %v", got, len(tt.wantDiags), diags(r))
			}
			for i, want := range tt.wantDiags {
				if got := r.Issues[i].Diagnostics; got != want {
					t.Errorf("checkDecimal() diagnostics[%d] = %q, want %q", i, got, want)
				}
				if got := r.Issues[i].Code; got != qv.IssueTypeValue {
					t.Errorf("checkDecimal() code = %v, want %v", got, qv.IssueTypeValue)
				}
			}
		})
	}
}

func TestCheckDecimalMissingValue(t *testing.T) {
	c := New(nil, nil)
	r := qv.AcquireResult()
	defer r.Release()

	item := &model.Item{LinkID: "q", Type: model.ItemTypeDecimal, Constraints: model.Constraints{MinDecimal: decp("1")}}
	c.checkDecimal(item, newAnswer(map[string]any{"valueString": "nope"}), "QuestionnaireResponse.item[0].answer[0]", r)

	if len(r.Issues) != 0 {
		t.Errorf("checkDecimal() issues = %v, want none for a non-decimal answer", diags(r))
	}
}

func TestCheckInteger(t *testing.T) {
	tests := []struct {
		name        string
		constraints model.Constraints
		value       json.Number
		wantDiags   []string
	}{
		{
			name:        "within bounds",
			constraints: model.Constraints{MinInteger: i64p(1), MaxInteger: i64p(10)},
			value:       json.Number("5"),
		},
		{
			name:        "below minimum",
			constraints: model.Constraints{MinInteger: i64p(5)},
			value:       json.Number("2"),
			wantDiags:   []string{"The value 2 is less than the allowed minimum of 5"},
		},
		{
			name:        "above maximum",
			constraints: model.Constraints{MaxInteger: i64p(10)},
			value:       json.Number("11"),
			wantDiags:   []string{"The value 11 is greater than the allowed maximum of 10"},
		},
		{
			name:        "boundary passes",
			constraints: model.Constraints{MinInteger: i64p(5), MaxInteger: i64p(5)},
			value:       json.Number("5"),
		},
		{
			name:        "negative bounds",
			constraints: model.Constraints{MinInteger: i64p(-10)},
			value:       json.Number("-11"),
			wantDiags:   []string{"The value -11 is less than the allowed minimum of -10"},
		},
	}

	c := New(nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := qv.AcquireResult()
			defer r.Release()

			item := &model.Item{LinkID: "q", Type: model.ItemTypeInteger, Constraints: tt.constraints}
			c.checkInteger(item, newAnswer(map[string]any{"valueInteger": tt.value}), "QuestionnaireResponse.item[0].answer[0]", r)

			if got := len(r.Issues); got != len(tt.wantDiags) {
				t.Fatalf("checkInteger() produced %d issues, want %d: %v", got, len(tt.wantDiags), diags(r))
			}
			for i, want := range tt.wantDiags {
				if got := r.Issues[i].Diagnostics; got != want {
					t.Errorf("checkInteger() diagnostics[%d] = %q, want %q", i, got, want)
				}
			}
		})
	}
}

func TestDecimalPlaces(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"3", 0},
		{"3.1", 1},
		{"3.100", 3},
		{"-0.25", 2},
		{"3e-2", 0},
		{"3.1e2", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := decimalPlaces(tt.text); got != tt.want {
			t.Errorf("decimalPlaces(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}
