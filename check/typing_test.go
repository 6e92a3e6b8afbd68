package check

import (
	"encoding/json"
	"testing"

	qv "github.com/reason-healthcare/qrvalidator"
	"github.com/reason-healthcare/qrvalidator/model"
)

func TestTyping(t *testing.T) {
	tests := []struct {
		name     string
		itemType model.ItemType
		raw      map[string]any
		wantDiag string
	}{
		{"boolean accepts boolean", model.ItemTypeBoolean, map[string]any{"valueBoolean": true}, ""},
		{"boolean rejects string", model.ItemTypeBoolean, map[string]any{"valueString": "yes"},
			"Answer value must be of the type boolean not String"},
		{"integer rejects decimal", model.ItemTypeInteger, map[string]any{"valueDecimal": json.Number("1.5")},
			"Answer value must be of the type integer not Decimal"},
		{"decimal rejects integer", model.ItemTypeDecimal, map[string]any{"valueInteger": json.Number("3")},
			"Answer value must be of the type decimal not Integer"},
		{"choice accepts coding", model.ItemTypeChoice, map[string]any{"valueCoding": map[string]any{"code": "a"}}, ""},
		{"choice accepts string", model.ItemTypeChoice, map[string]any{"valueString": "other"}, ""},
		{"choice rejects boolean", model.ItemTypeChoice, map[string]any{"valueBoolean": true},
			"Answer value must be of the type choice not Boolean"},
		{"open-choice accepts string", model.ItemTypeOpenChoice, map[string]any{"valueString": "free text"}, ""},
		{"text accepts string", model.ItemTypeText, map[string]any{"valueString": "a note"}, ""},
		{"text names its own type", model.ItemTypeText, map[string]any{"valueBoolean": true},
			"Answer value must be of the type text not Boolean"},
		{"url rejects string", model.ItemTypeURL, map[string]any{"valueString": "http://example.org"},
			"Answer value must be of the type url not String"},
		{"url accepts uri", model.ItemTypeURL, map[string]any{"valueUri": "http://example.org"}, ""},
		{"date rejects dateTime", model.ItemTypeDate, map[string]any{"valueDateTime": "2024-01-01T00:00:00Z"},
			"Answer value must be of the type date not DateTime"},
		{"quantity accepts quantity", model.ItemTypeQuantity, map[string]any{"valueQuantity": map[string]any{"value": json.Number("1")}}, ""},
		{"reference rejects uri", model.ItemTypeReference, map[string]any{"valueUri": "Patient/1"},
			"Answer value must be of the type reference not Uri"},
		{"empty answer reports unknown", model.ItemTypeBoolean, map[string]any{},
			"Answer value must be of the type boolean not unknown"},
		{"group accepts anything", model.ItemTypeGroup, map[string]any{"valueString": "x"}, ""},
		{"unknown type accepts anything", model.ItemType("signature"), map[string]any{"valueString": "x"}, ""},
	}

	c := New(nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := qv.AcquireResult()
			defer r.Release()

			item := &model.Item{LinkID: "q", Type: tt.itemType}
			c.typing(item, newAnswer(tt.raw), "QuestionnaireResponse.item[0].answer[0]", r)

			if tt.wantDiag == "" {
				if len(r.Issues) != 0 {
					t.Errorf("typing() issues = %v, want none", diags(r))
				}
				return
			}
			if len(r.Issues) != 1 {
				t.Fatalf("typing() produced %d issues, want 1", len(r.Issues))
			}
			if got := r.Issues[0].Diagnostics; got != tt.wantDiag {
				t.Errorf("typing() diagnostics = %q, want %q", got, tt.wantDiag)
			}
			if got := r.Issues[0].Code; got != qv.IssueTypeInvariant {
				t.Errorf("typing() code = %v, want %v", got, qv.IssueTypeInvariant)
			}
		})
	}
}

func TestProhibitions(t *testing.T) {
	tests := []struct {
		name       string
		itemType   model.ItemType
		hasAnswers bool
		wantDiag   string
	}{
		{"display with answers", model.ItemTypeDisplay, true, "Items of type 'display' cannot have answers"},
		{"group with answers", model.ItemTypeGroup, true, "Items of type 'group' cannot have direct answers"},
		{"question with answers", model.ItemTypeBoolean, true, ""},
		{"display without answers", model.ItemTypeDisplay, false, ""},
		{"group without answers", model.ItemTypeGroup, false, ""},
	}

	c := New(nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := qv.AcquireResult()
			defer r.Release()

			item := &model.Item{LinkID: "q", Type: tt.itemType}
			c.Prohibitions(item, tt.hasAnswers, "QuestionnaireResponse.item[0]", r)

			if tt.wantDiag == "" {
				if len(r.Issues) != 0 {
					t.Errorf("Prohibitions() issues = %v, want none", diags(r))
				}
				return
			}
			if len(r.Issues) != 1 {
				t.Fatalf("Prohibitions() produced %d issues, want 1", len(r.Issues))
			}
			if got := r.Issues[0].Diagnostics; got != tt.wantDiag {
				t.Errorf("Prohibitions() diagnostics = %q, want %q", got, tt.wantDiag)
			}
		})
	}
}
