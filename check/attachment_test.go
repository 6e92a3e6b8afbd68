package check

import (
	"encoding/json"
	"testing"

	qv "github.com/reason-healthcare/qrvalidator"
	"github.com/reason-healthcare/qrvalidator/model"
)

// "SGVsbG8=" decodes to the five bytes of "Hello".
func attachmentAnswer(fields map[string]any) model.Answer {
	return newAnswer(map[string]any{"valueAttachment": fields})
}

func TestCheckAttachment(t *testing.T) {
	tests := []struct {
		name        string
		constraints model.Constraints
		fields      map[string]any
		wantDiags   []string
		wantCodes   []qv.IssueType
	}{
		{
			name:   "data and size agree",
			fields: map[string]any{"contentType": "text/plain", "data": "SGVsbG8=", "size": json.Number("5")},
		},
		{
			name:   "size within tolerance",
			fields: map[string]any{"data": "SGVsbG8=", "size": json.Number("7")},
		},
		{
			name:      "size outside tolerance",
			fields:    map[string]any{"data": "SGVsbG8=", "size": json.Number("10")},
			wantDiags: []string{"The attachment data length 5 does not match the stated size 10"},
			wantCodes: []qv.IssueType{qv.IssueTypeStructure},
		},
		{
			name:      "invalid base64",
			fields:    map[string]any{"data": "!!!not-base64!!!", "size": json.Number("5")},
			wantDiags: []string{"The attachment data is not valid base64"},
			wantCodes: []qv.IssueType{qv.IssueTypeStructure},
		},
		{
			name:        "stated size over maxSize",
			constraints: model.Constraints{MaxSize: i64p(4)},
			fields:      map[string]any{"data": "SGVsbG8=", "size": json.Number("5")},
			wantDiags:   []string{"The attachment size 5 exceeds the maximum size of 4"},
			wantCodes:   []qv.IssueType{qv.IssueTypeValue},
		},
		{
			name:        "stated size at maxSize",
			constraints: model.Constraints{MaxSize: i64p(5)},
			fields:      map[string]any{"data": "SGVsbG8=", "size": json.Number("5")},
		},
		{
			name:        "maxSize needs a stated size",
			constraints: model.Constraints{MaxSize: i64p(1)},
			fields:      map[string]any{"data": "SGVsbG8="},
		},
		{
			name:        "content type permitted",
			constraints: model.Constraints{MimeTypes: []string{"image/png", "image/jpeg"}},
			fields:      map[string]any{"contentType": "image/png"},
		},
		{
			name:        "content type rejected",
			constraints: model.Constraints{MimeTypes: []string{"image/png"}},
			fields:      map[string]any{"contentType": "application/pdf"},
			wantDiags:   []string{"The content type 'application/pdf' is not one of the permitted MIME types"},
			wantCodes:   []qv.IssueType{qv.IssueTypeInvariant},
		},
		{
			name:        "missing content type is not checked",
			constraints: model.Constraints{MimeTypes: []string{"image/png"}},
			fields:      map[string]any{"data": "SGVsbG8="},
		},
		{
			name:   "size without data is not compared",
			fields: map[string]any{"size": json.Number("999")},
		},
		{
			name: "bad base64 and bad content type both fire",
			constraints: model.Constraints{
				MimeTypes: []string{"image/png"},
			},
			fields: map[string]any{"contentType": "text/plain", "data": "%%%"},
			wantDiags: []string{
				"The attachment data is not valid base64",
				"The content type 'text/plain' is not one of the permitted MIME types",
			},
			wantCodes: []qv.IssueType{qv.IssueTypeStructure, qv.IssueTypeInvariant},
		},
	}

	c := New(nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := qv.AcquireResult()
			defer r.Release()

			item := &model.Item{LinkID: "file", Type: model.ItemTypeAttachment, Constraints: tt.constraints}
			c.checkAttachment(item, attachmentAnswer(tt.fields), "QuestionnaireResponse.item[0].answer[0]", r)

			if got := len(r.Issues); got != len(tt.wantDiags) {
				t.Fatalf("checkAttachment() produced %d issues, want %d: %v", got, len(tt.wantDiags), diags(r))
			}
			for i, want := range tt.wantDiags {
				if got := r.Issues[i].Diagnostics; got != want {
					t.Errorf("checkAttachment() diagnostics[%d] = %q, want %q", i, got, want)
				}
				if got := r.Issues[i].Code; got != tt.wantCodes[i] {
					t.Errorf("checkAttachment() code[%d] = %v, want %v", i, got, tt.wantCodes[i])
				}
			}
		})
	}
}

func TestCheckAttachmentMissingValue(t *testing.T) {
	c := New(nil, nil)
	r := qv.AcquireResult()
	defer r.Release()

	item := &model.Item{LinkID: "file", Type: model.ItemTypeAttachment, Constraints: model.Constraints{MaxSize: i64p(1)}}
	c.checkAttachment(item, newAnswer(map[string]any{"valueString": "x"}), "QuestionnaireResponse.item[0].answer[0]", r)

	if len(r.Issues) != 0 {
		t.Errorf("checkAttachment() issues = %v, want none", diags(r))
	}
}
