package qrvalidator

// IssueSeverity represents the severity of a validation issue.
// Maps to OperationOutcome.issue.severity in FHIR.
type IssueSeverity string

const (
	// SeverityError indicates a violation that makes the response invalid.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a potential problem that should be reviewed.
	SeverityWarning IssueSeverity = "warning"
)

// IssueType represents the type of validation issue.
// Maps to OperationOutcome.issue.code in FHIR.
type IssueType string

const (
	// IssueTypeStructure indicates the response does not line up with the
	// questionnaire, such as an answer for an unknown linkId.
	IssueTypeStructure IssueType = "structure"
	// IssueTypeRequired indicates a required item has no response.
	IssueTypeRequired IssueType = "required"
	// IssueTypeInvariant indicates a content rule violation.
	IssueTypeInvariant IssueType = "invariant"
	// IssueTypeInvalid indicates the content is invalid, such as a
	// cardinality breach or a malformed reference.
	IssueTypeInvalid IssueType = "invalid"
	// IssueTypeValue indicates an answer value outside its declared bounds.
	IssueTypeValue IssueType = "value"
	// IssueTypeCodeInvalid indicates a code outside the permitted value set.
	IssueTypeCodeInvalid IssueType = "code-invalid"
)

// Issue represents a single validation issue.
// It maps to OperationOutcome.issue in FHIR.
type Issue struct {
	// Severity of the issue (error or warning)
	Severity IssueSeverity `json:"severity"`

	// Code identifying the type of issue
	Code IssueType `json:"code"`

	// Diagnostics contains human-readable details about the issue
	Diagnostics string `json:"diagnostics,omitempty"`

	// Path locates the offending element as a dotted expression rooted at
	// the response, e.g. "QuestionnaireResponse.item[0].answer[1]".
	Path string `json:"path,omitempty"`
}

// IsError returns true if this is an error issue.
func (i Issue) IsError() bool {
	return i.Severity == SeverityError
}

// IsWarning returns true if this is a warning.
func (i Issue) IsWarning() bool {
	return i.Severity == SeverityWarning
}

// String returns a human-readable representation of the issue.
func (i Issue) String() string {
	path := ""
	if i.Path != "" {
		path = " at " + i.Path
	}
	return string(i.Severity) + ": " + i.Diagnostics + path
}

// IssueBuilder provides a fluent API for building issues.
type IssueBuilder struct {
	issue Issue
}

// NewIssue creates a new IssueBuilder.
func NewIssue(severity IssueSeverity, code IssueType) *IssueBuilder {
	return &IssueBuilder{
		issue: Issue{
			Severity: severity,
			Code:     code,
		},
	}
}

// Error creates an error issue.
func Error(code IssueType) *IssueBuilder {
	return NewIssue(SeverityError, code)
}

// Warning creates a warning issue.
func Warning(code IssueType) *IssueBuilder {
	return NewIssue(SeverityWarning, code)
}

// Diagnostics sets the diagnostic message.
func (b *IssueBuilder) Diagnostics(msg string) *IssueBuilder {
	b.issue.Diagnostics = msg
	return b
}

// At sets the element path.
func (b *IssueBuilder) At(path string) *IssueBuilder {
	b.issue.Path = path
	return b
}

// Build returns the constructed issue.
func (b *IssueBuilder) Build() Issue {
	return b.issue
}
