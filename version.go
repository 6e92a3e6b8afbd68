package qrvalidator

// FHIRVersion represents a FHIR specification version.
type FHIRVersion string

// Supported FHIR versions.
const (
	// R4 is FHIR Release 4 (4.0.1)
	R4 FHIRVersion = "R4"
	// R4B is FHIR Release 4B (4.3.0)
	R4B FHIRVersion = "R4B"
	// R5 is FHIR Release 5 (5.0.0)
	R5 FHIRVersion = "R5"
)

// String returns the version string.
func (v FHIRVersion) String() string {
	return string(v)
}

// IsValid returns true if this is a supported FHIR version.
func (v FHIRVersion) IsValid() bool {
	switch v {
	case R4, R4B, R5:
		return true
	default:
		return false
	}
}

// versionStrings maps the fhirVersion values found in questionnaires to
// their release.
var versionStrings = map[string]FHIRVersion{
	"4.0.0": R4,
	"4.0.1": R4,
	"4.3.0": R4B,
	"5.0.0": R5,
}

// VersionFromString maps a Questionnaire.fhirVersion value such as "4.0.1"
// to its release. The second return is false for unrecognized values.
func VersionFromString(s string) (FHIRVersion, bool) {
	v, ok := versionStrings[s]
	return v, ok
}
