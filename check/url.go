package check

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	qv "github.com/reason-healthcare/qrvalidator"
	"github.com/reason-healthcare/qrvalidator/model"
)

// checkURL validates urn:uuid answers. The UUID part must be the
// canonical lowercase hyphenated form.
func (c *Checker) checkURL(ans model.Answer, path string, r *qv.Result) {
	u, ok := ans.URI()
	if !ok {
		return
	}
	if id, found := strings.CutPrefix(u, "urn:uuid:"); found && !validLowercaseUUID(id) {
		r.AddError(qv.IssueTypeInvalid,
			fmt.Sprintf("The URI '%s' is malformed: UUIDs must be valid and lowercase", u),
			path)
	}
}

// validLowercaseUUID accepts only the canonical 36-character lowercase
// form; braces, uppercase, and undashed variants are rejected.
func validLowercaseUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return false
	}
	return s == parsed.String()
}
