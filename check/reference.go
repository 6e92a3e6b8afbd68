package check

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	qv "github.com/reason-healthcare/qrvalidator"
	"github.com/reason-healthcare/qrvalidator/model"
)

var (
	// Type/id with an optional version suffix
	relativeRefPattern = regexp.MustCompile("^[A-Za-z]+/[A-Za-z0-9\\-.]+(?:/_history/[A-Za-z0-9\\-.]+)?$")
	// http(s) URL ending in Type/id with an optional version suffix
	absoluteRefPattern = regexp.MustCompile("^https?://\\S+/[A-Za-z]+/[A-Za-z0-9\\-.]+(?:/_history/[A-Za-z0-9\\-.]+)?$")
	// contained resource fragment
	fragmentRefPattern = regexp.MustCompile("^#[A-Za-z0-9\\-.]+$")
	// OID roots are restricted to 0, 1, and 2
	urnOIDPattern = regexp.MustCompile("^urn:oid:[012](\\.[1-9]\\d*)+$")
)

// checkReference validates the shape of a reference answer and, where a
// resource type can be read off it, checks that type against the known
// R4 set and the item's referenceResource restriction. urn and fragment
// references carry no type and skip the type checks.
func (c *Checker) checkReference(item *model.Item, ans model.Answer, path string, r *qv.Result) {
	ref, ok := ans.Reference()
	if !ok {
		return
	}

	switch {
	case strings.HasPrefix(ref, "urn:uuid:"):
		if !validLowercaseUUID(strings.TrimPrefix(ref, "urn:uuid:")) {
			c.malformedReference(ref, path, r)
		}
		return
	case strings.HasPrefix(ref, "urn:oid:"):
		if !urnOIDPattern.MatchString(ref) {
			c.malformedReference(ref, path, r)
		}
		return
	case strings.HasPrefix(ref, "#"):
		if !fragmentRefPattern.MatchString(ref) {
			c.malformedReference(ref, path, r)
		}
		return
	}

	resourceType, ok := referencedType(ref)
	if !ok {
		c.malformedReference(ref, path, r)
		return
	}
	if !knownResourceType(resourceType) {
		r.AddError(qv.IssueTypeInvalid,
			fmt.Sprintf("The resource type '%s' is not a known resource type", resourceType),
			path)
		return
	}
	if allowed := item.Constraints.ReferenceTypes; len(allowed) > 0 && !slices.Contains(allowed, resourceType) {
		r.AddError(qv.IssueTypeInvariant,
			fmt.Sprintf("The resource type '%s' is not permitted for this reference", resourceType),
			path)
	}
}

func (c *Checker) malformedReference(ref, path string, r *qv.Result) {
	r.AddError(qv.IssueTypeInvalid,
		fmt.Sprintf("The reference '%s' is not a well-formed reference", ref),
		path)
}

// referencedType extracts the resource type segment from a relative or
// absolute reference.
func referencedType(ref string) (string, bool) {
	switch {
	case relativeRefPattern.MatchString(ref):
		return ref[:strings.IndexByte(ref, '/')], true
	case absoluteRefPattern.MatchString(ref):
		parts := strings.Split(ref, "/")
		if len(parts) >= 4 && parts[len(parts)-2] == "_history" {
			parts = parts[:len(parts)-2]
		}
		return parts[len(parts)-2], true
	}
	return "", false
}
