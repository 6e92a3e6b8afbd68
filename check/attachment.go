package check

import (
	"encoding/base64"
	"fmt"
	"slices"

	qv "github.com/reason-healthcare/qrvalidator"
	"github.com/reason-healthcare/qrvalidator/model"
)

// sizeTolerance absorbs base64 padding rounding when comparing decoded
// data against the stated attachment size.
const sizeTolerance = 2

// checkAttachment validates an attachment answer: the data must decode
// as base64, the decoded length must agree with the stated size, and
// the stated size and content type must satisfy the item's maxSize and
// mimeType extensions.
func (c *Checker) checkAttachment(item *model.Item, ans model.Answer, path string, r *qv.Result) {
	att, ok := ans.Attachment()
	if !ok {
		return
	}

	decodedLen := int64(-1)
	if att.HasData {
		decoded, err := base64.StdEncoding.DecodeString(att.Data)
		if err != nil {
			r.AddError(qv.IssueTypeStructure, "The attachment data is not valid base64", path)
		} else {
			decodedLen = int64(len(decoded))
		}
	}
	if decodedLen >= 0 && att.HasSize {
		if diff := decodedLen - att.Size; diff < -sizeTolerance || diff > sizeTolerance {
			r.AddError(qv.IssueTypeStructure,
				fmt.Sprintf("The attachment data length %d does not match the stated size %d", decodedLen, att.Size),
				path)
		}
	}
	if max := item.Constraints.MaxSize; max != nil && att.HasSize && att.Size > *max {
		r.AddError(qv.IssueTypeValue,
			fmt.Sprintf("The attachment size %d exceeds the maximum size of %d", att.Size, *max),
			path)
	}
	if types := item.Constraints.MimeTypes; len(types) > 0 && att.ContentType != "" {
		if !slices.Contains(types, att.ContentType) {
			r.AddError(qv.IssueTypeInvariant,
				fmt.Sprintf("The content type '%s' is not one of the permitted MIME types", att.ContentType),
				path)
		}
	}
}
