package service

import (
	"context"

	"github.com/reason-healthcare/qrvalidator/model"
)

// FormSource resolves questionnaires by canonical URL. The engine uses it
// when a response names its questionnaire instead of carrying one.
type FormSource interface {
	Resolve(ctx context.Context, url string) (*model.Form, error)
}
