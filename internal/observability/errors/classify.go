// Package errors maps errors onto a small, fixed set of metric tag values.
package errors

import (
	"context"
	goerrors "errors"

	apperrors "github.com/target/maintdesk/internal/errors"
)

// ClassUnknown tags errors that carry no application code.
const ClassUnknown = "unknown"

// Classify returns a low-cardinality name for err. Context errors win over
// application codes; nil returns "".
func Classify(err error) string {
	switch {
	case err == nil:
		return ""
	case goerrors.Is(err, context.Canceled):
		return string(apperrors.ErrCodeCanceled)
	case goerrors.Is(err, context.DeadlineExceeded):
		return string(apperrors.ErrCodeTimeout)
	}
	if code := apperrors.GetCode(err); code != "" {
		return string(code)
	}
	return ClassUnknown
}
