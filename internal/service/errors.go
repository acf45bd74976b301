package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/tripbite/internal/apperr"
)

// toConnectError maps a core error to a connect error. Taxonomy errors keep their
// message; anything else is logged and reported as an opaque internal error.
func toConnectError(err error) error {
	if errors.Is(err, context.Canceled) {
		return connect.NewError(connect.CodeCanceled, err)
	}
	var code connect.Code
	switch apperr.KindOf(err) {
	case apperr.KindUnauthenticated:
		code = connect.CodeUnauthenticated
	case apperr.KindForbidden:
		code = connect.CodePermissionDenied
	case apperr.KindNotFound:
		code = connect.CodeNotFound
	case apperr.KindConflict:
		code = connect.CodeAlreadyExists
	case apperr.KindValidationFailed:
		code = connect.CodeInvalidArgument
	case apperr.KindUpstreamUnavailable:
		code = connect.CodeUnavailable
	default:
		slog.Error("Internal error", "error", err)
		return connect.NewError(connect.CodeInternal, errors.New("internal error"))
	}
	return connect.NewError(code, errors.New(apperr.MessageOf(err)))
}
