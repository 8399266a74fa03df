package api

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-style/internal/style"
)

// httpError maps an editor error onto the huma status error for its kind.
func httpError(err error) error {
	if err == nil {
		return nil
	}
	var se huma.StatusError
	if errors.As(err, &se) {
		return err
	}

	msg := err.Error()
	switch style.KindOf(err) {
	case style.KindUnknownLayer, style.KindUnknownVersion:
		return huma.Error404NotFound(msg, err)
	case style.KindInvalidProperty, style.KindInvalidDocument,
		style.KindMissingCoordinateColumns, style.KindInvalidSetting:
		return huma.Error422UnprocessableEntity(msg, err)
	case style.KindProtectedLayer, style.KindRendererRejected:
		return huma.Error409Conflict(msg, err)
	case style.KindFetchFailure:
		return huma.Error502BadGateway(msg, err)
	}
	return huma.Error500InternalServerError(msg, err)
}
