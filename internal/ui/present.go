package ui

import (
	"errors"
	"fmt"

	pkgerrors "graphlearn/pkg/errors"
)

// User-facing fallbacks per error kind.
const (
	MsgNetwork      = "Could not reach the server. Check your connection and try again."
	MsgUnavailable  = "The service is temporarily unavailable. Please try again later."
	MsgTemplateLoad = "Error: could not load the page."
	MsgUnknown      = "An unknown error occurred."
)

// Present turns an error into the message shown to the user. Server
// rejections show the server's detail; other kinds get a fixed message.
func Present(err error) string {
	if err == nil {
		return ""
	}
	appErr := pkgerrors.GetAppError(err)
	if appErr == nil {
		if msg := err.Error(); msg != "" {
			return msg
		}
		return MsgUnknown
	}

	switch appErr.Type {
	case pkgerrors.ErrorTypeServerRejection, pkgerrors.ErrorTypeUnauthorized, pkgerrors.ErrorTypeValidation:
		return appErr.Message
	case pkgerrors.ErrorTypeNetwork:
		return MsgNetwork
	case pkgerrors.ErrorTypeUnavailable:
		return MsgUnavailable
	case pkgerrors.ErrorTypeTemplateLoad:
		return MsgTemplateLoad
	case pkgerrors.ErrorTypeRender:
		if cause := errors.Unwrap(appErr); cause != nil {
			return "Rendering error: " + cause.Error()
		}
		return "Rendering error"
	}
	if appErr.Message != "" {
		return appErr.Message
	}
	return MsgUnknown
}

// Presentf prefixes the presented error with a context message.
func Presentf(err error, format string, args ...interface{}) string {
	return fmt.Sprintf(format, args...) + ": " + Present(err)
}
