package zerror

import (
	"fmt"
	"maps"
)

// ZError represents the error structure.
type ZError struct {
	parent error
	status Status
	code   string
	msg    string
	data   map[string]any
}

// NewZError initializes a ZError instance.
//
// code example: PRODUCT_NOT_FOUND
func NewZError(parent error, status Status, code, msg string) ZError {
	return ZError{
		parent: parent,
		status: status,
		code:   code,
		msg:    msg,
	}
}

// Error returns the error message for the ZError.
func (e ZError) Error() string {
	switch {
	case e.parent != nil && len(e.data) > 0:
		return fmt.Sprintf("Code=%s, Msg=%s, Data=%v, Parent=(%v)", e.code, e.msg, e.data, e.parent)
	case e.parent != nil:
		return fmt.Sprintf("Code=%s, Msg=%s, Parent=(%v)", e.code, e.msg, e.parent)
	case len(e.data) > 0:
		return fmt.Sprintf("Code=%s, Msg=%s, Data=%v", e.code, e.msg, e.data)
	default:
		return fmt.Sprintf("Code=%s, Msg=%s", e.code, e.msg)
	}
}

// WrapParent attaches an underlying error to an existing predefined ZError.
func (e ZError) WrapParent(parent error) ZError {
	if parent == nil {
		return e
	}
	e.parent = parent
	return e
}

// WithData attaches a contextual key/value pair to a copy of the ZError.
// The receiver is not modified, so predefined errors stay reusable.
func (e ZError) WithData(key string, value any) ZError {
	data := make(map[string]any, len(e.data)+1)
	maps.Copy(data, e.data)
	data[key] = value
	e.data = data
	return e
}

// Unwrap returns the underlying error for the ZError.
func (e *ZError) Unwrap() error {
	return e.parent
}

// Status returns the status of the ZError.
func (e ZError) Status() Status {
	return e.status
}

// Code returns the code of the ZError.
func (e ZError) Code() string {
	return e.code
}

// Msg returns the message of the ZError.
func (e ZError) Msg() string {
	return e.msg
}

// Data returns the contextual data attached to the ZError.
func (e ZError) Data() map[string]any {
	return e.data
}

// Parent returns the underlying error for the ZError.
func (e ZError) Parent() error {
	return e.parent
}

func NewNotFound(code, msg string) ZError {
	return NewZError(nil, StatusNotFound, code, msg)
}

func NewUnprocessableEntity(code, msg string) ZError {
	return NewZError(nil, StatusUnprocessableEntity, code, msg)
}

func NewConflict(code, msg string) ZError {
	return NewZError(nil, StatusConflict, code, msg)
}

func NewBadRequest(code, msg string) ZError {
	return NewZError(nil, StatusBadRequest, code, msg)
}

func NewValidationFailed(code, msg string) ZError {
	return NewZError(nil, StatusValidationFailed, code, msg)
}

func NewInternalServerError(code, msg string) ZError {
	return NewZError(nil, StatusInternalServerError, code, msg)
}
