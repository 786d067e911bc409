package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// Default user-facing messages returned when the upstream gives none.
const (
	MsgUpdateFailed  = "Cập nhật không thành công"
	MsgLoginFailed   = "Đăng nhập không thành công. Vui lòng kiểm tra email/mật khẩu."
	MsgGenericFailed = "Đã có lỗi xảy ra. Vui lòng thử lại."
	MsgNetworkError  = "Network error"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	// UpstreamStatus is the status reported by the webhook platform; 0 when the
	// request never got a response.
	UpstreamStatus int
	Details        map[string]any
	Err            error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

// NewUpstreamError classifies a failed webhook exchange. status is the
// upstream HTTP status (0 for transport failures); rejected marks an HTTP
// success whose body status was not "success".
func NewUpstreamError(status int, message string, rejected bool) error {
	if message == "" {
		message = MsgGenericFailed
	}
	switch {
	case status == 0:
		return &DomainError{Code: "UPSTREAM_UNREACHABLE", Message: message, HTTPStatus: http.StatusBadGateway}
	case rejected:
		return &DomainError{Code: "UPSTREAM_REJECTED", Message: message, HTTPStatus: http.StatusUnprocessableEntity, UpstreamStatus: status}
	case status == http.StatusNotFound:
		return &DomainError{Code: "NOT_FOUND", Message: message, HTTPStatus: http.StatusNotFound, UpstreamStatus: status}
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &DomainError{Code: "UNAUTHORIZED", Message: message, HTTPStatus: http.StatusUnauthorized, UpstreamStatus: status}
	case status >= 400 && status < 500:
		return &DomainError{Code: "UPSTREAM_FAILED", Message: message, HTTPStatus: status, UpstreamStatus: status}
	default:
		return &DomainError{Code: "UPSTREAM_FAILED", Message: message, HTTPStatus: http.StatusBadGateway, UpstreamStatus: status}
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// IsCode reports whether err carries the given domain code.
func IsCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}
