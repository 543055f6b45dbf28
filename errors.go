package handodds

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a calculation failure
type ErrorKind string

const (
	// KindInvalidInput means a supplied value is not a non-negative integer
	KindInvalidInput ErrorKind = "InvalidInput"

	// KindConstraintViolation means individually valid values break a
	// cross-field invariant
	KindConstraintViolation ErrorKind = "ConstraintViolation"
)

// ErrorCode 错误代码类型
type ErrorCode string

// 错误代码常量
const (
	// 系统级错误 (1000-1999)
	ErrCodeSystem           ErrorCode = "HANDODDS_1000"
	ErrCodeRedisConnection  ErrorCode = "HANDODDS_1001"
	ErrCodeConfigInvalid    ErrorCode = "HANDODDS_1004"
	ErrCodeCircuitBreakOpen ErrorCode = "HANDODDS_1005"

	// 业务级错误 (2000-2999)
	ErrCodeInvalidInput        ErrorCode = "HANDODDS_2000"
	ErrCodeConstraintViolation ErrorCode = "HANDODDS_2001"

	// 状态相关错误 (6000-6999)
	ErrCodeStateNotFound         ErrorCode = "HANDODDS_6000"
	ErrCodeStateSaveFailure      ErrorCode = "HANDODDS_6001"
	ErrCodeStateLoadFailure      ErrorCode = "HANDODDS_6002"
	ErrCodeSerializationFailed   ErrorCode = "HANDODDS_6004"
	ErrCodeDeserializationFailed ErrorCode = "HANDODDS_6005"
)

// CalcError is the structured failure returned by validation, the
// combinatorics engine and both calculators. Message is meant to be shown to
// the end user as-is.
type CalcError struct {
	Kind    ErrorKind `json:"kind,omitempty"`
	Code    ErrorCode `json:"code"`
	Field   string    `json:"field,omitempty"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error 实现 error 接口
func (e *CalcError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Details)
	}
	return e.Message
}

// Unwrap 实现 errors.Unwrap 接口
func (e *CalcError) Unwrap() error { return e.Cause }

// Is matches on Kind when the target carries one, otherwise on Code.
func (e *CalcError) Is(target error) bool {
	t, ok := target.(*CalcError)
	if !ok {
		return false
	}
	if t.Kind != "" {
		return e.Kind == t.Kind
	}
	return e.Code == t.Code
}

// WithCause 添加原因错误
func (e *CalcError) WithCause(cause error) *CalcError {
	c := *e
	c.Cause = cause
	return &c
}

// WithDetails 添加详细信息
func (e *CalcError) WithDetails(details string) *CalcError {
	c := *e
	c.Details = details
	return &c
}

// NewError 创建新的错误
func NewError(code ErrorCode, message string) *CalcError {
	return &CalcError{Code: code, Message: message}
}

// NewInvalidInputError reports that field is not a non-negative integer.
func NewInvalidInputError(field string) *CalcError {
	return &CalcError{
		Kind:    KindInvalidInput,
		Code:    ErrCodeInvalidInput,
		Field:   field,
		Message: fmt.Sprintf("%s must be a non-negative integer", field),
	}
}

// NewConstraintViolationError reports a broken cross-field invariant.
func NewConstraintViolationError(message string) *CalcError {
	return &CalcError{
		Kind:    KindConstraintViolation,
		Code:    ErrCodeConstraintViolation,
		Message: message,
	}
}

// 预定义的错误实例
var (
	// ErrInvalidInput matches every InvalidInput failure via errors.Is
	ErrInvalidInput = &CalcError{Kind: KindInvalidInput, Code: ErrCodeInvalidInput, Message: "invalid input"}

	// ErrConstraintViolation matches every ConstraintViolation failure via errors.Is
	ErrConstraintViolation = &CalcError{
		Kind: KindConstraintViolation, Code: ErrCodeConstraintViolation, Message: "constraint violation",
	}

	ErrCircuitBreakerOpen    = NewError(ErrCodeCircuitBreakOpen, "circuit breaker is open")
	ErrStateNotFound         = NewError(ErrCodeStateNotFound, "session state not found")
	ErrStateSaveFailure      = NewError(ErrCodeStateSaveFailure, "failed to save session state")
	ErrStateLoadFailure      = NewError(ErrCodeStateLoadFailure, "failed to load session state")
	ErrSerializationFailed   = NewError(ErrCodeSerializationFailed, "serialization failed")
	ErrDeserializationFailed = NewError(ErrCodeDeserializationFailed, "deserialization failed")
)

// KindOf returns the ErrorKind carried by err, or "" for non-domain errors.
func KindOf(err error) ErrorKind {
	var calcErr *CalcError
	if errors.As(err, &calcErr) {
		return calcErr.Kind
	}
	return ""
}

// IsRetryableError 检查是否为可重试错误
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"connection refused",
		"connection reset",
		"timeout",
		"network is unreachable",
		"temporary failure",
		"server closed",
		"broken pipe",
		"i/o timeout",
		"dial tcp",
		"read tcp",
		"write tcp",
		"connection timed out",
		"no route to host",
		"redis: connection pool timeout",
		"context deadline exceeded",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}
