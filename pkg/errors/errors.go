package errors

import (
	"errors"
	"fmt"
)

// Kind 错误分类，与传输协议无关，由上层映射为 HTTP 状态码
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindValidation
	KindPersistence
	KindUnauthorized
	KindForbidden
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindValidation:
		return "validation"
	case KindPersistence:
		return "persistence"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// Error 业务错误：分类 + 业务码 + 面向用户的消息 + 内部原因（仅用于日志）
type Error struct {
	kind    Kind
	code    int
	message string
	cause   error
}

// New 创建业务错误（通常作为包级哨兵变量）
func New(kind Kind, code int, message string) *Error {
	return &Error{kind: kind, code: code, message: message}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Kind 返回错误分类
func (e *Error) Kind() Kind { return e.kind }

// Code 返回业务码
func (e *Error) Code() int { return e.code }

// Message 返回面向用户的消息（不含内部原因）
func (e *Error) Message() string { return e.message }

// Unwrap 支持 errors.Is / errors.As 穿透到内部原因
func (e *Error) Unwrap() error { return e.cause }

// Is 按业务码比较，使带原因的副本仍能匹配哨兵
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.code == t.code
}

// Wrap 返回附带内部原因的副本，哨兵本身不被修改
func (e *Error) Wrap(cause error) *Error {
	cp := *e
	cp.cause = cause
	return &cp
}

// ErrPersistence 底层存储失败（超时、约束冲突、事务失败等），对调用方不透明
var ErrPersistence = New(KindPersistence, 50001, "数据存储失败")

// Persistence 将存储层错误包装为 ErrPersistence
func Persistence(cause error) *Error {
	return ErrPersistence.Wrap(cause)
}

// KindOf 提取错误分类；非业务错误一律视为 KindInternal
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindInternal
}

// As 提取业务错误
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
