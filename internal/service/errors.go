package service

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound 记录不存在或不属于当前用户
var ErrNotFound = errors.New("not found")

// ErrInvalidCredentials 用户名或密码错误
var ErrInvalidCredentials = errors.New("invalid username or password")

// ErrForbidden 无权执行该操作
var ErrForbidden = errors.New("forbidden")

// ValidationError 输入校验失败，Message 可直接展示给用户
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError 重复操作等提示性错误，用户可以调整后重试
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func invalid(msg string) error { return &ValidationError{Message: msg} }

func conflict(msg string) error { return &ConflictError{Message: msg} }

// notFoundOr 把 gorm 的记录不存在转换为 ErrNotFound
func notFoundOr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
