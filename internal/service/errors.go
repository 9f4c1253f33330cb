package service

import (
	"errors"
	"fmt"
)

// Общие ошибки сервисов
var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("slot already reserved")
	ErrStorage    = errors.New("storage failure")
)

// ValidationError обязательное поле отсутствует или имеет недопустимое значение.
// Возвращается до любого обращения к хранилищу.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// StorageError сбой хранилища. Детали пишутся в лог, наружу не отдаются.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}
