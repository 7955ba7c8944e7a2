package entity

import (
	"errors"
	"fmt"
)

// ErrInvalidPrediction: общий вид ошибок проверки входных данных.
var ErrInvalidPrediction = errors.New("invalid prediction")

// ValidationError описывает конкретное нарушение диапазона или формы поля.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid prediction: %s: %s", e.Field, e.Reason)
}

// Is позволяет сравнивать ошибку с ErrInvalidPrediction через errors.Is.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidPrediction
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
