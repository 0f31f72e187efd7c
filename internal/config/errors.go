package config

import "fmt"

// FieldError 记录出错字段与原因；Err 保留底层解析错误，便于调用方 errors.Is/As。
type FieldError struct {
	Field  string
	Reason string
	Err    error
}

func (e FieldError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e FieldError) Unwrap() error {
	return e.Err
}

func newFieldError(field, reason string) error {
	return FieldError{Field: field, Reason: reason}
}

// wrapFieldError 将解析阶段的底层错误挂到字段上。
func wrapFieldError(field string, err error) error {
	return FieldError{Field: field, Reason: "解析失败", Err: err}
}
