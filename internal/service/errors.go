package service

import "fmt"

// Коды ошибок — по одному на вид отказавшего вызова адаптера.
const (
	KindFetch  = "FetchError"
	KindCreate = "CreateError"
	KindUpdate = "UpdateError"
	KindDelete = "DeleteError"
	KindUpload = "UploadError"
	KindAuth   = "AuthError"

	KindValidation = "ValidationError"
	KindNotFound   = "NotFound"
)

// OperationError — ошибка одной операции менеджера. Человекочитаемое
// сообщение из неё попадает в поле error менеджера и дальше в презентацию.
type OperationError struct {
	Kind    string
	Message string
	Details map[string]any
	Err     error
}

func (e *OperationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", e.Kind, e.Message, e.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

type Detail struct {
	Key     string
	Payload any
}

func ToDetail(key string, payload any) Detail {
	return Detail{Key: key, Payload: payload}
}

func NewOperationError(kind, message string, err error, details ...Detail) *OperationError {
	opErr := &OperationError{
		Kind:    kind,
		Message: message,
		Details: make(map[string]any),
		Err:     err,
	}
	for _, detail := range details {
		opErr.Details[detail.Key] = detail.Payload
	}
	return opErr
}

func NewValidationError(field, reason string) *OperationError {
	return NewOperationError(KindValidation,
		fmt.Sprintf("Неверное значение поля '%s': %s", field, reason), nil,
		ToDetail("field", field),
		ToDetail("reason", reason),
	)
}

func NewNotFound(id string) *OperationError {
	return NewOperationError(KindNotFound,
		fmt.Sprintf("Задача %s не найдена в коллекции", id), nil,
		ToDetail("id", id),
	)
}
