package interview

// Error kinds, stable for the transport layer to map onto responses.
const (
	KindValidation  = "validation"
	KindNotFound    = "not_found"
	KindConflict    = "conflict"
	KindTransaction = "transaction"
)

// ServiceError classifies a failed operation. AI pipeline failures never
// become ServiceErrors; they are absorbed with fallback values.
type ServiceError struct {
	Kind    string
	Code    string
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error { return e.Err }

func validationError(code, message string) *ServiceError {
	return &ServiceError{Kind: KindValidation, Code: code, Message: message}
}

func notFoundError(code, message string, err error) *ServiceError {
	return &ServiceError{Kind: KindNotFound, Code: code, Message: message, Err: err}
}

func conflictError(code, message string) *ServiceError {
	return &ServiceError{Kind: KindConflict, Code: code, Message: message}
}

func transactionError(message string, err error) *ServiceError {
	return &ServiceError{Kind: KindTransaction, Code: "transaction_failed", Message: message, Err: err}
}
