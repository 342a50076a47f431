package response

// ErrorBody is the error envelope shared by middleware and the central error
// handler.
type ErrorBody struct {
	Error   string      `json:"error"`
	Code    string      `json:"code,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

func Error(code, message string, details interface{}) ErrorBody {
	return ErrorBody{
		Error:   message,
		Code:    code,
		Details: details,
	}
}
