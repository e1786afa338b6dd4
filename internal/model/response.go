package model

// Response is a generic struct for API responses
type Response struct {
	Data    interface{} `json:"data,omitempty"`
	Error   *string     `json:"error,omitempty"`
	Message string      `json:"message"`
}

// ErrorResponse builds the envelope used for failed requests.
func ErrorResponse(msg string) Response {
	return Response{Error: &msg, Message: "Error"}
}

// SuccessResponse builds the envelope used for successful requests.
func SuccessResponse(data interface{}) Response {
	return Response{Data: data, Message: "Success"}
}
