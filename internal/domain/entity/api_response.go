package entity

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type DataResponse struct {
	Data interface{} `json:"data"`
}

func NewErrorResponse(message string) *ErrorResponse {
	return &ErrorResponse{Error: message}
}

func NewMessageResponse(message string) *MessageResponse {
	return &MessageResponse{Message: message}
}
