package constants

// Standard response field keys
const (
	ResponseFieldMessage = "message"
	ResponseFieldDetails = "details"
	ResponseFieldData    = "data"
)

// BuildErrorResponse formats an error response body
func BuildErrorResponse(message string, details any) map[string]any {
	response := map[string]any{
		ResponseFieldMessage: message,
	}

	if details != nil {
		response[ResponseFieldDetails] = details
	}

	return response
}

// BuildSuccessResponse formats a message-only success body
func BuildSuccessResponse(message string) map[string]any {
	return map[string]any{
		ResponseFieldMessage: message,
	}
}

// BuildDataResponse formats a success body carrying a payload
func BuildDataResponse(message string, data any) map[string]any {
	return map[string]any{
		ResponseFieldMessage: message,
		ResponseFieldData:    data,
	}
}
