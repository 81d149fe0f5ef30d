package log

// Field names shared by the structured loggers.
const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldClientIP  = "client_ip"
	FieldPath      = "path"
	FieldError     = "error"
	FieldUserID    = "user_id"
	FieldProvider  = "provider"
)

// Component names.
const (
	ComponentApp  = "app"
	ComponentHTTP = "http"
)
