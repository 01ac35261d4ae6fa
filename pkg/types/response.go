package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

// ListData wraps collection payloads with their length so clients
// do not have to count items themselves.
type ListData struct {
	Items any `json:"items"`
	Count int `json:"count"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
