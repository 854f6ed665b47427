package client

// ChatRequest is the body of POST <endpoint>.
type ChatRequest struct {
	Message string           `json:"message"`
	History []HistoryMessage `json:"history"`
}

// HistoryMessage is one prior conversation entry as sent to the service.
// Message identity and charts are client-side only and never serialized.
type HistoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ErrorResponse is the JSON body some deployments return with a non-2xx status.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
