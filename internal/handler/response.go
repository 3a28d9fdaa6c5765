package handler

// SuccessResponse is returned with 200 once a notification was relayed.
// Exactly one of Alert and Event is set.
type SuccessResponse struct {
	Alert   *AlertSummary `json:"alert,omitempty"`
	Event   *EventSummary `json:"event,omitempty"`
	Message string        `json:"message"`
	Success bool          `json:"success"`
	DryRun  bool          `json:"dry_run,omitempty"`
}

// AlertSummary describes a relayed Datto RMM alert.
type AlertSummary struct {
	Device   string `json:"device"`
	Site     string `json:"site"`
	Type     string `json:"type"`
	Priority string `json:"priority"`
}

// EventSummary describes a relayed OpenPhone event.
type EventSummary struct {
	Type      string `json:"type"`
	Direction string `json:"direction"`
	From      string `json:"from"`
	To        string `json:"to"`
	Status    string `json:"status"`
}

// ErrorResponse is returned for 405 and for every aborted invocation (500).
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// HealthResponse represents the JSON response for the /health endpoint
type HealthResponse struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	Uptime     string `json:"uptime"`
	Configured bool   `json:"configured"`
}
