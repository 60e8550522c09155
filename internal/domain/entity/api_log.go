package entity

import "time"

// APILog represents a log entry for a request sent to Microsoft Graph
type APILog struct {
	ID           int64     `json:"id"`
	RequestID    string    `json:"request_id"`
	Endpoint     string    `json:"endpoint"`
	Method       string    `json:"method"`
	RequestBody  string    `json:"request_body"`
	ResponseBody string    `json:"response_body"`
	StatusCode   int       `json:"status_code"`
	Duration     int64     `json:"duration_ms"`
	UserID       string    `json:"user_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
