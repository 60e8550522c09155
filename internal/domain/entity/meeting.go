package entity

import "encoding/json"

// CreateMeetingRequest is the body of POST /api/meetings
type CreateMeetingRequest struct {
	UserID      string            `json:"userId"`
	Subject     string            `json:"subject"`
	StartTime   string            `json:"startTime"`
	EndTime     string            `json:"endTime"`
	Attendees   []string          `json:"attendees"`
	Body        string            `json:"body,omitempty"`
	Attachments []json.RawMessage `json:"attachments,omitempty"` // accepted, not uploaded
}

// MissingRequired reports whether any mandatory field is absent.
// An empty attendee list counts as present.
func (r *CreateMeetingRequest) MissingRequired() bool {
	return r.UserID == "" || r.Subject == "" || r.StartTime == "" || r.EndTime == "" || r.Attendees == nil
}

// MeetingDetails is the part of a meeting request sent to the calendar
type MeetingDetails struct {
	Subject   string
	StartTime string
	EndTime   string
	Attendees []string
	Body      string
}

// GraphEvent is the Microsoft Graph event creation payload
type GraphEvent struct {
	Subject               string          `json:"subject"`
	Start                 GraphDateTime   `json:"start"`
	End                   GraphDateTime   `json:"end"`
	Body                  GraphItemBody   `json:"body"`
	Attendees             []GraphAttendee `json:"attendees"`
	IsOnlineMeeting       bool            `json:"isOnlineMeeting"`
	OnlineMeetingProvider string          `json:"onlineMeetingProvider"`
}

type GraphDateTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type GraphItemBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type GraphAttendee struct {
	EmailAddress GraphEmailAddress `json:"emailAddress"`
	Type         string            `json:"type"`
}

type GraphEmailAddress struct {
	Address string `json:"address"`
}
