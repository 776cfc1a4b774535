package audit

import "time"

// Payload is the JSON document written to the outbox and to Kafka.
type Payload struct {
	ID        string `json:"id"`
	Category  string `json:"category"`
	Timestamp string `json:"timestamp"`
	Action    string `json:"action"`
	UserID    string `json:"user_id,omitempty"`
	AdminID   string `json:"admin_id,omitempty"`
	Subject   string `json:"subject,omitempty"`
	Reason    string `json:"reason,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	ClientIP  string `json:"client_ip,omitempty"`
	ClientOS  string `json:"client_os,omitempty"`
	AppID     string `json:"app_id,omitempty"`
}

// NewPayload flattens an event into its wire form.
func NewPayload(event Event) Payload {
	category := event.Category
	if category == "" {
		category = AuditEvent(event.Action).Category()
	}
	return Payload{
		ID:        event.ID,
		Category:  string(category),
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339Nano),
		Action:    event.Action,
		UserID:    event.UserID,
		AdminID:   event.AdminID,
		Subject:   event.Subject,
		Reason:    event.Reason,
		RequestID: event.RequestID,
		ClientIP:  event.ClientIP,
		ClientOS:  event.ClientOS,
		AppID:     event.AppID,
	}
}

// Event rebuilds the event. An unparseable timestamp yields the zero time.
func (p Payload) Event() Event {
	ts, _ := time.Parse(time.RFC3339Nano, p.Timestamp)
	return Event{
		ID:        p.ID,
		Category:  EventCategory(p.Category),
		Timestamp: ts,
		Action:    p.Action,
		UserID:    p.UserID,
		AdminID:   p.AdminID,
		Subject:   p.Subject,
		Reason:    p.Reason,
		RequestID: p.RequestID,
		ClientIP:  p.ClientIP,
		ClientOS:  p.ClientOS,
		AppID:     p.AppID,
	}
}
