// Package responses defines API response types used by catlink HTTP handlers.
package responses

import "time"

// LinkResponse represents one parsed entity link.
type LinkResponse struct {
	Link            string `json:"link"`
	LinkType        string `json:"link_type"`
	EntityType      string `json:"entity_type"`
	EntityFQN       string `json:"entity_fqn"`
	FieldName       string `json:"field_name,omitempty"`
	ArrayFieldName  string `json:"array_field_name,omitempty"`
	ArrayFieldValue string `json:"array_field_value,omitempty"`
	FieldType       string `json:"field_type"`
	FieldValue      string `json:"field_value"`
}

// ExtractResponse represents the lenient extraction API response.
type ExtractResponse struct {
	Links []LinkResponse `json:"links"`
	Count int            `json:"count"`
}

// PostResponse represents one post of a thread.
type PostResponse struct {
	ID          string    `json:"id"`
	From        string    `json:"from"`
	Message     string    `json:"message"`
	MessageHTML string    `json:"message_html,omitempty"`
	PostedAt    time.Time `json:"posted_at"`
}

// ThreadResponse represents a conversation thread.
type ThreadResponse struct {
	ID        string         `json:"id"`
	About     string         `json:"about"`
	AboutFQN  string         `json:"about_fqn"`
	CreatedBy string         `json:"created_by"`
	CreatedAt time.Time      `json:"created_at"`
	Posts     []PostResponse `json:"posts"`
}

// ThreadListResponse represents the thread listing API response.
type ThreadListResponse struct {
	Threads []ThreadResponse `json:"threads"`
	Count   int              `json:"count"`
}

// ChangeResponse represents one recorded field change.
type ChangeResponse struct {
	Link            string    `json:"link"`
	EntityType      string    `json:"entity_type"`
	EntityFQN       string    `json:"entity_fqn"`
	FieldType       string    `json:"field_type"`
	EventType       string    `json:"event_type"`
	FieldName       string    `json:"field_name"`
	OldValue        any       `json:"old_value,omitempty"`
	NewValue        any       `json:"new_value,omitempty"`
	PreviousVersion float64   `json:"previous_version"`
	Version         float64   `json:"version"`
	UpdatedBy       string    `json:"updated_by,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// ChangesResponse represents the change log query API response.
type ChangesResponse struct {
	Link      string           `json:"link,omitempty"`
	FieldType string           `json:"field_type,omitempty"`
	Changes   []ChangeResponse `json:"changes"`
	Count     int              `json:"count"`
}

// HealthResponse represents the health check API response.
type HealthResponse struct {
	Status       string    `json:"status"`
	Timestamp    time.Time `json:"timestamp"`
	Version      string    `json:"version"`
	Uptime       float64   `json:"uptime"`
	DaemonStatus string    `json:"daemon_status,omitempty"`
}

// StatusResponse represents the daemon's operational status.
type StatusResponse struct {
	Status          string        `json:"status"`
	Uptime          float64       `json:"uptime"`
	StartTime       time.Time     `json:"start_time"`
	LastReindex     *time.Time    `json:"last_reindex,omitempty"`
	MentionsIndexed int           `json:"mentions_indexed"`
	Config          ConfigSummary `json:"config"`
	Timestamp       time.Time     `json:"timestamp"`
}

// ConfigSummary represents a sanitized view of the configuration.
type ConfigSummary struct {
	APIPort         int    `json:"api_port"`
	AdminPort       int    `json:"admin_port"`
	EventsEnabled   bool   `json:"events_enabled"`
	ReindexEnabled  bool   `json:"reindex_enabled"`
	ReindexInterval string `json:"reindex_interval,omitempty"`
}

// ErrorResponse represents an error API response.
type ErrorResponse struct {
	Status    string    `json:"status"`
	Error     string    `json:"error"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
