package notification

import "time"

// DeliveryStatus is the outcome of one channel attempt.
type DeliveryStatus string

const (
	StatusSuccess DeliveryStatus = "Success"
	StatusFailure DeliveryStatus = "Failure"
)

// DeliveryLogEntry is the immutable record written after every channel attempt.
type DeliveryLogEntry struct {
	ID           int64          `json:"id,omitempty"`
	SentAt       time.Time      `json:"sent_at"`
	SubjectID    int64          `json:"subject_id"`
	EventKind    EventKind      `json:"event_kind"`
	StatusKey    string         `json:"status_key"`
	Recipient    string         `json:"recipient"`
	ChannelType  ChannelType    `json:"channel_type"`
	Status       DeliveryStatus `json:"status"`
	Message      string         `json:"message,omitempty"`
	TemplateCode string         `json:"template_code,omitempty"`
	RawResponse  string         `json:"raw_response,omitempty"`
}

// LogFilter defines pagination and filtering options for listing delivery logs.
type LogFilter struct {
	Page        int    `form:"page"`
	PageSize    int    `form:"page_size"`
	Status      string `form:"status"`
	Recipient   string `form:"recipient"`
	ChannelType string `form:"channel_type"`
	SubjectID   int64  `form:"subject_id"`
}

// Normalize applies the default page and page size.
func (f *LogFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 100 {
		f.PageSize = 20
	}
}

// Offset is the zero-based index of the first row on the page.
func (f *LogFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// LogListResponse wraps a paginated list of delivery log entries.
type LogListResponse struct {
	Entries  []*DeliveryLogEntry `json:"entries"`
	Total    int                 `json:"total"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"page_size"`
}
