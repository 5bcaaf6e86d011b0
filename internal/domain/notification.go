package domain

import "time"

// Notification categories.
const (
	CategoryCarListing = "car_listing"
	CategorySystem     = "system"
)

// Notification is one durable, per-recipient notification record.
// Only IsRead is ever mutated after creation, and only from false to true.
type Notification struct {
	NotificationID string            `json:"id" dynamodbav:"notification_id" bson:"_id"`
	RecipientID    string            `json:"recipientId" dynamodbav:"recipient_id" bson:"recipient_id"`
	Title          string            `json:"title" dynamodbav:"title" bson:"title"`
	Body           string            `json:"body" dynamodbav:"body" bson:"body"`
	Category       string            `json:"category" dynamodbav:"category" bson:"category"`
	Payload        map[string]string `json:"payload" dynamodbav:"payload" bson:"payload"`
	IsRead         bool              `json:"isRead" dynamodbav:"is_read" bson:"is_read"`
	CreatedAt      time.Time         `json:"createdAt" dynamodbav:"created_at" bson:"created_at"`
}

// NotificationDraft is the caller-supplied part of a notification before an id
// and timestamp are assigned.
type NotificationDraft struct {
	RecipientID string            `json:"recipientId" validate:"required,max=128"`
	Title       string            `json:"title" validate:"required,max=256"`
	Body        string            `json:"body" validate:"required,max=2048"`
	Category    string            `json:"category" validate:"omitempty,max=64"`
	Payload     map[string]string `json:"payload"`
}

// Pagination describes one page of a recipient's notification list.
type Pagination struct {
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	PageSize   int  `json:"pageSize"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// NewPagination computes page metadata. page and pageSize must already be clamped to >= 1.
func NewPagination(total, page, pageSize int) Pagination {
	totalPages := 0
	if total > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	return Pagination{
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// NotificationPage is a page of notifications sorted newest first.
type NotificationPage struct {
	Data       []Notification `json:"data"`
	Pagination Pagination     `json:"pagination"`
}
