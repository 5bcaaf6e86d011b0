package domain

// ListingEvent is emitted by the listing source once a listing is durably created.
type ListingEvent struct {
	ListingID          string `json:"id" validate:"required,max=128"`
	Make               string `json:"make" validate:"max=64"`
	Model              string `json:"model" validate:"max=64"`
	Region             string `json:"region,omitempty" validate:"max=64"`
	RegistrationNumber string `json:"registrationNumber,omitempty" validate:"max=32"`
}

// SubmissionResult is attached to the listing-creation response. Sent and
// saved counts are independent and may legitimately differ.
type SubmissionResult struct {
	ListingID          string `json:"listingId"`
	Recipients         int    `json:"recipients"`
	NotificationsSent  int    `json:"notificationsSent"`
	NotificationsSaved int    `json:"notificationsSaved"`
	ResolveError       string `json:"resolveError,omitempty"`
	DispatchError      string `json:"dispatchError,omitempty"`
	StoreError         string `json:"storeError,omitempty"`
}

// DirectSendRequest pushes to a single token and optionally records one notification.
type DirectSendRequest struct {
	Token       string            `json:"token" validate:"required,max=4096"`
	Platform    string            `json:"platform" validate:"omitempty,oneof=android ios web"`
	Title       string            `json:"title" validate:"required,max=256"`
	Body        string            `json:"body" validate:"required,max=2048"`
	RecipientID string            `json:"recipientId" validate:"omitempty,max=128"`
	Category    string            `json:"category" validate:"omitempty,max=64"`
	Payload     map[string]string `json:"payload"`
}

// DirectSendResult reports both halves of a direct send.
type DirectSendResult struct {
	Sent          bool          `json:"sent"`
	Notification  *Notification `json:"notification"`
	DispatchError string        `json:"dispatchError,omitempty"`
	StoreError    string        `json:"storeError,omitempty"`
}
