package domain

import "time"

// Device platforms.
const (
	PlatformAndroid = "android"
	PlatformIOS     = "ios"
	PlatformWeb     = "web"
)

// RegisterTokenRequest registers a push token for the authenticated recipient.
type RegisterTokenRequest struct {
	Token    string `json:"token" validate:"required,max=4096"`
	Platform string `json:"platform" validate:"omitempty,oneof=android ios web"`
}

type Device struct {
	DeviceID    string    `json:"id" dynamodbav:"device_id" bson:"_id"`
	RecipientID string    `json:"recipientId" dynamodbav:"user_id" bson:"user_id"`
	Token       string    `json:"token" dynamodbav:"token" bson:"token"`
	Platform    string    `json:"platform" dynamodbav:"platform" bson:"platform"`
	Enable      bool      `json:"enable" dynamodbav:"enable" bson:"enable"`
	CreatedAt   time.Time `json:"created" dynamodbav:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated" dynamodbav:"updated_at" bson:"updated_at"`
}
