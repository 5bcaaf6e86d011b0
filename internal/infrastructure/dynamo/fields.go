package dynamo

// DynamoDB attribute names used in key conditions and update expressions.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	attrRecipientID    = "recipient_id"
	attrNotificationID = "notification_id"
	attrUserID         = "user_id"
	attrDeviceID       = "device_id"
	attrToken          = "token"

	fieldEnable    = "enable"
	fieldIsRead    = "is_read"
	fieldRole      = "role"
	fieldUpdatedAt = "updated_at"
)

// Index names.
const (
	indexEnable = "enable-index"
	indexUserID = "user_id-index"
	indexToken  = "token-index"
)
