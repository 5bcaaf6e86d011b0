package domain

// Recipient is a directory entry eligible for listing alerts. The service never
// owns recipients; they are re-read from the directory for every listing event.
type Recipient struct {
	RecipientID string   `json:"id" dynamodbav:"user_id" bson:"_id"`
	Role        string   `json:"role" dynamodbav:"role" bson:"role"`
	Region      string   `json:"region,omitempty" dynamodbav:"region" bson:"region"`
	Enable      int      `json:"enable" dynamodbav:"enable" bson:"enable"`
	Devices     []Device `json:"devices" dynamodbav:"-" bson:"-"`
}

// Active reports whether the recipient is enabled in the directory.
func (r Recipient) Active() bool { return r.Enable == 1 }

// HasToken reports whether at least one enabled device carries a push token.
func (r Recipient) HasToken() bool {
	for _, d := range r.Devices {
		if d.Enable && d.Token != "" {
			return true
		}
	}
	return false
}

// PushTargets returns one target per enabled device with a token.
func (r Recipient) PushTargets() []PushTarget {
	var out []PushTarget
	for _, d := range r.Devices {
		if !d.Enable || d.Token == "" {
			continue
		}
		out = append(out, PushTarget{Token: d.Token, Platform: d.Platform})
	}
	return out
}
