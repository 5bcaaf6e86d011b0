package domain

// PushTarget is one device token and the platform it was registered from.
type PushTarget struct {
	Token    string `json:"token"`
	Platform string `json:"platform,omitempty"`
}

// AndroidHints are Android-specific delivery options. Sound is a raw resource
// name without extension.
type AndroidHints struct {
	Sound     string `json:"sound,omitempty"`
	ChannelID string `json:"channelId,omitempty"`
}

// IOSHints are APNs-specific delivery options. Sound is a bundled file name
// including its extension.
type IOSHints struct {
	Sound string `json:"sound,omitempty"`
	Badge *int   `json:"badge,omitempty"`
}

// PlatformHints carries per-platform delivery options for one push.
type PlatformHints struct {
	Android *AndroidHints `json:"android,omitempty"`
	IOS     *IOSHints     `json:"ios,omitempty"`
}

// PushContent is the displayable part of a push.
type PushContent struct {
	Title string
	Body  string
	Data  map[string]string
	Hints PlatformHints
}

// PushMessage is what a transport receives: already-deduplicated targets plus content.
type PushMessage struct {
	Targets []PushTarget
	PushContent
}

// TokenResult is the transport's verdict for one token.
type TokenResult struct {
	Token        string
	Success      bool
	MessageID    string
	Unregistered bool
	Err          error
}

// DispatchOutcome aggregates per-token results for one dispatch. It is never persisted.
type DispatchOutcome struct {
	Attempted int
	Succeeded int
	Failed    int
	Results   []TokenResult
}
