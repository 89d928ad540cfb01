package types

import "time"

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type TTSRequest struct {
	Text    string `json:"text"`
	VoiceID string `json:"voiceId,omitempty"`
}

// Message is one persisted line of a user's conversation.
type Message struct {
	Sender    string    `json:"sender" bson:"sender"`
	Text      string    `json:"text" bson:"text"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// Chat is the per-user history document.
type Chat struct {
	UserID   string    `json:"userId" bson:"userId"`
	Messages []Message `json:"messages" bson:"messages"`
}

const (
	SenderUser      = "User"
	SenderAssistant = "Assistant"
)
