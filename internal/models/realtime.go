package models

import (
	"encoding/json"
	"time"
)

// Hub methods a client may invoke over the websocket.
const (
	MethodSendMessage     = "SendMessage"
	MethodGetChatHistory  = "GetChatHistory"
	MethodCheckUserOnline = "CheckUserOnline"
)

// Events pushed by the hub.
const (
	EventReceiveMessage          = "ReceiveMessage"
	EventMessageSent             = "MessageSent"
	EventReceiveChatHistory      = "ReceiveChatHistory"
	EventReceiveOnlineStatus     = "ReceiveOnlineStatus"
	EventUserOnlineStatusChanged = "UserOnlineStatusChanged"
	EventError                   = "Error"
)

// Error codes carried by EventError frames.
const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeStoreUnavailable = "store_unavailable"
)

// Invocation is a client -> server frame. ID is echoed on the reply.
type Invocation struct {
	ID     int64           `json:"id"`
	Method string          `json:"method"`
	Args   json.RawMessage `json:"args"`
}

// Frame is a server -> client frame. Pushed events carry no ID.
type Frame struct {
	ID    int64  `json:"id,omitempty"`
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type SendMessageArgs struct {
	ReceiverID uint   `json:"receiverId" validate:"required"`
	Text       string `json:"text"`
}

type GetChatHistoryArgs struct {
	ReceiverID uint       `json:"receiverId" validate:"required"`
	PageSize   int        `json:"pageSize" validate:"gte=0"`
	Before     *time.Time `json:"before,omitempty"`
}

type CheckUserOnlineArgs struct {
	UserID uint `json:"userId" validate:"required"`
}

// ChatHistoryPayload is the data of a ReceiveChatHistory frame.
type ChatHistoryPayload struct {
	With     uint          `json:"with"`
	Messages []ChatMessage `json:"messages"`
}

// PresencePayload is the data of presence frames.
type PresencePayload struct {
	UserID uint `json:"userId"`
	Online bool `json:"online"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
