package realtime

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/tidwall/gjson"
)

// Wire event names.
const (
	EventJoinGroup        = "join_group"
	EventJoinedGroup      = "joined_group"
	EventError            = "error"
	EventSendMessage      = "send_message"
	EventNewMessage       = "new_message"
	EventUpdateStatus     = "update_status"
	EventStatusUpdated    = "status_updated"
	EventUserStatusChange = "user_status_change"
)

const (
	// GlobalSentinel is the group id a client sends to join the global audience.
	GlobalSentinel = "global"
	// GlobalRoom is the registry room that holds the global audience.
	GlobalRoom = "admin_global"
)

var errMalformedEnvelope = errors.New("malformed event envelope")

// Envelope is the frame shape in both directions.
type Envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Inbound is a decoded client frame. Data stays unparsed until a handler reads it.
type Inbound struct {
	Event string
	Data  gjson.Result
}

// ParseInbound validates a client frame and extracts its event name.
func ParseInbound(raw []byte) (Inbound, error) {
	if !gjson.ValidBytes(raw) {
		return Inbound{}, errMalformedEnvelope
	}
	frame := gjson.ParseBytes(raw)
	event := frame.Get("event")
	if event.Type != gjson.String || event.String() == "" {
		return Inbound{}, errMalformedEnvelope
	}
	return Inbound{Event: event.String(), Data: frame.Get("data")}, nil
}

// joinGroupID accepts both a bare id and {"groupId": id}.
func joinGroupID(data gjson.Result) string {
	if data.Type == gjson.String {
		return data.String()
	}
	return data.Get("groupId").String()
}

func encodeEnvelope(event string, data interface{}) ([]byte, error) {
	return json.Marshal(Envelope{Event: event, Data: data})
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type JoinedGroupPayload struct {
	GroupID    string `json:"groupId"`
	Department string `json:"department,omitempty"`
	ClassLevel int    `json:"classLevel,omitempty"`
}

type PresencePayload struct {
	UserID   string     `json:"userId"`
	IsOnline bool       `json:"isOnline"`
	LastSeen *time.Time `json:"lastSeen,omitempty"`
}
