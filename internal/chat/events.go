package chat

import "chat-relay/internal/history"

// Inbound event names (client -> server).
const (
	EventJoin    = "join"
	EventLeave   = "leave"
	EventMessage = "message"
)

// Outbound event names (server -> client).
const (
	EventRoomHistory = "room_history"
	EventUserJoined  = "user_joined"
	EventJoinSuccess = "join_success"
	EventUserLeft    = "user_left"
	EventNewMessage  = "new_message"
)

// AnonymousUsername is substituted when a join carries no username.
const AnonymousUsername = "Anonymous"

// leftPlaceholder is broadcast on leave. The leave event only carries
// the room, so the notification cannot name who left.
const leftPlaceholder = "A user"

type JoinRequest struct {
	Room     string `json:"room"`
	Username string `json:"username"`
}

type LeaveRequest struct {
	Room string `json:"room"`
}

type MessageRequest struct {
	Room     string `json:"room"`
	Message  string `json:"message"`
	Username string `json:"username"`
}

type RoomHistory struct {
	Messages []history.Record `json:"messages"`
}

type UserJoined struct {
	Username string `json:"username"`
}

type JoinSuccess struct {
	Room string `json:"room"`
}

type UserLeft struct {
	Username string `json:"username"`
}

type NewMessage struct {
	Sender    string `json:"sender"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}
