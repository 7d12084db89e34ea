package services

import (
	"context"

	"auction-chat/domain"
	"auction-chat/projection"
	"auction-chat/repositories"
	"auction-chat/runtime"
	"auction-chat/search"
)

type IChatService interface {
	Connect(ctx context.Context) error
	Disconnect()
	JoinRoom(room domain.RoomID) error
	LeaveRoom() error
	PostMessage(body string) error
	Keystroke()
	Transcript(room domain.RoomID, cursor *string) ([]domain.Message, *string, error)
	Find(ctx context.Context, query *search.Query) ([]domain.Message, error)
	Snapshot() RoomSnapshot
}

// RoomSnapshot is a point-in-time view of the current room for
// rendering: no live references, safe to hold across frames.
type RoomSnapshot struct {
	State        domain.ConnState
	LastError    string
	Room         domain.RoomID
	Status       domain.RoomStatus
	Notice       string
	Messages     []domain.Message
	Participants []domain.Participant
	Typing       []string
}

// ChatService is the seam between the terminal front-end and the
// connection manager. Commands go down, snapshots come up.
type ChatService struct {
	manager    *runtime.Manager
	roomState  *projection.RoomState
	transcript repositories.ITranscriptRepository
	index      repositories.ISearchIndex
}

func NewChatService(
	manager *runtime.Manager,
	roomState *projection.RoomState,
	transcript repositories.ITranscriptRepository,
	index repositories.ISearchIndex,
) *ChatService {
	return &ChatService{
		manager:    manager,
		roomState:  roomState,
		transcript: transcript,
		index:      index,
	}
}

func (s *ChatService) Connect(ctx context.Context) error {
	return s.manager.Connect(ctx)
}

func (s *ChatService) Disconnect() {
	s.manager.Disconnect()
}

func (s *ChatService) JoinRoom(room domain.RoomID) error {
	return s.manager.JoinRoom(room)
}

func (s *ChatService) LeaveRoom() error {
	return s.manager.LeaveRoom()
}

func (s *ChatService) PostMessage(body string) error {
	return s.manager.SendMessage(body)
}

func (s *ChatService) Keystroke() {
	s.manager.Keystroke()
}

// Transcript pages through the local archive of a room, newest first.
func (s *ChatService) Transcript(room domain.RoomID, cursor *string) ([]domain.Message, *string, error) {
	return s.transcript.GetMessages(room, cursor)
}

// Find runs a parsed search command against the transcript index.
func (s *ChatService) Find(ctx context.Context, query *search.Query) ([]domain.Message, error) {
	return s.index.Search(ctx, query.Terms, query.Room, query.Limit)
}

func (s *ChatService) Snapshot() RoomSnapshot {
	return RoomSnapshot{
		State:        s.manager.State(),
		LastError:    s.manager.LastError(),
		Room:         s.roomState.Room(),
		Status:       s.roomState.Status(),
		Notice:       s.roomState.Notice(),
		Messages:     s.roomState.Messages(),
		Participants: s.roomState.Participants(),
		Typing:       s.roomState.TypingUsernames(),
	}
}
