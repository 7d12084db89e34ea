//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"auction-chat/domain"
	"auction-chat/domain/event"
	"auction-chat/protocol"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// Conn is one live transport-level connection to the chat server.
// ReadEnvelope blocks until a frame arrives or the connection drops.
type Conn interface {
	ReadEnvelope() (protocol.Envelope, error)
	WriteEvent(name string, payload any) error
	Close() error
}

// Transport dials the chat server, carrying the bearer credential both
// in the handshake auth payload and as an Authorization header.
type Transport interface {
	Dial(ctx context.Context, token string) (Conn, error)
}

// HistoryFetcher is the REST companion endpoint for persisted messages.
type HistoryFetcher interface {
	Fetch(ctx context.Context, room domain.RoomID) (HistoryPage, error)
}

// HistoryPage is the normalized response of the history endpoint.
type HistoryPage struct {
	Messages []domain.Message
	Active   bool
	Notice   string
}
