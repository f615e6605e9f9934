//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-collect/domain"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// It is only used to label log lines.
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

// ChatroomRepository persists chat events and released chatrooms.
type ChatroomRepository interface {
	StoreEvent(chatroomID string, evt domain.Event) error
	GetEvents(chatroomID string) ([]domain.Event, error)
	StoreReleased(summary domain.ChatroomSummary) error
	GetReleased(limit int) ([]domain.ChatroomSummary, error)
}

// Archiver keeps a released dialog for later analysis.
type Archiver interface {
	Archive(ctx context.Context, dialog domain.Dialog) error
}

// Censor masks forbidden words in a message body and returns the words found.
type Censor interface {
	Censor(original string) (string, []string)
}
