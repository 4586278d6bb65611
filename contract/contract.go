//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"callsign-relay/domain"
	"callsign-relay/domain/event"
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

// EventSink receives outbound events, one connection or a permanent consumer.
type EventSink interface {
	Consume(ctx context.Context, e event.Event) error
}

// IRegistry maps live connections to their sink.
type IRegistry interface {
	Subscribe(id domain.ConnectionID, sink EventSink)
	Unsubscribe(id domain.ConnectionID)
	Sink(id domain.ConnectionID) (EventSink, bool)
	Sinks() []EventSink
	Count() int
}

// IOrchestrator is what transports see of the runtime.
type IOrchestrator interface {
	Connect(id domain.ConnectionID, sink EventSink)
	Disconnect(ctx context.Context, id domain.ConnectionID) error
	Dispatch(ctx context.Context, cmd domain.Command) error
	Await(ctx context.Context, cmd domain.Command, reply domain.Reply) error
	ConnectionCount() int
}
