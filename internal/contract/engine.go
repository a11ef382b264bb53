// Package contract implements the deterministic contract layer of the
// Agritrack ledger: per-operation authorization, field and reference
// validation, status state machines, uniqueness and relationship indices,
// and typed notification events, all over an injected keyed store.
//
// Determinism contract: an operation's result depends only on its arguments,
// the Call envelope supplied by the host, and prior store state. The package
// never reads the wall clock, never generates randomness, and performs no I/O
// beyond the injected ledger.Store and the post-commit event sink.
package contract

import (
	"context"
	"time"

	"github.com/Boiya123/agritrack-ledger/internal/contract/model"
	"github.com/Boiya123/agritrack-ledger/internal/ledger"
	"go.uber.org/zap"
)

// Call is the per-transaction envelope supplied by the host runtime.
// Timestamp is the logical transaction timestamp, identical on every replica
// executing the same call; it is the only clock the core ever sees.
type Call struct {
	TxID      string
	Timestamp time.Time
	Role      model.Role
}

// EventSink receives notification events after a transaction commits.
// Emission is best-effort observability; sink failures never fail a call.
type EventSink interface {
	Emit(ctx context.Context, event model.Event)
}

// Engine executes contract operations against a keyed store.
// It holds no mutable state of its own; all state lives in the store.
type Engine struct {
	store  ledger.Store
	sink   EventSink // nil = events dropped
	logger *zap.Logger
}

// New creates an Engine. sink may be nil to disable event delivery.
func New(store ledger.Store, sink EventSink, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{store: store, sink: sink, logger: logger}
}

// tx is the staged overlay a single operation runs against. Reads see the
// operation's own staged writes; nothing touches the store until commit.
type tx struct {
	ctx    context.Context
	store  ledger.Store
	call   Call
	staged map[string][]byte
	order  []string
	events []model.Event
}

func (e *Engine) begin(ctx context.Context, call Call) *tx {
	return &tx{
		ctx:    ctx,
		store:  e.store,
		call:   call,
		staged: make(map[string][]byte),
	}
}

// read begins a transaction for a query operation. Queries stage nothing,
// so the zero Call is sufficient.
func (e *Engine) read(ctx context.Context) *tx {
	return e.begin(ctx, Call{})
}

func (t *tx) get(key string) ([]byte, error) {
	if v, ok := t.staged[key]; ok {
		return v, nil
	}
	return t.store.Get(t.ctx, key)
}

func (t *tx) put(key string, value []byte) {
	if _, ok := t.staged[key]; !ok {
		t.order = append(t.order, key)
	}
	t.staged[key] = value
}

func (t *tx) emit(typ model.EventType, payload map[string]string) {
	t.events = append(t.events, model.Event{Type: typ, TxID: t.call.TxID, Payload: payload})
}

func (t *tx) writes() []ledger.Write {
	out := make([]ledger.Write, 0, len(t.order))
	for _, key := range t.order {
		out = append(out, ledger.Write{Key: key, Value: t.staged[key]})
	}
	return out
}

// commit applies the staged write set atomically and then delivers the
// transaction's events. A failed Apply leaves no partial state and
// suppresses all events.
func (e *Engine) commit(t *tx) error {
	if err := e.store.Apply(t.ctx, t.writes()); err != nil {
		return err
	}
	for _, ev := range t.events {
		if e.sink != nil {
			e.sink.Emit(t.ctx, ev)
		}
		e.logger.Debug("event emitted",
			zap.String("type", string(ev.Type)),
			zap.String("tx_id", ev.TxID),
		)
	}
	return nil
}
