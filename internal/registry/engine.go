// Copyright (c) 2026 ToeiRei
// Flatkeeper - apartment occupancy registry
// This source code is licensed under the MIT license found in the LICENSE file.

package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/toeirei/flatkeeper/internal/logging"
)

// Notice is a message for someone other than the actor, for example the
// approver of a new request. Args is template data for MessageID.
type Notice struct {
	Recipient int64
	MessageID string
	Args      map[string]any
}

// Notifier delivers notices. Delivery happens after the operation has
// committed; a failure is logged and does not change the outcome.
type Notifier interface {
	Notify(ctx context.Context, n Notice) error
}

// Directory resolves an occupant id to a display name.
type Directory interface {
	DisplayName(id int64) string
}

// Option configures an Engine.
type Option func(*Engine)

// WithNotifier sets the notice sink. The default discards notices.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) {
		if n != nil {
			e.notifier = n
		}
	}
}

// WithDirectory sets the display-name resolver. The default renders "ID: n".
func WithDirectory(d Directory) Option {
	return func(e *Engine) {
		if d != nil {
			e.directory = d
		}
	}
}

// Engine executes registry commands. It is safe for concurrent use; all
// coordination happens in the store.
type Engine struct {
	cfg       Config
	store     Store
	notifier  Notifier
	directory Directory
}

// New validates cfg and returns an engine over store.
func New(cfg Config, store Store, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, errors.New("registry: store is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("registry: invalid config: %w", err)
	}
	e := &Engine{
		cfg:       cfg.clone(),
		store:     store,
		notifier:  discardNotifier{},
		directory: idDirectory{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg.clone()
}

// Init seeds the root operator row. It is idempotent.
func (e *Engine) Init(ctx context.Context) error {
	return e.store.RunInTx(ctx, func(ctx context.Context, r Repo) error {
		return r.EnsureOperator(ctx, e.cfg.RootOperator)
	})
}

// Execute dispatches cmd on behalf of actor.
func (e *Engine) Execute(ctx context.Context, actor int64, cmd Command) (Result, error) {
	switch c := cmd.(type) {
	case SubmitClaim:
		return wrap(e.Submit(ctx, actor, c.Unit))
	case Approve:
		return wrap(e.Approve(ctx, actor, c.Requester))
	case Reject:
		return wrap(e.Reject(ctx, actor, c.Requester))
	case ReleaseOwn:
		return wrap(e.ReleaseOwn(ctx, actor))
	case ForceAssign:
		return wrap(e.ForceAssign(ctx, actor, c.Unit, c.Occupant))
	case Unlink:
		return wrap(e.Unlink(ctx, actor, c.Occupant, c.Unit))
	case ReleaseUnit:
		return wrap(e.ReleaseUnit(ctx, actor, c.Unit))
	case ClearPending:
		return wrap(e.ClearPending(ctx, actor))
	case Reset:
		return wrap(e.Reset(ctx, actor, c.Token))
	case ReportOccupancy:
		return wrap(e.Report(ctx, actor))
	case ListOccupancy:
		return wrap(e.ListOccupancy(ctx, actor))
	case AddOperator:
		return wrap(e.AddOperator(ctx, actor, c.ID))
	case RemoveOperator:
		return wrap(e.RemoveOperator(ctx, actor, c.ID))
	case ListOperators:
		return wrap(e.ListOperators(ctx, actor))
	case WhoAmI:
		return wrap(e.WhoAmI(ctx, actor))
	default:
		return nil, validationError("execute", "error.unknown_command", map[string]any{"Command": fmt.Sprintf("%T", cmd)})
	}
}

func wrap[R Result](r R, err error) (Result, error) {
	if err != nil {
		return nil, err
	}
	return r, nil
}

// begin validates the actor id and authorizes cmd.
func (e *Engine) begin(ctx context.Context, actor int64, cmd Command) error {
	if actor <= 0 {
		return validationError(cmd.Name(), "error.invalid_id", map[string]any{"Value": actor})
	}
	_, err := e.authorize(ctx, cmd.Name(), actor, RequiredTier(cmd, e.cfg.ApprovalsRequireOperator))
	return err
}

// run executes fn in one transaction. Engine errors returned by fn pass
// through; anything else is logged and replaced by an internal error.
func (e *Engine) run(ctx context.Context, op string, actor int64, fn func(ctx context.Context, r Repo) error) error {
	err := e.store.RunInTx(ctx, fn)
	if err == nil {
		return nil
	}
	var re *Error
	if errors.As(err, &re) {
		logging.Debugf("%s by %d: %v", op, actor, re)
		return re
	}
	return e.internal(op, actor, err)
}

func (e *Engine) internal(op string, actor int64, err error) *Error {
	logging.Errorf("%s by %d failed: %v", op, actor, err)
	return internalError(op, err)
}

func (e *Engine) checkUnit(op string, unit int) error {
	if e.cfg.UnitValid(unit) {
		return nil
	}
	return validationError(op, "error.unit_out_of_range", map[string]any{"Unit": unit, "Ranges": e.cfg.RangesString()})
}

func checkID(op string, id int64) error {
	if id > 0 {
		return nil
	}
	return validationError(op, "error.invalid_id", map[string]any{"Value": id})
}

func (e *Engine) name(id int64) string {
	return e.directory.DisplayName(id)
}

// deliver sends notices collected during a committed operation.
func (e *Engine) deliver(ctx context.Context, notices []Notice) {
	for _, n := range notices {
		if err := e.notifier.Notify(ctx, n); err != nil {
			logging.Warnf("notify %d (%s) failed: %v", n.Recipient, n.MessageID, err)
		}
	}
}

// audit records a committed mutation.
func (e *Engine) audit(op string, actor int64, keyvals ...any) {
	logging.With(append([]any{"op", op, "actor", actor}, keyvals...)...).Info("registry change")
}

type discardNotifier struct{}

func (discardNotifier) Notify(context.Context, Notice) error { return nil }

type idDirectory struct{}

func (idDirectory) DisplayName(id int64) string { return fmt.Sprintf("ID: %d", id) }
