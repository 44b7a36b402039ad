package wapi

import (
	"context"
	"time"
)

// Action is the kind of change an observer is told about.
type Action string

// Change actions.
const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// ChangeEvent describes a successful write to the server.
type ChangeEvent struct {
	Action Action    `json:"action"`
	Type   string    `json:"type"`
	Ref    string    `json:"ref"`
	Time   time.Time `json:"time"`
}

// Observer is told about objects a mapper created, updated or deleted.
// Errors are logged and never fail the write that triggered them.
type Observer interface {
	ObjectChanged(ctx context.Context, event ChangeEvent) error
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, event ChangeEvent) error

// ObjectChanged implements Observer.
func (f ObserverFunc) ObjectChanged(ctx context.Context, event ChangeEvent) error {
	return f(ctx, event)
}

func (o *Object) notify(ctx context.Context, action Action, ref string) {
	if o.mapper.observer == nil {
		return
	}

	event := ChangeEvent{
		Action: action,
		Type:   o.kind.Type,
		Ref:    ref,
		Time:   time.Now().UTC(),
	}

	err := o.mapper.observer.ObjectChanged(ctx, event)
	if err != nil {
		o.mapper.logger.Warn("Change observer failed", map[string]interface{}{
			"action": string(action),
			"ref":    ref,
			"error":  err.Error(),
		})
	}
}
