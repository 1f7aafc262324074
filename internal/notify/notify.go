// Copyright (c) 2026 ToeiRei
// Flatkeeper - apartment occupancy registry
// This source code is licensed under the MIT license found in the LICENSE file.

// Package notify provides the notice sinks and the display-name directory
// the registry engine is wired with.
package notify

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/toeirei/flatkeeper/internal/i18n"
	"github.com/toeirei/flatkeeper/internal/logging"
	"github.com/toeirei/flatkeeper/internal/registry"
)

// Render localizes a notice's message.
func Render(n registry.Notice) string {
	if len(n.Args) == 0 {
		return i18n.T(n.MessageID)
	}
	return i18n.T(n.MessageID, n.Args)
}

// WriterNotifier prints each notice as "@name: message" on w.
type WriterNotifier struct {
	mu  sync.Mutex
	w   io.Writer
	dir registry.Directory
}

// NewWriterNotifier returns a notifier printing to w. dir may be nil.
func NewWriterNotifier(w io.Writer, dir registry.Directory) *WriterNotifier {
	if dir == nil {
		dir = NewDirectory(nil)
	}
	return &WriterNotifier{w: w, dir: dir}
}

// Notify writes one rendered line for notice.
func (n *WriterNotifier) Notify(_ context.Context, notice registry.Notice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, err := fmt.Fprintf(n.w, "@%s: %s\n", n.dir.DisplayName(notice.Recipient), Render(notice))
	return err
}

// LogNotifier records notices in the structured log.
type LogNotifier struct{}

// Notify logs notice at info level with its recipient and message id.
func (LogNotifier) Notify(_ context.Context, notice registry.Notice) error {
	logging.With("recipient", notice.Recipient, "message", notice.MessageID).Info(Render(notice))
	return nil
}

// Multi fans a notice out to several notifiers and returns the first error.
type Multi []registry.Notifier

// Notify delivers notice to every notifier, even after a failure.
func (m Multi) Notify(ctx context.Context, notice registry.Notice) error {
	var first error
	for _, n := range m {
		if err := n.Notify(ctx, notice); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Directory resolves occupant ids from a fixed id-to-name map. Unknown ids
// render as "ID: n".
type Directory struct {
	names map[int64]string
}

// NewDirectory copies names into a new Directory.
func NewDirectory(names map[int64]string) *Directory {
	d := &Directory{names: make(map[int64]string, len(names))}
	for id, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			d.names[id] = name
		}
	}
	return d
}

// DisplayName returns the configured name for id, or "ID: id".
func (d *Directory) DisplayName(id int64) string {
	if name, ok := d.names[id]; ok {
		return name
	}
	return fmt.Sprintf("ID: %d", id)
}
