// Copyright (c) 2026 ToeiRei
// Flatkeeper - apartment occupancy registry
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/toeirei/flatkeeper/internal/i18n"
	"github.com/toeirei/flatkeeper/internal/registry"
	"golang.org/x/term"
)

// errReported marks a failure whose message has already been printed.
var errReported = errors.New("error already reported")

// execute runs c as the acting identity and asserts the result type.
func execute[R registry.Result](a *app, cmd *cobra.Command, c registry.Command) (R, error) {
	var zero R
	res, err := a.engine.Execute(cmdContext(cmd), a.actor, c)
	if err != nil {
		return zero, err
	}
	r, ok := res.(R)
	if !ok {
		return zero, fmt.Errorf("unexpected result %T for %s", res, c.Name())
	}
	return r, nil
}

// handle prints a registry error in its message category. State errors are
// informational and end the command successfully.
func handle(cmd *cobra.Command, err error) error {
	var re *registry.Error
	if !errors.As(err, &re) {
		return err
	}
	_, _ = fmt.Fprintln(cmd.ErrOrStderr(), renderError(re))
	if re.Kind == registry.KindState {
		return nil
	}
	return errReported
}

// renderError formats e as "<category>: <message>".
func renderError(e *registry.Error) string {
	return i18n.T("error.kind."+e.Kind.String()) + ": " + localize(e.MessageID, e.Args)
}

// localize translates id with args, translating any argument that carries
// its own message id (such as a registry.Tier).
func localize(id string, args map[string]any) string {
	if len(args) == 0 {
		return i18n.T(id)
	}
	data := make(map[string]any, len(args))
	for k, v := range args {
		if m, ok := v.(interface{ MessageID() string }); ok {
			data[k] = i18n.T(m.MessageID())
			continue
		}
		data[k] = v
	}
	return i18n.T(id, data)
}

func say(cmd *cobra.Command, id string, args map[string]any) {
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), localize(id, args))
}

func parseUnit(op, s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, &registry.Error{Kind: registry.KindValidation, Op: op, MessageID: "error.invalid_unit", Args: map[string]any{"Value": s}, Err: err}
	}
	return n, nil
}

func parseID(op, s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, &registry.Error{Kind: registry.KindValidation, Op: op, MessageID: "error.invalid_id", Args: map[string]any{"Value": s}, Err: err}
	}
	return n, nil
}

func (a *app) name(id int64) string {
	return a.dir.DisplayName(id)
}

func (a *app) names(ids []int64) string {
	if len(ids) == 0 {
		return i18n.T("cli.none")
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = a.name(id)
	}
	return strings.Join(parts, ", ")
}

func joinUnits(units []int) string {
	if len(units) == 0 {
		return i18n.T("cli.none")
	}
	parts := make([]string, len(units))
	for i, u := range units {
		parts[i] = strconv.Itoa(u)
	}
	return strings.Join(parts, ", ")
}

// readSecret prompts for a value without echo when stdin is a terminal and
// reads one line otherwise.
func readSecret(cmd *cobra.Command, prompt string) (string, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		_, _ = fmt.Fprint(cmd.ErrOrStderr(), prompt)
		b, err := term.ReadPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("reading token: %w", err)
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading token: %w", err)
	}
	return strings.TrimSpace(line), nil
}
