// Copyright (c) 2026 ToeiRei
// Flatkeeper - apartment occupancy registry
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/toeirei/flatkeeper/internal/i18n"
	"github.com/toeirei/flatkeeper/internal/model"
	"github.com/toeirei/flatkeeper/internal/registry"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

func printTable(cmd *cobra.Command, title string, t *table.Table) {
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, titleStyle.Render(title))
	_, _ = fmt.Fprintln(out, t.String())
}

func (a *app) reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Show occupancy per building (operator)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := execute[registry.OccupancyReport](a, cmd, registry.ReportOccupancy{})
			if err != nil {
				return handle(cmd, err)
			}
			t := newTable(
				i18n.T("report.building"),
				i18n.T("report.range"),
				i18n.T("report.size"),
				i18n.T("report.occupied"),
				i18n.T("report.vacant"),
			)
			for _, b := range res.Buildings {
				t.Row(b.Building.Name, fmt.Sprintf("%d-%d", b.Building.First, b.Building.Last),
					strconv.Itoa(b.Size), strconv.Itoa(b.Occupied), strconv.Itoa(b.Vacant))
			}
			t.Row(i18n.T("report.total"), "", strconv.Itoa(res.Total.Size),
				strconv.Itoa(res.Total.Occupied), strconv.Itoa(res.Total.Vacant))
			printTable(cmd, i18n.T("report.title"), t)
			if res.Anomalies > 0 {
				say(cmd, "report.anomalies", map[string]any{"Count": res.Anomalies})
			}
			return nil
		},
	}
}

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every registration grouped by building (operator)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := execute[registry.OccupancyList](a, cmd, registry.ListOccupancy{})
			if err != nil {
				return handle(cmd, err)
			}
			empty := len(res.Other) == 0
			for _, g := range res.Groups {
				if len(g.Links) == 0 {
					continue
				}
				empty = false
				printTable(cmd, g.Building.String(), a.linkTable(g.Links))
			}
			if len(res.Other) > 0 {
				printTable(cmd, i18n.T("list.other"), a.linkTable(res.Other))
			}
			if empty {
				say(cmd, "list.empty", nil)
			}
			return nil
		},
	}
}

func (a *app) linkTable(links []model.Link) *table.Table {
	t := newTable(i18n.T("list.unit"), i18n.T("list.occupant"), i18n.T("list.since"))
	for _, l := range links {
		t.Row(strconv.Itoa(l.Unit), a.name(l.OccupantID), l.CreatedAt.Format("2006-01-02"))
	}
	return t
}

func (a *app) operatorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "operator",
		Short: "Manage operators",
	}

	add := &cobra.Command{
		Use:   "add <id>",
		Short: "Grant operator rights (root)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("add-operator", args[0])
			if err != nil {
				return handle(cmd, err)
			}
			res, err := execute[registry.OperatorResult](a, cmd, registry.AddOperator{ID: id})
			if err != nil {
				return handle(cmd, err)
			}
			msg := "cli.operator.added"
			if !res.Changed {
				msg = "cli.operator.already"
			}
			say(cmd, msg, map[string]any{"ID": a.name(res.ID)})
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "remove <id>",
		Short: "Revoke operator rights (root)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("remove-operator", args[0])
			if err != nil {
				return handle(cmd, err)
			}
			res, err := execute[registry.OperatorResult](a, cmd, registry.RemoveOperator{ID: id})
			if err != nil {
				return handle(cmd, err)
			}
			msg := "cli.operator.removed"
			if !res.Changed {
				msg = "cli.operator.absent"
			}
			say(cmd, msg, map[string]any{"ID": a.name(res.ID)})
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List operators (operator)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := execute[registry.OperatorList](a, cmd, registry.ListOperators{})
			if err != nil {
				return handle(cmd, err)
			}
			t := newTable(
				i18n.T("operators.id"),
				i18n.T("operators.name"),
				i18n.T("operators.added_by"),
				i18n.T("operators.added_at"),
			)
			for _, op := range res.Operators {
				addedBy := i18n.T("operators.root")
				if op.AddedBy != nil {
					addedBy = a.name(*op.AddedBy)
				}
				t.Row(strconv.FormatInt(op.ID, 10), a.name(op.ID), addedBy, op.AddedAt.Format("2006-01-02 15:04"))
			}
			printTable(cmd, i18n.T("operators.title"), t)
			return nil
		},
	}

	cmd.AddCommand(add, remove, list)
	return cmd
}
