// Copyright (c) 2026 ToeiRei
// Flatkeeper - apartment occupancy registry
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"github.com/spf13/cobra"
	"github.com/toeirei/flatkeeper/internal/i18n"
	"github.com/toeirei/flatkeeper/internal/registry"
)

func (a *app) claimCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "claim <unit>",
		Short: "Register yourself in a unit",
		Long: `Registers the acting identity in the given unit. If the unit is
vacant the registration is immediate; otherwise a request is sent to the
unit's first occupant, who can approve or reject it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			unit, err := parseUnit("submit-claim", args[0])
			if err != nil {
				return handle(cmd, err)
			}
			res, err := execute[registry.ClaimResult](a, cmd, registry.SubmitClaim{Unit: unit})
			if err != nil {
				return handle(cmd, err)
			}
			if res.Linked {
				say(cmd, "cli.claim.linked", map[string]any{"Unit": res.Unit})
				return nil
			}
			say(cmd, "cli.claim.pending", map[string]any{
				"Unit":      res.Unit,
				"RequestID": res.Request.ID,
				"Approver":  a.name(res.Request.ApproverID),
			})
			return nil
		},
	}
}

func (a *app) approveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approve <requester-id>",
		Short: "Approve the latest request addressed to you",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			requester, err := parseID("approve", args[0])
			if err != nil {
				return handle(cmd, err)
			}
			res, err := execute[registry.ApproveResult](a, cmd, registry.Approve{Requester: requester})
			if err != nil {
				return handle(cmd, err)
			}
			msg := "cli.approve.done"
			if res.AlreadyResolved {
				msg = "cli.approve.already"
			}
			say(cmd, msg, map[string]any{"Requester": a.name(requester), "Unit": res.Request.Unit})
			return nil
		},
	}
}

func (a *app) rejectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reject <requester-id>",
		Short: "Reject the latest request addressed to you",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			requester, err := parseID("reject", args[0])
			if err != nil {
				return handle(cmd, err)
			}
			res, err := execute[registry.RejectResult](a, cmd, registry.Reject{Requester: requester})
			if err != nil {
				return handle(cmd, err)
			}
			say(cmd, "cli.reject.done", map[string]any{"Requester": a.name(requester), "Unit": res.Request.Unit})
			return nil
		},
	}
}

func (a *app) releaseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "release",
		Short: "Remove your own registration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := execute[registry.ReleaseResult](a, cmd, registry.ReleaseOwn{})
			if err != nil {
				return handle(cmd, err)
			}
			say(cmd, "cli.release.done", map[string]any{"Units": joinUnits(res.Units)})
			return nil
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show your access tier and units",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := execute[registry.WhoAmIResult](a, cmd, registry.WhoAmI{})
			if err != nil {
				return handle(cmd, err)
			}
			say(cmd, "cli.whoami", map[string]any{"Name": a.name(res.ID), "Tier": res.Tier})
			if len(res.Units) == 0 {
				say(cmd, "cli.whoami.no_units", nil)
			} else {
				say(cmd, "cli.whoami.units", map[string]any{"Units": joinUnits(res.Units)})
			}
			return nil
		},
	}
}

func (a *app) assignCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assign <unit> <occupant-id>",
		Short: "Make a person the sole occupant of a unit (operator)",
		Long: `Removes every current occupant of the unit and every other unit of
the person, then registers the person in the unit. Pending requests of the
person for that unit are marked approved.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			unit, err := parseUnit("force-assign", args[0])
			if err != nil {
				return handle(cmd, err)
			}
			occupant, err := parseID("force-assign", args[1])
			if err != nil {
				return handle(cmd, err)
			}
			res, err := execute[registry.ForceAssignResult](a, cmd, registry.ForceAssign{Unit: unit, Occupant: occupant})
			if err != nil {
				return handle(cmd, err)
			}
			say(cmd, "cli.assign.done", map[string]any{"Unit": res.Unit, "Occupant": a.name(res.Occupant)})
			if len(res.PriorOccupants) > 0 {
				say(cmd, "cli.assign.prior_occupants", map[string]any{"Occupants": a.names(res.PriorOccupants)})
			}
			if len(res.PriorUnits) > 0 {
				say(cmd, "cli.assign.prior_units", map[string]any{"Occupant": a.name(res.Occupant), "Units": joinUnits(res.PriorUnits)})
			}
			if res.AutoApproved > 0 {
				say(cmd, "cli.assign.auto_approved", map[string]any{"Count": res.AutoApproved})
			}
			return nil
		},
	}
}

func (a *app) unlinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unlink <occupant-id> [unit]",
		Short: "Remove a person from one or all units (operator)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			occupant, err := parseID("unlink", args[0])
			if err != nil {
				return handle(cmd, err)
			}
			var unit *int
			if len(args) == 2 {
				u, err := parseUnit("unlink", args[1])
				if err != nil {
					return handle(cmd, err)
				}
				unit = &u
			}
			res, err := execute[registry.UnlinkResult](a, cmd, registry.Unlink{Occupant: occupant, Unit: unit})
			if err != nil {
				return handle(cmd, err)
			}
			say(cmd, "cli.unlink.done", map[string]any{"Occupant": a.name(res.Occupant), "Units": joinUnits(res.Units)})
			return nil
		},
	}
}

func (a *app) releaseUnitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "release-unit <unit>",
		Short: "Remove every occupant of a unit (operator)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			unit, err := parseUnit("release-unit", args[0])
			if err != nil {
				return handle(cmd, err)
			}
			res, err := execute[registry.ReleaseUnitResult](a, cmd, registry.ReleaseUnit{Unit: unit})
			if err != nil {
				return handle(cmd, err)
			}
			if res.AlreadyVacant {
				say(cmd, "cli.release_unit.vacant", map[string]any{"Unit": res.Unit})
				return nil
			}
			say(cmd, "cli.release_unit.done", map[string]any{"Unit": res.Unit, "Occupants": a.names(res.Removed)})
			return nil
		},
	}
}

func (a *app) clearPendingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-pending",
		Short: "Delete every pending request (operator)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := execute[registry.ClearPendingResult](a, cmd, registry.ClearPending{})
			if err != nil {
				return handle(cmd, err)
			}
			say(cmd, "cli.clear_pending.done", map[string]any{"Count": res.Cleared})
			return nil
		},
	}
}

func (a *app) resetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset [token]",
		Short: "Delete all registrations and requests (root)",
		Long: `Deletes every unit registration and every request. Operators are kept.
The configured confirmation token must be given; it is prompted for without
echo when omitted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var token string
			if len(args) == 1 {
				token = args[0]
			} else {
				var err error
				if token, err = readSecret(cmd, i18n.T("cli.reset.prompt")); err != nil {
					return err
				}
			}
			res, err := execute[registry.ResetResult](a, cmd, registry.Reset{Token: token})
			if err != nil {
				return handle(cmd, err)
			}
			say(cmd, "cli.reset.done", map[string]any{"Links": res.Links, "Requests": res.Requests})
			return nil
		},
	}
}
