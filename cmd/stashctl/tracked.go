package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/angelmondragon/stashkeeper-backend/internal/tracked"
	"github.com/angelmondragon/stashkeeper-backend/pkg/auth"
)

func newTrackedCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tracked",
		Short: "Inspect and move tracked items",
	}
	var owner string
	cmd.PersistentFlags().StringVar(&owner, "user", "", "owner id the item belongs to")
	_ = cmd.MarkPersistentFlagRequired("user")

	var (
		expected string
		location string
		notes    string
	)
	transition := &cobra.Command{
		Use:   "transition <item-id> <status>",
		Short: "Move a tracked item to a new status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ownerID, itemID, err := parseOwnerAndItem(owner, args[0])
			if err != nil {
				return err
			}
			svc, err := a.trackedService(cmd.Context(), auth.StaticUser(ownerID))
			if err != nil {
				return err
			}
			req := tracked.TransitionRequest{Status: args[1]}
			if expected != "" {
				req.ExpectedStatus = &expected
			}
			if location != "" {
				req.Usage.Location = &location
			}
			if notes != "" {
				req.Usage.Notes = &notes
			}
			result, err := svc.Transition(cmd.Context(), itemID, req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	transition.Flags().StringVar(&expected, "expected", "", "status the item must currently have")
	transition.Flags().StringVar(&location, "location", "", "where the item is used (IN_USE only)")
	transition.Flags().StringVar(&notes, "notes", "", "free text for the usage period (IN_USE only)")

	history := &cobra.Command{
		Use:   "history <item-id>",
		Short: "Print the usage periods of a tracked item, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ownerID, itemID, err := parseOwnerAndItem(owner, args[0])
			if err != nil {
				return err
			}
			svc, err := a.trackedService(cmd.Context(), auth.StaticUser(ownerID))
			if err != nil {
				return err
			}
			periods, err := svc.History(cmd.Context(), itemID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), periods)
		},
	}

	cmd.AddCommand(transition, history)
	return cmd
}

func parseOwnerAndItem(owner, item string) (uuid.UUID, uuid.UUID, error) {
	ownerID, err := uuid.Parse(owner)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid --user: %w", err)
	}
	itemID, err := uuid.Parse(item)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid item id: %w", err)
	}
	return ownerID, itemID, nil
}
