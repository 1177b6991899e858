package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	itemsCmd := &cobra.Command{Use: "items", Short: "Item operations"}

	// capture
	captureCmd := &cobra.Command{
		Use:   "capture TEXT...",
		Short: "Capture a raw thought",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{"rawInput": strings.Join(args, " ")}
			return do(newClient().R().SetBody(body), http.MethodPost, "/api/items")
		},
	}
	itemsCmd.AddCommand(captureCmd)

	// list
	var statusFlag, categoryFlag string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List items, optionally filtered by status and category",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := newClient().R()
			if statusFlag != "" {
				req.SetQueryParam("status", statusFlag)
			}
			if categoryFlag != "" {
				req.SetQueryParam("category", categoryFlag)
			}
			return do(req, http.MethodGet, "/api/items")
		},
	}
	listCmd.Flags().StringVarP(&statusFlag, "status", "s", "", "Filter by status (inbox, captured, acted, archived)")
	listCmd.Flags().StringVarP(&categoryFlag, "category", "c", "", "Filter by category (idea, task, reminder, note)")
	itemsCmd.AddCommand(listCmd)

	// get
	getCmd := &cobra.Command{
		Use:   "get ITEM_ID",
		Short: "Get an item by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return do(newClient().R(), http.MethodGet, "/api/items/"+args[0])
		},
	}
	itemsCmd.AddCommand(getCmd)

	// delete
	deleteCmd := &cobra.Command{
		Use:   "delete ITEM_ID",
		Short: "Delete an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return do(newClient().R(), http.MethodDelete, "/api/items/"+args[0])
		},
	}
	itemsCmd.AddCommand(deleteCmd)

	// classify
	classifyCmd := &cobra.Command{
		Use:   "classify ITEM_ID",
		Short: "Re-run classification for an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return do(newClient().R(), http.MethodPost, "/api/items/"+args[0]+"/classify")
		},
	}
	itemsCmd.AddCommand(classifyCmd)

	// remind
	var atFlag, messageFlag string
	remindCmd := &cobra.Command{
		Use:   "remind ITEM_ID",
		Short: "Schedule a reminder for an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]interface{}{}
			if atFlag != "" {
				at, err := time.Parse(time.RFC3339, atFlag)
				if err != nil {
					return fmt.Errorf("invalid --at, want RFC3339: %w", err)
				}
				body["at"] = at
			}
			if messageFlag != "" {
				body["message"] = messageFlag
			}
			return do(newClient().R().SetBody(body), http.MethodPost, "/api/items/"+args[0]+"/reminder")
		},
	}
	remindCmd.Flags().StringVarP(&atFlag, "at", "t", "", "Reminder time (RFC3339; derived from the item text when omitted)")
	remindCmd.Flags().StringVarP(&messageFlag, "message", "m", "", "Reminder message (defaults to the item title)")
	itemsCmd.AddCommand(remindCmd)

	unremindCmd := &cobra.Command{
		Use:   "unremind ITEM_ID",
		Short: "Clear a scheduled reminder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return do(newClient().R(), http.MethodDelete, "/api/items/"+args[0]+"/reminder")
		},
	}
	itemsCmd.AddCommand(unremindCmd)

	// tags
	tagsCmd := &cobra.Command{
		Use:   "tags ITEM_ID",
		Short: "Suggest tags for an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return do(newClient().R(), http.MethodGet, "/api/items/"+args[0]+"/tags/suggest")
		},
	}
	itemsCmd.AddCommand(tagsCmd)

	// merge-preview
	mergeCmd := &cobra.Command{
		Use:   "merge-preview ITEM_ID OTHER_ID",
		Short: "Preview merging two items",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{"otherId": args[1]}
			return do(newClient().R().SetBody(body), http.MethodPost, "/api/items/"+args[0]+"/merge-preview")
		},
	}
	itemsCmd.AddCommand(mergeCmd)

	rootCmd.AddCommand(itemsCmd)
}
