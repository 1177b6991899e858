package main

import (
	"net/http"

	"github.com/spf13/cobra"
)

func init() {
	inboxCmd := &cobra.Command{Use: "inbox", Short: "Inbox operations"}

	processCmd := &cobra.Command{
		Use:   "process",
		Short: "Run one inbox processing pass now",
		RunE: func(cmd *cobra.Command, args []string) error {
			return do(newClient().R(), http.MethodPost, "/api/inbox/process")
		},
	}
	inboxCmd.AddCommand(processCmd)

	pendingCmd := &cobra.Command{
		Use:   "pending",
		Short: "Show pending item count and processor state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return do(newClient().R(), http.MethodGet, "/api/inbox/pending")
		},
	}
	inboxCmd.AddCommand(pendingCmd)

	groupsCmd := &cobra.Command{
		Use:   "groups",
		Short: "Propose groups of related inbox thoughts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return do(newClient().R(), http.MethodPost, "/api/inbox/groups")
		},
	}
	inboxCmd.AddCommand(groupsCmd)

	rootCmd.AddCommand(inboxCmd)
}
