package main

import (
	"net/http"

	"github.com/spf13/cobra"
)

func init() {
	projectsCmd := &cobra.Command{Use: "projects", Short: "Project operations"}

	detectCmd := &cobra.Command{
		Use:   "detect",
		Short: "Detect recurring projects among captured items",
		RunE: func(cmd *cobra.Command, args []string) error {
			return do(newClient().R(), http.MethodPost, "/api/projects/detect")
		},
	}
	projectsCmd.AddCommand(detectCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return do(newClient().R(), http.MethodGet, "/api/projects")
		},
	}
	projectsCmd.AddCommand(listCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete PROJECT_ID",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return do(newClient().R(), http.MethodDelete, "/api/projects/"+args[0])
		},
	}
	projectsCmd.AddCommand(deleteCmd)

	rootCmd.AddCommand(projectsCmd)
}
