package api

import (
	"context"

	"github.com/gorilla/mux"

	"github.com/mindstash/mindstash/internal/api/recovery"
)

// Deps bundles everything the router needs.
type Deps struct {
	Capture     CaptureService
	Inbox       InboxService
	Grouping    GroupingService
	Projects    ProjectService
	ProjectRepo ProjectStore
	HealthPing  func(ctx context.Context) error
}

// NewRouter creates the HTTP router with all capture-service routes.
func NewRouter(d Deps) *mux.Router {
	router := mux.NewRouter()
	router.Use(recovery.Middleware)

	itemHandler := NewItemHandler(d.Capture)
	inboxHandler := NewInboxHandler(d.Inbox, d.Grouping, d.Capture)
	projectHandler := NewProjectHandler(d.Projects, d.ProjectRepo, d.Capture)
	healthHandler := NewHealthHandler(d.HealthPing)

	// Health
	router.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")

	// Items
	router.HandleFunc("/api/items", itemHandler.CreateItem).Methods("POST")
	router.HandleFunc("/api/items", itemHandler.ListItems).Methods("GET")
	router.HandleFunc("/api/items/{itemId}", itemHandler.GetItem).Methods("GET")
	router.HandleFunc("/api/items/{itemId}", itemHandler.UpdateItem).Methods("PATCH")
	router.HandleFunc("/api/items/{itemId}", itemHandler.DeleteItem).Methods("DELETE")
	router.HandleFunc("/api/items/{itemId}/classify", itemHandler.ClassifyItem).Methods("POST")
	router.HandleFunc("/api/items/{itemId}/reminder", itemHandler.SetReminder).Methods("POST")
	router.HandleFunc("/api/items/{itemId}/reminder", itemHandler.ClearReminder).Methods("DELETE")
	router.HandleFunc("/api/items/{itemId}/merge-preview", projectHandler.MergePreview).Methods("POST")
	router.HandleFunc("/api/items/{itemId}/tags/suggest", projectHandler.SuggestTags).Methods("GET")

	// Inbox
	router.HandleFunc("/api/inbox/process", inboxHandler.ProcessInbox).Methods("POST")
	router.HandleFunc("/api/inbox/pending", inboxHandler.PendingStatus).Methods("GET")
	router.HandleFunc("/api/inbox/groups", inboxHandler.GroupThoughts).Methods("POST")
	router.HandleFunc("/api/inbox/groups/accept", inboxHandler.AcceptGroup).Methods("POST")
	router.HandleFunc("/api/inbox/groups/reject", inboxHandler.RejectGroup).Methods("POST")

	// Projects
	router.HandleFunc("/api/projects/detect", projectHandler.DetectProjects).Methods("POST")
	router.HandleFunc("/api/projects", projectHandler.ApproveProject).Methods("POST")
	router.HandleFunc("/api/projects", projectHandler.ListProjects).Methods("GET")
	router.HandleFunc("/api/projects/{projectId}", projectHandler.DeleteProject).Methods("DELETE")

	return router
}
