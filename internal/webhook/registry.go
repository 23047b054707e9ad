// Package webhook routes GitHub deliveries to the reconciliation handlers.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"polar.sh/ghsync/internal/model"
	"polar.sh/ghsync/internal/service"
)

const (
	EventInstallation             = "installation"
	EventInstallationRepositories = "installation_repositories"
	EventOrganization             = "organization"
	EventRepository               = "repository"
	EventIssues                   = "issues"
)

var (
	ErrUnsupportedEvent  = errors.New("unsupported webhook event")
	ErrUnexpectedPayload = errors.New("unexpected webhook payload")
)

type Route struct {
	Event  string
	Action string
}

func (r Route) String() string {
	return r.Event + "." + r.Action
}

// HandlerFunc handles one parsed delivery. event is the value returned by
// github.ParseWebHook for the delivery's event type.
type HandlerFunc func(ctx context.Context, delivery *model.WebhookDelivery, event any) error

type Registry struct {
	handlers map[Route]HandlerFunc
}

func NewEmptyRegistry() *Registry {
	return &Registry{handlers: make(map[Route]HandlerFunc)}
}

// NewRegistry registers every supported route against h.
func NewRegistry(h *Handlers) *Registry {
	r := NewEmptyRegistry()
	for route, bind := range routeTable {
		r.Register(route, bind(h))
	}
	return r
}

func (r *Registry) Register(route Route, fn HandlerFunc) {
	r.handlers[route] = fn
}

func (r *Registry) Get(route Route) (HandlerFunc, bool) {
	fn, ok := r.handlers[route]
	return fn, ok
}

// Routes lists the registered routes sorted by event then action.
func (r *Registry) Routes() []Route {
	routes := make([]Route, 0, len(r.handlers))
	for route := range r.handlers {
		routes = append(routes, route)
	}
	slices.SortFunc(routes, func(a, b Route) int {
		if c := strings.Compare(a.Event, b.Event); c != 0 {
			return c
		}
		return strings.Compare(a.Action, b.Action)
	})
	return routes
}

// Supported reports whether (event, action) has a handler. The ingest server
// uses it to drop deliveries nobody would process.
func Supported(event, action string) bool {
	_, ok := routeTable[Route{Event: event, Action: action}]
	return ok
}

var routeTable = map[Route]func(*Handlers) HandlerFunc{
	{EventInstallation, "created"}:                  bind((*Handlers).InstallationCreated),
	{EventInstallation, "deleted"}:                  bind((*Handlers).InstallationDeleted),
	{EventInstallation, "suspend"}:                  bind((*Handlers).InstallationSuspend),
	{EventInstallation, "unsuspend"}:                bind((*Handlers).InstallationUnsuspend),
	{EventInstallation, "new_permissions_accepted"}: bind((*Handlers).InstallationNewPermissionsAccepted),

	{EventInstallationRepositories, "added"}:   bind((*Handlers).RepositoriesAdded),
	{EventInstallationRepositories, "removed"}: bind((*Handlers).RepositoriesRemoved),

	{EventOrganization, "renamed"}: bind((*Handlers).OrganizationRenamed),

	{EventRepository, "renamed"}:     bind((*Handlers).RepositoryRenamed),
	{EventRepository, "transferred"}: bind((*Handlers).RepositoryTransferred),
	{EventRepository, "deleted"}:     bind((*Handlers).RepositoryChanged),
	{EventRepository, "archived"}:    bind((*Handlers).RepositoryChanged),
	{EventRepository, "unarchived"}:  bind((*Handlers).RepositoryChanged),
	{EventRepository, "publicized"}:  bind((*Handlers).RepositoryChanged),
	{EventRepository, "privatized"}:  bind((*Handlers).RepositoryChanged),
	{EventRepository, "edited"}:      bind((*Handlers).RepositoryChanged),

	{EventIssues, "opened"}:      bind((*Handlers).IssueOpened),
	{EventIssues, "edited"}:      bind((*Handlers).IssueEdited),
	{EventIssues, "labeled"}:     bind((*Handlers).IssueLabeled),
	{EventIssues, "closed"}:      bind((*Handlers).IssueUpsert),
	{EventIssues, "reopened"}:    bind((*Handlers).IssueUpsert),
	{EventIssues, "unlabeled"}:   bind((*Handlers).IssueUpsert),
	{EventIssues, "assigned"}:    bind((*Handlers).IssueUpsert),
	{EventIssues, "unassigned"}:  bind((*Handlers).IssueUpsert),
	{EventIssues, "deleted"}:     bind((*Handlers).IssueDeleted),
	{EventIssues, "transferred"}: bind((*Handlers).IssueTransferred),
}

func bind[T any](fn func(*Handlers, context.Context, *model.WebhookDelivery, *T) error) func(*Handlers) HandlerFunc {
	return func(h *Handlers) HandlerFunc {
		return typed(func(ctx context.Context, d *model.WebhookDelivery, event *T) error {
			return fn(h, ctx, d, event)
		})
	}
}

// typed asserts the parsed event is a *T before calling fn.
func typed[T any](fn func(ctx context.Context, d *model.WebhookDelivery, event *T) error) HandlerFunc {
	return func(ctx context.Context, d *model.WebhookDelivery, event any) error {
		e, ok := event.(*T)
		if !ok || e == nil {
			return unexpectedPayload(d, "got %T", event)
		}
		return fn(ctx, d, e)
	}
}

func unexpectedPayload(d *model.WebhookDelivery, format string, args ...any) error {
	route := Route{Event: d.Event, Action: d.Action}
	return service.NewPermanentError("dispatch "+route.String(),
		fmt.Errorf("%w: %s", ErrUnexpectedPayload, fmt.Sprintf(format, args...)))
}

// Envelope is the part of every delivery payload the ingest server needs
// before the event is parsed.
type Envelope struct {
	Action         string
	InstallationID *int64
}

func Peek(payload []byte) (Envelope, error) {
	var raw struct {
		Action       string `json:"action"`
		Installation *struct {
			ID int64 `json:"id"`
		} `json:"installation"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrUnexpectedPayload, err)
	}

	env := Envelope{Action: raw.Action}
	if raw.Installation != nil && raw.Installation.ID != 0 {
		id := raw.Installation.ID
		env.InstallationID = &id
	}
	return env, nil
}
