// Copyright (c) 2026 Nomik. All rights reserved.

package accounts

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/krish2956-mk/getnomik-tech-team/internal/platform/middleware"
	requestutil "github.com/krish2956-mk/getnomik-tech-team/internal/platform/request"
	"github.com/krish2956-mk/getnomik-tech-team/internal/platform/respond"
)

// # Definitions & Constructors

// Handler implements account self-service HTTP endpoints.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] configured with account routes.
//
// # Endpoints
//   - GET /me           : Returns the authenticated account.
//   - GET /me/documents : Returns the account's document ledger.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/me", handler.me)
		r.Get("/me/documents", handler.myDocuments)
	})

	return router
}

/*
Me returns the authenticated principal's own account.

GET /api/v1/accounts/me

Response:
  - 200: Account: Profile, role, and document references
  - 401: ErrUnauthorized: Missing or invalid credential
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.accountService.GetSelf(request.Context(), principal.AccountID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, account)
}

/*
MyDocuments returns the authenticated principal's document ledger.

GET /api/v1/accounts/me/documents

Response:
  - 200: []documents.Reference: Ledger entries, oldest upload first
  - 401: ErrUnauthorized: Missing or invalid credential
*/
func (handler *Handler) myDocuments(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	references, err := handler.accountService.ListDocuments(request.Context(), principal.AccountID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, references)
}
