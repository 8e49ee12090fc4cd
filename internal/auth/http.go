// Copyright (c) 2026 Nomik. All rights reserved.

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/krish2956-mk/getnomik-tech-team/internal/accounts"
	"github.com/krish2956-mk/getnomik-tech-team/internal/platform/apperr"
	requestutil "github.com/krish2956-mk/getnomik-tech-team/internal/platform/request"
	"github.com/krish2956-mk/getnomik-tech-team/internal/platform/respond"
	"github.com/krish2956-mk/getnomik-tech-team/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements authentication HTTP endpoints.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with authentication routes.
//
// # Endpoints
//   - POST /login     : Email/password login.
//   - POST /federated : Federated-assertion login.
//   - GET  /session   : Verifies the presented session credential.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/login", handler.login)
	router.Post("/federated", handler.loginFederated)
	router.Get("/session", handler.session)

	return router
}

// # Request Payloads

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

/*
Login authenticates an email/password pair and issues a session credential.

POST /api/v1/auth/login

Description: Failure is a single indistinguishable UNAUTHORIZED regardless of
whether the email exists, so the endpoint cannot enumerate accounts.

Request:
  - Body: loginRequest (Email, Password)

Response:
  - 200: SessionCredential: Token, expiry, and account summary
  - 401: ErrUnauthorized: Invalid email or password
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(accounts.FieldEmail, input.Email).
		Required(accounts.FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	credential, err := handler.authService.LoginWithPassword(request.Context(), input.Email, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, credential)
}

/*
LoginFederated authenticates a provider-verified identity assertion.

POST /api/v1/auth/federated

Description: The upstream provider handshake has already verified the
assertion; this resolves it to a linked account and issues a credential.

Request:
  - Body: accounts.FederatedAssertion (Provider, Subject, Email)

Response:
  - 200: SessionCredential: Token, expiry, and account summary
  - 404: NO_LINKED_ACCOUNT: Identity not linked to any account
*/
func (handler *Handler) loginFederated(writer http.ResponseWriter, request *http.Request) {
	var input accounts.FederatedAssertion

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	credential, err := handler.authService.LoginWithFederatedAssertion(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, credential)
}

/*
Session verifies the presented bearer credential and returns its principal.

GET /api/v1/auth/session

Description: Lets clients check a stored credential without performing a
privileged operation.

Response:
  - 200: Principal: Account ID and role
  - 401: TOKEN_EXPIRED / TOKEN_INVALID: Credential rejected
*/
func (handler *Handler) session(writer http.ResponseWriter, request *http.Request) {
	token := requestutil.BearerToken(request)
	if token == "" {
		respond.Error(writer, request, apperr.Unauthorized("Missing bearer credential"))
		return
	}

	principal, err := handler.authService.VerifySessionCredential(token)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, principal)
}
