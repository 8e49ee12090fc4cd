// Copyright (c) 2026 Nomik. All rights reserved.

package registration

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/krish2956-mk/getnomik-tech-team/internal/accounts"
	requestutil "github.com/krish2956-mk/getnomik-tech-team/internal/platform/request"
	"github.com/krish2956-mk/getnomik-tech-team/internal/platform/respond"
	"github.com/krish2956-mk/getnomik-tech-team/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements registration-lifecycle HTTP endpoints.
//
// # Scope
//
// Every endpoint here operates on an uncommitted draft. The session token
// always travels in the request body, never in the URL, so it cannot leak
// into access logs or proxy traces.
type Handler struct {
	registrationService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{registrationService: service}
}

// Routes returns a [chi.Router] configured with registration routes.
//
// # Endpoints
//   - POST /open      : Opens a new registration session.
//   - POST /steps     : Submits a step payload against a session.
//   - POST /documents : Attaches a document reference to a session.
//   - POST /commit    : Commits the session into a durable account.
//   - POST /abandon   : Explicitly cancels a session.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/open", handler.open)
	router.Post("/steps", handler.submitStep)
	router.Post("/documents", handler.attachDocument)
	router.Post("/commit", handler.commit)
	router.Post("/abandon", handler.abandon)

	return router
}

// # Request Payloads

type openRequest struct {
	Role       string                       `json:"role"`
	AuthMethod string                       `json:"auth_method"`
	Email      string                       `json:"email,omitempty"`
	Password   string                       `json:"password,omitempty"`
	Assertion  *accounts.FederatedAssertion `json:"assertion,omitempty"`
}

type submitStepRequest struct {
	Token  string            `json:"token"`
	Step   string            `json:"step"`
	Fields map[string]string `json:"fields"`
}

type attachDocumentRequest struct {
	Token    string `json:"token"`
	Category string `json:"category"`
	Handle   string `json:"handle"`
}

type tokenRequest struct {
	Token string `json:"token"`
}

/*
Open starts a new registration session.

POST /api/v1/registration/open

Description: Creates a draft for the requested role and auth method, collects
credential material up front, and returns the session token exactly once.

Request:
  - Body: openRequest (Role, AuthMethod, Email, Password, Assertion)

Response:
  - 201: OpenResult: Session token and initial snapshot
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 403: ErrForbidden: Admin self-registration attempted
  - 409: ErrConflict: Email already registered
*/
func (handler *Handler) open(writer http.ResponseWriter, request *http.Request) {
	var input openRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	result, err := handler.registrationService.Open(request.Context(), OpenInput{
		Role:       input.Role,
		AuthMethod: input.AuthMethod,
		Email:      input.Email,
		Password:   input.Password,
		Assertion:  input.Assertion,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, result)
}

/*
SubmitStep validates and merges a step payload into the session.

POST /api/v1/registration/steps

Description: The step must be the next expected one for the session's role,
or an already-completed step being resubmitted. All field violations in the
payload are reported together.

Request:
  - Body: submitStepRequest (Token, Step, Fields)

Response:
  - 200: Snapshot: Accumulated session state
  - 400: ErrInvalidJSON: Bad input or field validation failure
  - 404: SESSION_NOT_FOUND: Unknown, expired, or terminal session
  - 422: STEP_OUT_OF_ORDER: Step submitted out of sequence
*/
func (handler *Handler) submitStep(writer http.ResponseWriter, request *http.Request) {
	var input submitStepRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldToken, input.Token).
		Required(FieldStep, input.Step)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	snapshot, err := handler.registrationService.SubmitStep(request.Context(), input.Token, input.Step, input.Fields)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, snapshot)
}

/*
AttachDocument records a document reference on the session.

POST /api/v1/registration/documents

Description: Attaches an opaque storage handle under a category. Re-attaching
a category replaces the previous reference.

Request:
  - Body: attachDocumentRequest (Token, Category, Handle)

Response:
  - 200: Snapshot: Accumulated session state
  - 400: ErrInvalidJSON: Unknown category or missing handle
  - 404: SESSION_NOT_FOUND: Unknown, expired, or terminal session
*/
func (handler *Handler) attachDocument(writer http.ResponseWriter, request *http.Request) {
	var input attachDocumentRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if input.Token == "" {
		respond.Error(writer, request, validate.RequiredError(FieldToken, "is required"))
		return
	}

	snapshot, err := handler.registrationService.AttachDocument(request.Context(), input.Token, input.Category, input.Handle)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, snapshot)
}

/*
Commit converts the completed session into a durable account.

POST /api/v1/registration/commit

Description: Exactly-once: concurrent commits on the same token produce one
account. Incomplete drafts fail with the full list of what is missing and
remain repairable.

Request:
  - Body: tokenRequest (Token)

Response:
  - 201: Summary: The committed account
  - 404: SESSION_NOT_FOUND: Unknown, expired, or already-committed session
  - 409: ErrConflict: Email registered by a concurrent commit
  - 422: INCOMPLETE_STEPS / MISSING_DOCUMENTS: Draft not yet committable
  - 503: STORAGE_UNAVAILABLE: Transient fault, safe to retry
*/
func (handler *Handler) commit(writer http.ResponseWriter, request *http.Request) {
	var input tokenRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if input.Token == "" {
		respond.Error(writer, request, validate.RequiredError(FieldToken, "is required"))
		return
	}

	account, err := handler.registrationService.Commit(request.Context(), input.Token)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, account.Summarize())
}

/*
Abandon explicitly cancels a registration session.

POST /api/v1/registration/abandon

Description: Terminal and idempotent. Abandoning an unknown or already
terminal session still succeeds.

Request:
  - Body: tokenRequest (Token)

Response:
  - 204: No Content: Session is terminal
*/
func (handler *Handler) abandon(writer http.ResponseWriter, request *http.Request) {
	var input tokenRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if input.Token == "" {
		respond.Error(writer, request, validate.RequiredError(FieldToken, "is required"))
		return
	}

	if err := handler.registrationService.Abandon(request.Context(), input.Token); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
