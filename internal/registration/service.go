// Copyright (c) 2026 Nomik. All rights reserved.

package registration

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/krish2956-mk/getnomik-tech-team/internal/accounts"
	"github.com/krish2956-mk/getnomik-tech-team/internal/documents"
	"github.com/krish2956-mk/getnomik-tech-team/internal/platform/apperr"
	"github.com/krish2956-mk/getnomik-tech-team/internal/platform/constants"
	"github.com/krish2956-mk/getnomik-tech-team/internal/platform/sec"
	"github.com/krish2956-mk/getnomik-tech-team/internal/platform/validate"
	pkguuid "github.com/krish2956-mk/getnomik-tech-team/pkg/uuid"
)

// # Provisioning Service

// Service orchestrates the registration session, role policy, credential
// store, and document ledger to either advance a draft or commit it into a
// durable account.
//
// # Review Process
//
// This service is critical for security. Any changes to credential handling,
// commit atomicity, or expiry logic must be reviewed by the security team.
type Service struct {
	sessionStore      SessionStore
	accountStore      accounts.Store
	orphanTracker     documents.OrphanTracker
	sessionTTL        time.Duration
	passwordMinLength int

	// now is the clock source; overridable in tests.
	now func() time.Time
}

// NewService constructs a new provisioning [Service] with its dependencies.
func NewService(
	sessionStore SessionStore,
	accountStore accounts.Store,
	orphanTracker documents.OrphanTracker,
	sessionTTL time.Duration,
	passwordMinLength int,
) *Service {
	return &Service{
		sessionStore:      sessionStore,
		accountStore:      accountStore,
		orphanTracker:     orphanTracker,
		sessionTTL:        sessionTTL,
		passwordMinLength: passwordMinLength,
		now:               time.Now,
	}
}

// # Open

// OpenInput holds the data required to start a registration draft.
type OpenInput struct {
	Role       string
	AuthMethod string

	// Password path: collected up front, hashed immediately.
	Email    string
	Password string

	// Federated path: a verified external identity assertion.
	Assertion *accounts.FederatedAssertion
}

// OpenResult carries the fresh session token and its initial snapshot.
// The token is returned exactly once and never logged.
type OpenResult struct {
	Token    string    `json:"token"`
	Snapshot *Snapshot `json:"snapshot"`
}

/*
Open creates a new registration session for a role and auth method.

Description: Rejects Admin (provisioned out-of-band, never self-registered),
validates the credential material, hashes the password immediately so no
plaintext is retained, and stores the draft under an unguessable token.

Parameters:
  - context: context.Context
  - input: OpenInput

Returns:
  - *OpenResult: Session token plus initial snapshot
  - error: Validation, Forbidden (Admin), Conflict (email taken), or storage errors
*/
func (service *Service) Open(context context.Context, input OpenInput) (*OpenResult, error) {

	role, validRole := sec.ParseRole(input.Role)
	if !validRole {
		return nil, validate.RequiredError(accounts.FieldRole, "Must be one of: client, advocate")
	}
	if role == sec.RoleAdmin {
		return nil, apperr.Forbidden("Admin accounts are provisioned out-of-band, not via self-registration")
	}

	authMethod, validMethod := ParseAuthMethod(input.AuthMethod)
	if !validMethod {
		return nil, validate.RequiredError("auth_method", "Must be one of: password-pending, federated")
	}

	now := service.now()
	session := &Session{
		Role:       role,
		AuthMethod: authMethod,
		Fields:     make(map[string]string),
		Documents:  make(map[documents.Category]AttachedDocument),
		CreatedAt:  now,
		ExpiresAt:  now.Add(service.sessionTTL),
	}

	switch authMethod {
	case AuthMethodFederated:
		if input.Assertion == nil {
			return nil, validate.RequiredError("assertion", "A verified identity assertion is required")
		}
		reference := input.Assertion.Ref()
		session.Federated = &reference
		session.Email = normalizeEmail(input.Assertion.Email)

		validator := &validate.Validator{}
		validator.Required(accounts.FieldEmail, session.Email).
			Email(accounts.FieldEmail, session.Email).
			Required("assertion.provider", reference.Provider).
			Required("assertion.subject", reference.Subject)
		if err := validator.Err(); err != nil {
			return nil, err
		}

	case AuthMethodPassword:
		session.Email = normalizeEmail(input.Email)

		// The password minimum-strength policy is verified here, at
		// acceptance time, and re-checked at commit so a raised policy
		// cannot be bypassed by a lingering draft.
		validator := &validate.Validator{}
		validator.Required(accounts.FieldEmail, session.Email).
			Email(accounts.FieldEmail, session.Email).
			Required(accounts.FieldPassword, input.Password).
			MinLen(accounts.FieldPassword, input.Password, service.passwordMinLength)
		if err := validator.Err(); err != nil {
			return nil, err
		}

		passwordHash, err := sec.HashPassword(input.Password)
		if err != nil {
			return nil, fmt.Errorf("registration_service_hash_failed: %w", err)
		}
		session.PasswordHash = passwordHash
		session.PasswordLength = len([]rune(input.Password))
	}

	// Courtesy fail-fast on a taken email. The authoritative check is the
	// atomic constraint at commit; this one only saves the visitor a
	// multi-step flow that cannot succeed.
	if err := service.checkEmailAvailable(context, session.Email); err != nil {
		return nil, err
	}

	token, err := sec.GenerateSecureToken(constants.SessionTokenLength)
	if err != nil {
		return nil, fmt.Errorf("registration_service_token_failed: %w", err)
	}

	if err := service.sessionStore.Save(context, token, session); err != nil {
		return nil, err
	}

	return &OpenResult{Token: token, Snapshot: session.Snapshot()}, nil
}

// # Step Submission

/*
SubmitStep validates a step payload and merges it into the draft.

Description: Enforces the role's step order authoritatively. Resubmitting an
already-completed step is idempotent: the payload is re-validated and merged,
and an identical payload yields an identical snapshot. Every successful
operation refreshes the inactivity window.

Parameters:
  - context: context.Context
  - token: string
  - stepID: string
  - payload: map[string]string

Returns:
  - *Snapshot: Updated accumulated state
  - error: SESSION_NOT_FOUND, STEP_OUT_OF_ORDER, or validation errors
*/
func (service *Service) SubmitStep(context context.Context, token, stepID string, payload map[string]string) (*Snapshot, error) {

	session, err := service.loadLive(context, token)
	if err != nil {
		return nil, err
	}

	// Step order: the next expected step or any already-completed step is
	// acceptable; everything else is out of order.
	if !session.StepCompleted(stepID) {
		expected := session.NextStep()
		if expected == "" || stepID != expected {
			return nil, errStepOutOfOrder(expected)
		}
	}

	if err := ValidateStep(session.Role, stepID, payload); err != nil {
		return nil, err
	}

	// Merge the validated payload into the accumulated fields.
	for name, value := range payload {
		session.Fields[name] = strings.TrimSpace(value)
	}
	if !session.StepCompleted(stepID) {
		session.CompletedSteps = append(session.CompletedSteps, stepID)
	}

	if err := service.refresh(context, token, session); err != nil {
		return nil, err
	}

	return session.Snapshot(), nil
}

// # Document Attachment

/*
AttachDocument records a document reference on the draft.

Description: The blob itself lives in the external store; only the opaque
handle is recorded. Re-attaching a category replaces the previous reference
rather than duplicating it. The handle is tracked as an orphan candidate
until commit adopts it.

Parameters:
  - context: context.Context
  - token: string
  - category: string
  - handle: string

Returns:
  - *Snapshot: Updated accumulated state
  - error: SESSION_NOT_FOUND, validation, or storage errors
*/
func (service *Service) AttachDocument(context context.Context, token, category, handle string) (*Snapshot, error) {

	session, err := service.loadLive(context, token)
	if err != nil {
		return nil, err
	}

	parsedCategory, validCategory := documents.ParseCategory(category)

	validator := &validate.Validator{}
	validator.Custom("category", !validCategory, "Unknown document category").
		Required("handle", handle)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	session.Documents[parsedCategory] = AttachedDocument{
		Handle:     handle,
		AttachedAt: service.now(),
	}

	// Attaching a document IS the upload step: the step carries no fields
	// of its own, so the first attachment completes it. Completeness of the
	// required category set is still verified at commit.
	if slices.Contains(StepsFor(session.Role), StepDocumentUpload) && !session.StepCompleted(StepDocumentUpload) {
		session.CompletedSteps = append(session.CompletedSteps, StepDocumentUpload)
	}

	if err := service.orphanTracker.Track(context, handle, service.now()); err != nil {
		return nil, err
	}

	if err := service.refresh(context, token, session); err != nil {
		return nil, err
	}

	return session.Snapshot(), nil
}

// # Commit

/*
Commit converts a completed draft into a durable account, exactly once.

Description: Atomically claims the session (two concurrent commits on one
token — exactly one obtains it), verifies completeness, and performs the
transactional account insert under the global email uniqueness constraint.
Business failures restore the draft so the caller can repair it; only a
successful commit destroys the session for good.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - *accounts.Account: The committed account
  - error: SESSION_NOT_FOUND, INCOMPLETE_STEPS, MISSING_DOCUMENTS,
    CONFLICT (duplicate email), VALIDATION_ERROR, or STORAGE_UNAVAILABLE
*/
func (service *Service) Commit(context context.Context, token string) (*accounts.Account, error) {

	// The single critical section: claim is atomic per token, so a session
	// already committed (or expired) fails with SESSION_NOT_FOUND and can
	// never be re-committed under retry.
	session, err := service.sessionStore.Claim(context, token)
	if err != nil {
		return nil, err
	}
	if session.Expired(service.now()) {
		return nil, errSessionNotFound()
	}

	if err := service.verifyComplete(session); err != nil {
		// The draft is still repairable — put it back.
		service.restore(context, token, session)
		return nil, err
	}

	account := &accounts.Account{
		ID:           pkguuid.New(),
		Role:         session.Role,
		Email:        session.Email,
		PasswordHash: session.PasswordHash,
		Federated:    session.Federated,
		Profile:      cloneFields(session.Fields),
		CreatedAt:    service.now(),
	}
	for _, category := range sortedCategories(session.Documents) {
		attached := session.Documents[category]
		account.Documents = append(account.Documents, documents.Reference{
			Category:   category,
			Handle:     attached.Handle,
			UploadedAt: attached.AttachedAt,
		})
	}

	if err := service.accountStore.Create(context, account); err != nil {
		// Duplicate email and transient storage faults both leave the
		// draft intact: the first is deterministic on retry, the second
		// is retryable with backoff.
		service.restore(context, token, session)
		return nil, err
	}

	// Ownership transferred: the handles are no longer orphan candidates.
	// Best effort: if the clear fails the handles linger in the tracker,
	// and the reaper's ledger ownership check refuses to delete them.
	_ = service.orphanTracker.Clear(context, session.DocumentHandles()...)

	return account, nil
}

// # Abandon

/*
Abandon explicitly cancels a draft. Terminal and idempotent: abandoning an
unknown or already-terminal session is not an error.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - error: Storage errors only
*/
func (service *Service) Abandon(context context.Context, token string) error {
	// Attached documents stay tracked and are reclaimed by the reaper.
	return service.sessionStore.Delete(context, token)
}

// # Internal Helpers

// loadLive fetches a session and enforces lazy expiry.
func (service *Service) loadLive(context context.Context, token string) (*Session, error) {
	session, err := service.sessionStore.Get(context, token)
	if err != nil {
		return nil, err
	}
	if session.Expired(service.now()) {
		_ = service.sessionStore.Delete(context, token)
		return nil, errSessionNotFound()
	}
	return session, nil
}

// refresh extends the inactivity window and persists the session. Attached
// handles are re-tracked so the reaper's cutoff follows session activity.
func (service *Service) refresh(context context.Context, token string, session *Session) error {
	now := service.now()
	session.ExpiresAt = now.Add(service.sessionTTL)

	for _, handle := range session.DocumentHandles() {
		if err := service.orphanTracker.Track(context, handle, now); err != nil {
			return err
		}
	}

	return service.sessionStore.Save(context, token, session)
}

// restore writes a claimed session back after a repairable commit failure.
// Best effort: if the write fails the draft is lost, surfacing as
// SESSION_NOT_FOUND on the next operation.
func (service *Service) restore(context context.Context, token string, session *Session) {
	_ = service.sessionStore.Save(context, token, session)
}

// verifyComplete checks steps, documents, and the current password policy.
func (service *Service) verifyComplete(session *Session) error {

	var missingSteps []string
	for _, stepID := range StepsFor(session.Role) {
		if !session.StepCompleted(stepID) {
			missingSteps = append(missingSteps, stepID)
		}
	}
	if len(missingSteps) > 0 {
		return errIncompleteSteps(missingSteps)
	}

	if missing := session.MissingDocuments(); len(missing) > 0 {
		return errMissingDocuments(missing)
	}

	// Re-verify the password policy at acceptance time: a draft opened
	// under an older, weaker policy must not commit under the new one.
	if session.AuthMethod == AuthMethodPassword && session.PasswordLength < service.passwordMinLength {
		return validate.RequiredError(accounts.FieldPassword,
			fmt.Sprintf("Minimum %d characters", service.passwordMinLength))
	}

	return nil
}

// checkEmailAvailable performs the courtesy duplicate-email check at open.
func (service *Service) checkEmailAvailable(context context.Context, email string) error {
	_, err := service.accountStore.FindByEmail(context, email)
	if err == nil {
		return apperr.Conflict("An account with this email already exists")
	}
	if appError := apperr.As(err); appError != nil && appError.Code == "NOT_FOUND" {
		return nil
	}
	return err
}

// normalizeEmail lower-cases and trims an email address so uniqueness is
// case-insensitive.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// sortedCategories returns the map keys in stable order for deterministic
// document persistence.
func sortedCategories(attached map[documents.Category]AttachedDocument) []documents.Category {
	var ordered []documents.Category
	for _, category := range documents.Categories() {
		if _, exists := attached[category]; exists {
			ordered = append(ordered, category)
		}
	}
	return ordered
}
