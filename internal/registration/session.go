// Copyright (c) 2026 Nomik. All rights reserved.

/*
Package registration implements the account provisioning core: the multi-step
state machine that turns an unauthenticated visitor into a committed,
role-tagged account.

It handles everything from opening a draft session and validating step
payloads against the role policy, to the exactly-once commit that converts
the draft into a durable account.

Architecture:

  - Policy: Pure per-role rules (required fields, steps, documents).
  - Session: Ephemeral draft state, keyed by an unguessable token (Redis).
  - Service: Orchestrates policy, session store, credential store, and the
    document ledger.

Session lifecycle: Opened → steps completed in order → Committed, with
Expired and Abandoned reachable from any non-terminal state. Committed,
Expired, and Abandoned are terminal.
*/
package registration

import (
	"slices"
	"time"

	"github.com/krish2956-mk/getnomik-tech-team/internal/accounts"
	"github.com/krish2956-mk/getnomik-tech-team/internal/documents"
	"github.com/krish2956-mk/getnomik-tech-team/internal/platform/sec"
)

// # Auth Methods

// AuthMethod is how the visitor chose to authenticate at session open.
type AuthMethod string

const (
	// Email and password collected up front; hash held in the draft
	AuthMethodPassword AuthMethod = "password-pending"

	// Verified external identity assertion (e.g. Google sign-in)
	AuthMethodFederated AuthMethod = "federated"
)

// ParseAuthMethod converts a raw string into a known [AuthMethod].
func ParseAuthMethod(raw string) (AuthMethod, bool) {
	switch AuthMethod(raw) {
	case AuthMethodPassword, AuthMethodFederated:
		return AuthMethod(raw), true
	default:
		return "", false
	}
}

// # Session Entity

// AttachedDocument is a document reference held by a draft session.
// Re-attaching the same category replaces the previous reference.
type AttachedDocument struct {
	Handle     string    `json:"handle"`
	AttachedAt time.Time `json:"attached_at"`
}

// Session is an ephemeral, mutable draft of a not-yet-committed account.
//
// A session belongs to exactly one role for its lifetime. It is destroyed on
// commit (converted into an account) or garbage-collected on expiry. The
// session token itself is the storage key and never serialized into the value.
type Session struct {
	Role       sec.AccountRole `json:"role"`
	AuthMethod AuthMethod      `json:"auth_method"`

	// Credential material accumulated at open. PasswordHash is a bcrypt
	// hash — the plaintext is never retained. PasswordLength records the
	// accepted length so commit can re-check the policy without it.
	Email          string                 `json:"email"`
	PasswordHash   string                 `json:"password_hash,omitempty"`
	PasswordLength int                    `json:"password_length,omitempty"`
	Federated      *accounts.FederatedRef `json:"federated,omitempty"`

	// Step progress and the accumulated, already-validated field values.
	CompletedSteps []string          `json:"completed_steps"`
	Fields         map[string]string `json:"fields"`

	// Attached document references by category.
	Documents map[documents.Category]AttachedDocument `json:"documents"`

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session has passed its inactivity deadline.
// Expiry is checked lazily on every operation.
func (session *Session) Expired(now time.Time) bool {
	return !now.Before(session.ExpiresAt)
}

// StepCompleted reports whether the given step has already been submitted.
func (session *Session) StepCompleted(stepID string) bool {
	return slices.Contains(session.CompletedSteps, stepID)
}

// NextStep returns the next expected step for the session's role, or an
// empty string when every step is complete.
func (session *Session) NextStep() string {
	for _, stepID := range StepsFor(session.Role) {
		if !session.StepCompleted(stepID) {
			return stepID
		}
	}
	return ""
}

// Clone returns a deep copy of the session. Stores hand out clones so a
// caller mutating its copy never races another holder of the same draft.
func (session *Session) Clone() *Session {
	clone := *session
	clone.CompletedSteps = slices.Clone(session.CompletedSteps)
	clone.Fields = cloneFields(session.Fields)
	clone.Documents = make(map[documents.Category]AttachedDocument, len(session.Documents))
	for category, attached := range session.Documents {
		clone.Documents[category] = attached
	}
	if session.Federated != nil {
		federated := *session.Federated
		clone.Federated = &federated
	}
	return &clone
}

// MissingDocuments returns the required categories not yet attached,
// in policy order.
func (session *Session) MissingDocuments() []documents.Category {
	var missing []documents.Category
	for _, category := range DocumentsRequired(session.Role) {
		if _, attached := session.Documents[category]; !attached {
			missing = append(missing, category)
		}
	}
	return missing
}

// DocumentHandles returns every attached handle, used to release orphan
// tracking after a successful commit.
func (session *Session) DocumentHandles() []string {
	handles := make([]string, 0, len(session.Documents))
	for _, attached := range session.Documents {
		handles = append(handles, attached.Handle)
	}
	return handles
}

// # Snapshot

// Snapshot is the transport-safe echo of a session's accumulated state,
// returned after every successful mutation. It supports idempotent
// resubmission: submitting the same step twice yields the same snapshot.
type Snapshot struct {
	Role           sec.AccountRole               `json:"role"`
	AuthMethod     AuthMethod                    `json:"auth_method"`
	Email          string                        `json:"email"`
	CompletedSteps []string                      `json:"completed_steps"`
	NextStep       string                        `json:"next_step,omitempty"`
	Fields         map[string]string             `json:"fields"`
	Documents      map[documents.Category]string `json:"documents"`
	ExpiresAt      time.Time                     `json:"expires_at"`
}

// Snapshot projects the session onto its transport representation.
// Credential material never crosses this boundary.
func (session *Session) Snapshot() *Snapshot {
	attachedDocuments := make(map[documents.Category]string, len(session.Documents))
	for category, attached := range session.Documents {
		attachedDocuments[category] = attached.Handle
	}

	return &Snapshot{
		Role:           session.Role,
		AuthMethod:     session.AuthMethod,
		Email:          session.Email,
		CompletedSteps: slices.Clone(session.CompletedSteps),
		NextStep:       session.NextStep(),
		Fields:         cloneFields(session.Fields),
		Documents:      attachedDocuments,
		ExpiresAt:      session.ExpiresAt,
	}
}

func cloneFields(fields map[string]string) map[string]string {
	clone := make(map[string]string, len(fields))
	for key, value := range fields {
		clone[key] = value
	}
	return clone
}
