// Copyright (c) 2026 Nomik. All rights reserved.

/*
Package auth implements the authentication service: credential verification
against committed accounts and issuance of session credentials.

# Architecture

Authentication is deliberately dumb. It never touches registration state —
only committed accounts exist as far as this package is concerned. Every
password-path failure collapses into one indistinguishable error so the
endpoint cannot be used as an email oracle.
*/
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/krish2956-mk/getnomik-tech-team/internal/accounts"
	"github.com/krish2956-mk/getnomik-tech-team/internal/platform/apperr"
	"github.com/krish2956-mk/getnomik-tech-team/internal/platform/sec"
	"github.com/krish2956-mk/getnomik-tech-team/internal/platform/validate"
)

// # Error Codes

const (
	// Session credential past its expiry
	CodeTokenExpired = "TOKEN_EXPIRED"

	// Malformed, tampered, or wrongly-signed session credential
	CodeTokenInvalid = "TOKEN_INVALID"

	// Federated identity verified upstream but not linked to any account
	CodeNoLinkedAccount = "NO_LINKED_ACCOUNT"
)

// invalidCredentials is the single error shape for every password-path
// failure: unknown email, federated-only account, wrong password. Branching
// here would turn login into an account-enumeration oracle.
func invalidCredentials() *apperr.AppError {
	return apperr.Unauthorized("Invalid email or password")
}

// # Definitions & Constructors

// SessionCredential is a signed, expiring bearer credential issued after a
// successful login.
type SessionCredential struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	Account   accounts.Summary `json:"account"`
}

// Principal is the verified identity extracted from a session credential.
type Principal struct {
	AccountID string          `json:"account_id"`
	Role      sec.AccountRole `json:"role"`
}

// Service verifies credentials against the account store and mints session
// credentials.
type Service struct {
	accountStore  accounts.Store
	tokenService  *sec.TokenService
	credentialTTL time.Duration

	// now is the clock source; overridable in tests.
	now func() time.Time
}

// NewService constructs a new authentication [Service].
func NewService(accountStore accounts.Store, tokenService *sec.TokenService, credentialTTL time.Duration) *Service {
	return &Service{
		accountStore:  accountStore,
		tokenService:  tokenService,
		credentialTTL: credentialTTL,
		now:           time.Now,
	}
}

// # Login

/*
LoginWithPassword authenticates an email/password pair.

Description: Lookup is by lowercased email across all roles. Unknown email,
federated-only account, and wrong password all return the identical
UNAUTHORIZED error, and the unknown-email path burns a bcrypt comparison so
its timing matches the known-email path.

Parameters:
  - context: context.Context
  - email: string
  - password: string

Returns:
  - *SessionCredential: Signed credential plus account summary
  - error: Identical UNAUTHORIZED on any credential failure, or storage errors
*/
func (service *Service) LoginWithPassword(context context.Context, email, password string) (*SessionCredential, error) {

	email = strings.ToLower(strings.TrimSpace(email))

	account, err := service.accountStore.FindByEmail(context, email)
	if err != nil {
		if apperr.HasCode(err, "NOT_FOUND") {
			// Equalize timing with the found-account path.
			sec.BurnPasswordCheck(password)
			return nil, invalidCredentials()
		}
		return nil, err
	}

	if !account.HasPassword() {
		// Federated-only account: no password to check, but the response
		// must not reveal that this email exists.
		sec.BurnPasswordCheck(password)
		return nil, invalidCredentials()
	}

	if !sec.CheckPasswordHash(password, account.PasswordHash) {
		return nil, invalidCredentials()
	}

	return service.issue(account)
}

/*
LoginWithFederatedAssertion authenticates a provider-verified identity.

Description: The assertion has already been verified by the upstream provider
handshake; this only resolves the (provider, subject) link. An unlinked
identity fails with NO_LINKED_ACCOUNT so the client can route the visitor
into registration instead.

Parameters:
  - context: context.Context
  - assertion: accounts.FederatedAssertion

Returns:
  - *SessionCredential: Signed credential plus account summary
  - error: NO_LINKED_ACCOUNT, validation, or storage errors
*/
func (service *Service) LoginWithFederatedAssertion(context context.Context, assertion accounts.FederatedAssertion) (*SessionCredential, error) {

	validator := &validate.Validator{}
	validator.Required("assertion.provider", assertion.Provider).
		Required("assertion.subject", assertion.Subject)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	account, err := service.accountStore.FindByFederated(context, assertion.Provider, assertion.Subject)
	if err != nil {
		if apperr.HasCode(err, "NOT_FOUND") {
			return nil, apperr.New(CodeNoLinkedAccount,
				"No account is linked to this identity. Register first.", http.StatusNotFound)
		}
		return nil, err
	}

	return service.issue(account)
}

// # Verification

/*
VerifySessionCredential checks a presented credential and extracts its principal.

Description: Expired and otherwise-invalid credentials fail with distinct
codes so clients can tell "log in again" apart from "malformed request".

Parameters:
  - token: string

Returns:
  - *Principal: Account ID and role bound into the credential
  - error: TOKEN_EXPIRED or TOKEN_INVALID
*/
func (service *Service) VerifySessionCredential(token string) (*Principal, error) {

	claims, err := service.tokenService.VerifySessionCredential(token)
	if err != nil {
		if errors.Is(err, sec.ErrTokenExpired) {
			return nil, apperr.New(CodeTokenExpired, "Session credential has expired", http.StatusUnauthorized)
		}
		return nil, apperr.New(CodeTokenInvalid, "Session credential is invalid", http.StatusUnauthorized)
	}

	role, valid := sec.ParseRole(claims.Role)
	if !valid {
		return nil, apperr.New(CodeTokenInvalid, "Session credential is invalid", http.StatusUnauthorized)
	}

	return &Principal{AccountID: claims.AccountID, Role: role}, nil
}

// issue mints a session credential for a committed account.
func (service *Service) issue(account *accounts.Account) (*SessionCredential, error) {

	token, err := service.tokenService.GenerateSessionCredential(account.ID, string(account.Role), service.credentialTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_credential_failed: %w", err)
	}

	return &SessionCredential{
		Token:     token,
		ExpiresAt: service.now().Add(service.credentialTTL),
		Account:   account.Summarize(),
	}, nil
}
