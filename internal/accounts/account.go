// Copyright (c) 2026 Nomik. All rights reserved.

/*
Package accounts implements the credential store: the durable record of every
committed principal on the Nomik marketplace.

It defines the core domain entities (Account, Credential) and the persistence
contract that the provisioning flow commits into.

# Architecture

This layer is the "Truth" of the system. An account exists fully formed or not
at all: creation is a single transaction covering the account row, its profile
payload, and its document references, under a global email uniqueness
constraint that spans every role.
*/
package accounts

import (
	"time"

	"github.com/krish2956-mk/getnomik-tech-team/internal/documents"
	"github.com/krish2956-mk/getnomik-tech-team/internal/platform/sec"
)

// # Domain Entities

// FederatedRef points at an identity asserted by an external provider.
// The provider performs the actual verification; we only store the link.
type FederatedRef struct {
	Provider string `json:"provider"`
	Subject  string `json:"subject"`
}

// FederatedAssertion is a provider-verified identity claim presented at the
// transport edge. It is trusted input: the upstream handshake has already
// verified it before it reaches the domain.
type FederatedAssertion struct {
	Provider string `json:"provider"`
	Subject  string `json:"subject"`
	Email    string `json:"email"`
}

// Ref projects the assertion onto the stored [FederatedRef] link.
func (assertion FederatedAssertion) Ref() FederatedRef {
	return FederatedRef{Provider: assertion.Provider, Subject: assertion.Subject}
}

// Account represents a committed, durable principal.
//
// Role is fixed at creation and never changes. The credential is either a
// bcrypt password hash or a federated reference — never both empty.
type Account struct {
	ID           string                `json:"id"`
	Role         sec.AccountRole       `json:"role"`
	Email        string                `json:"email"`
	PasswordHash string                `json:"-"` // Explicitly omitted from JSON for security.
	Federated    *FederatedRef         `json:"federated,omitempty"`
	Profile      map[string]string     `json:"profile"`
	Documents    []documents.Reference `json:"documents,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
}

// HasPassword reports whether the account carries a password credential.
func (account *Account) HasPassword() bool {
	return account.PasswordHash != ""
}

// Summary is the transport-safe projection of an account returned by the
// provisioning commit. It never exposes credential material.
type Summary struct {
	ID        string          `json:"id"`
	Role      sec.AccountRole `json:"role"`
	Email     string          `json:"email"`
	CreatedAt time.Time       `json:"created_at"`
}

// Summarize maps an [Account] onto its transport projection.
func (account *Account) Summarize() Summary {
	return Summary{
		ID:        account.ID,
		Role:      account.Role,
		Email:     account.Email,
		CreatedAt: account.CreatedAt,
	}
}

// # Field Identifiers

// Global field names for validation and identity mapping in the accounts domain.
const (
	FieldEmail    = "email"
	FieldPassword = "password"
	FieldRole     = "role"
)
