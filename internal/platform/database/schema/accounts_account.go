// Copyright (c) 2026 Nomik. All rights reserved.

// Package schema centralizes table and column names for the accounts
// database so queries never hardcode identifiers.
package schema

// AccountTable represents the 'accounts.account' table
type AccountTable struct {
	Table             string
	ID                string
	Role              string
	Email             string
	Password          string
	FederatedProvider string
	FederatedSubject  string
	Profile           string
	CreatedAt         string
}

// Account is the schema definition for accounts.account
var Account = AccountTable{
	Table:             "accounts.account",
	ID:                "id",
	Role:              "role",
	Email:             "email",
	Password:          "passwordhash",
	FederatedProvider: "federatedprovider",
	FederatedSubject:  "federatedsubject",
	Profile:           "profile",
	CreatedAt:         "createdat",
}

// Columns returns all standard column names
func (t AccountTable) Columns() []string {
	return []string{
		t.ID, t.Role, t.Email, t.Password,
		t.FederatedProvider, t.FederatedSubject, t.Profile, t.CreatedAt,
	}
}
