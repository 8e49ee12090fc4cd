// Copyright (c) 2026 Nomik. All rights reserved.

/*
Package documents implements the document reference ledger.

The platform never processes file content: uploads happen against an external
blob store, and this package only records opaque storage handles, tagged with
a verification category and tied to either a pending registration session or
a committed account.

# Architecture

  - Reference: The ledger entry (category, handle, timestamps).
  - Ledger: Read access to references of committed accounts (PostgreSQL).
  - OrphanTracker: Pending handles of not-yet-committed sessions (Redis),
    reclaimed by the [Reaper] once their session can no longer commit.
*/
package documents

import "time"

// # Categories

// Category tags the verification purpose of an uploaded document.
type Category string

const (
	// Government-issued photo identification (Aadhar, passport, PAN)
	CategoryIdentityProof Category = "identity-proof"

	// Proof of residence (utility bill, rental agreement)
	CategoryAddressProof Category = "address-proof"

	// Bar-council certificate or enrollment proof for advocates
	CategoryAdvocateVerification Category = "advocate-verification"

	// Any additional supporting document
	CategorySupplementary Category = "supplementary"
)

// ParseCategory converts a raw string into a known [Category].
// It returns false for anything outside the closed category set.
func ParseCategory(raw string) (Category, bool) {
	switch Category(raw) {
	case CategoryIdentityProof, CategoryAddressProof, CategoryAdvocateVerification, CategorySupplementary:
		return Category(raw), true
	default:
		return "", false
	}
}

// Categories returns the closed set of valid categories.
func Categories() []Category {
	return []Category{
		CategoryIdentityProof,
		CategoryAddressProof,
		CategoryAdvocateVerification,
		CategorySupplementary,
	}
}

// # Ledger Entries

// Reference is one ledger entry: an opaque handle into the external blob
// store, owned by a registration session until commit and by the created
// account afterwards.
type Reference struct {
	ID         string    `json:"id"`
	AccountID  string    `json:"account_id,omitempty"`
	Category   Category  `json:"category"`
	Handle     string    `json:"handle"`
	UploadedAt time.Time `json:"uploaded_at"`
}
