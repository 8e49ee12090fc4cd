// Copyright (c) 2026 Nomik. All rights reserved.

package registration

import (
	"regexp"

	"github.com/krish2956-mk/getnomik-tech-team/internal/documents"
	"github.com/krish2956-mk/getnomik-tech-team/internal/platform/apperr"
	"github.com/krish2956-mk/getnomik-tech-team/internal/platform/sec"
	"github.com/krish2956-mk/getnomik-tech-team/internal/platform/validate"
)

// # Role Policy Engine
//
// Pure decision logic: which steps a role goes through, which fields each
// step requires, and which document categories must be attached before
// commit. No side effects, no stored state.

// # Step Identifiers

const (
	// Name, contact, and address details
	StepPersonalInfo = "personal-info"

	// Verification document attachment (client flow)
	StepDocumentUpload = "document-upload"

	// Bar-council and practice details (advocate flow)
	StepProfessionalInfo = "professional-info"
)

// # Field Specs

// FieldKind is the value domain of a policy field.
type FieldKind string

const (
	FieldKindString FieldKind = "string"
	FieldKindInt    FieldKind = "int"
)

// FieldSpec declares one field a step requires: its kind, format, and bounds.
// Step payloads carry every value as a string; numeric fields are parsed
// during validation.
type FieldSpec struct {
	Name     string
	Kind     FieldKind
	Required bool

	// Pattern, when set, must match the whole value. PatternHint is the
	// user-facing description of the expected format.
	Pattern     *regexp.Regexp
	PatternHint string

	// MaxLen bounds string fields; Min/Max bound int fields.
	MaxLen int
	Min    int
	Max    int
}

var (
	phonePattern   = regexp.MustCompile(`^\d{10}$`)
	pincodePattern = regexp.MustCompile(`^\d{6}$`)
)

// Per-role step field declarations. The original intake forms collected the
// same sets; here they are enforced authoritatively on the server.
var (
	clientPersonalFields = []FieldSpec{
		{Name: "firstName", Kind: FieldKindString, Required: true, MaxLen: 100},
		{Name: "lastName", Kind: FieldKindString, Required: true, MaxLen: 100},
		{Name: "phoneNumber", Kind: FieldKindString, Required: true, Pattern: phonePattern, PatternHint: "Must be a 10-digit phone number"},
		{Name: "address", Kind: FieldKindString, Required: true, MaxLen: 500},
		{Name: "city", Kind: FieldKindString, Required: true, MaxLen: 100},
		{Name: "state", Kind: FieldKindString, Required: true, MaxLen: 100},
		{Name: "pincode", Kind: FieldKindString, Required: true, Pattern: pincodePattern, PatternHint: "Must be a 6-digit pincode"},
	}

	advocatePersonalFields = []FieldSpec{
		{Name: "firstName", Kind: FieldKindString, Required: true, MaxLen: 100},
		{Name: "lastName", Kind: FieldKindString, Required: true, MaxLen: 100},
		{Name: "phoneNumber", Kind: FieldKindString, Required: true, Pattern: phonePattern, PatternHint: "Must be a 10-digit phone number"},
	}

	advocateProfessionalFields = []FieldSpec{
		{Name: "barCouncilNumber", Kind: FieldKindString, Required: true, MaxLen: 50},
		{Name: "enrollmentNumber", Kind: FieldKindString, Required: true, MaxLen: 50},
		{Name: "stateBarCouncil", Kind: FieldKindString, Required: true, MaxLen: 100},
		{Name: "experience", Kind: FieldKindInt, Required: true, Min: 0, Max: 70},
		{Name: "education", Kind: FieldKindString, Required: true, MaxLen: 300},
		{Name: "address", Kind: FieldKindString, Required: true, MaxLen: 500},
	}
)

// # Policy Queries

// StepsFor returns the ordered steps a role must complete before commit.
// Admin accounts are provisioned out-of-band and have no self-registration
// steps.
func StepsFor(role sec.AccountRole) []string {
	switch role {
	case sec.RoleClient:
		return []string{StepPersonalInfo, StepDocumentUpload}
	case sec.RoleAdvocate:
		return []string{StepPersonalInfo, StepProfessionalInfo}
	default:
		return nil
	}
}

// FieldsRequired returns the field specs for one step of a role's flow.
// Unknown role/step combinations yield nil.
func FieldsRequired(role sec.AccountRole, stepID string) []FieldSpec {
	switch {
	case role == sec.RoleClient && stepID == StepPersonalInfo:
		return clientPersonalFields
	case role == sec.RoleClient && stepID == StepDocumentUpload:
		// The step carries no fields: documents attach through their own
		// operation and are verified at commit.
		return []FieldSpec{}
	case role == sec.RoleAdvocate && stepID == StepPersonalInfo:
		return advocatePersonalFields
	case role == sec.RoleAdvocate && stepID == StepProfessionalInfo:
		return advocateProfessionalFields
	default:
		return nil
	}
}

// DocumentsRequired returns the document categories a role must attach
// before commit.
func DocumentsRequired(role sec.AccountRole) []documents.Category {
	switch role {
	case sec.RoleClient:
		return []documents.Category{
			documents.CategoryIdentityProof,
			documents.CategoryAddressProof,
			documents.CategorySupplementary,
		}
	case sec.RoleAdvocate:
		return []documents.Category{
			documents.CategoryIdentityProof,
			documents.CategoryAdvocateVerification,
		}
	default:
		return nil
	}
}

// # Payload Validation

/*
ValidateStep checks a step payload against the role's field specs.

Description: Enumerates every violated field at once — required fields that
are missing, format mismatches, out-of-range numbers, and fields the policy
does not know — so the caller can present all errors together.

Parameters:
  - role: sec.AccountRole
  - stepID: string
  - payload: map[string]string

Returns:
  - error: apperr VALIDATION_ERROR with per-field details, or nil
*/
func ValidateStep(role sec.AccountRole, stepID string, payload map[string]string) error {
	specs := FieldsRequired(role, stepID)
	if specs == nil {
		return apperr.Unprocessable("Unknown step for this role")
	}

	validator := &validate.Validator{}
	known := make(map[string]struct{}, len(specs))

	for _, spec := range specs {
		known[spec.Name] = struct{}{}
		value, present := payload[spec.Name]

		if !present || value == "" {
			if spec.Required {
				validator.Required(spec.Name, "")
			}
			continue
		}

		switch spec.Kind {
		case FieldKindInt:
			validator.IntRange(spec.Name, value, spec.Min, spec.Max)
		default:
			if spec.MaxLen > 0 {
				validator.MaxLen(spec.Name, value, spec.MaxLen)
			}
			if spec.Pattern != nil {
				validator.Pattern(spec.Name, value, spec.Pattern, spec.PatternHint)
			}
		}
	}

	// The server owns the profile shape: fields outside the policy are
	// rejected rather than silently stored.
	for name := range payload {
		if _, ok := known[name]; !ok {
			validator.Custom(name, true, "Unknown field for this step")
		}
	}

	return validator.Err()
}
