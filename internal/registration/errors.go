// Copyright (c) 2026 Nomik. All rights reserved.

package registration

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/krish2956-mk/getnomik-tech-team/internal/documents"
	"github.com/krish2956-mk/getnomik-tech-team/internal/platform/apperr"
)

// # Field Identifiers

// Transport-level field names for validation in the registration domain.
const (
	FieldToken = "token"
	FieldStep  = "step"
)

// # Error Codes
//
// Machine-readable codes for the provisioning state machine. Clients branch
// on these; messages are presentation only.
const (
	// Unknown, expired, abandoned, or already-committed session token
	CodeSessionNotFound = "SESSION_NOT_FOUND"

	// Step submitted out of the role's required order
	CodeStepOutOfOrder = "STEP_OUT_OF_ORDER"

	// Commit attempted before every required step completed
	CodeIncompleteSteps = "INCOMPLETE_STEPS"

	// Commit attempted before every required document category attached
	CodeMissingDocuments = "MISSING_DOCUMENTS"
)

// errSessionNotFound covers every terminal or unknown session state.
// Deliberately indistinguishable between "never existed", "expired", and
// "already committed": the caller restarts the flow either way, and the
// ambiguity keeps tokens unprobeable.
func errSessionNotFound() *apperr.AppError {
	return apperr.New(CodeSessionNotFound, "Registration session not found or expired", http.StatusNotFound)
}

func errStepOutOfOrder(expected string) *apperr.AppError {
	if expected == "" {
		return apperr.New(CodeStepOutOfOrder,
			"All steps are already complete; the session is ready to commit",
			http.StatusUnprocessableEntity)
	}
	return apperr.New(CodeStepOutOfOrder,
		fmt.Sprintf("Step submitted out of order; next expected step is %q", expected),
		http.StatusUnprocessableEntity)
}

func errIncompleteSteps(missing []string) *apperr.AppError {
	return apperr.New(CodeIncompleteSteps,
		fmt.Sprintf("Registration is incomplete; remaining steps: %s", strings.Join(missing, ", ")),
		http.StatusUnprocessableEntity)
}

func errMissingDocuments(missing []documents.Category) *apperr.AppError {
	names := make([]string, len(missing))
	for index, category := range missing {
		names[index] = string(category)
	}
	return apperr.New(CodeMissingDocuments,
		fmt.Sprintf("Required documents missing: %s", strings.Join(names, ", ")),
		http.StatusUnprocessableEntity)
}
