// Copyright (c) 2026 Nomik. All rights reserved.

package registration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krish2956-mk/getnomik-tech-team/internal/accounts"
	"github.com/krish2956-mk/getnomik-tech-team/internal/documents"
	"github.com/krish2956-mk/getnomik-tech-team/internal/platform/apperr"
	"github.com/krish2956-mk/getnomik-tech-team/internal/platform/sec"
)

// # Test Harness

// fakeClock lets tests move session time forward without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (clock *fakeClock) Now() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.now
}

func (clock *fakeClock) Advance(delta time.Duration) {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	clock.now = clock.now.Add(delta)
}

type harness struct {
	service  *Service
	accounts *accounts.MemoryStore
	sessions *MemorySessionStore
	tracker  *documents.MemoryOrphanTracker
	clock    *fakeClock
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	clock := &fakeClock{now: time.Now()}
	accountStore := accounts.NewMemoryStore()
	sessionStore := NewMemorySessionStore()
	tracker := documents.NewMemoryOrphanTracker()

	service := NewService(sessionStore, accountStore, tracker, 30*time.Minute, 8)
	service.now = clock.Now

	return &harness{
		service:  service,
		accounts: accountStore,
		sessions: sessionStore,
		tracker:  tracker,
		clock:    clock,
	}
}

var clientPersonalPayload = map[string]string{
	"firstName":   "Asha",
	"lastName":    "Rao",
	"phoneNumber": "9876543210",
	"address":     "12 MG Road",
	"city":        "Bengaluru",
	"state":       "Karnataka",
	"pincode":     "560001",
}

var advocatePersonalPayload = map[string]string{
	"firstName":   "Meera",
	"lastName":    "Iyer",
	"phoneNumber": "9123456780",
}

var advocateProfessionalPayload = map[string]string{
	"barCouncilNumber": "KAR/1234/2012",
	"enrollmentNumber": "EN-4521",
	"stateBarCouncil":  "Karnataka",
	"experience":       "12",
	"education":        "LLB, National Law School",
	"address":          "4 Residency Road, Bengaluru",
}

// openClient opens a password-path client session and returns the token.
func (h *harness) openClient(t *testing.T, email string) string {
	t.Helper()
	result, err := h.service.Open(context.Background(), OpenInput{
		Role:       "client",
		AuthMethod: "password-pending",
		Email:      email,
		Password:   "correct horse battery",
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	return result.Token
}

// completeClient drives a client session to a committable state: one
// personal-info submission plus the required attachments. Attaching the
// documents completes the upload step on its own.
func (h *harness) completeClient(t *testing.T, token string) {
	t.Helper()
	ctx := context.Background()

	_, err := h.service.SubmitStep(ctx, token, StepPersonalInfo, clientPersonalPayload)
	require.NoError(t, err)

	for index, category := range []string{"identity-proof", "address-proof", "supplementary"} {
		_, err = h.service.AttachDocument(ctx, token, category, "blob-"+category+"-"+string(rune('a'+index)))
		require.NoError(t, err)
	}
}

// # Open

/*
TestOpen_RejectsAdmin verifies that the admin role can never self-register.
*/
func TestOpen_RejectsAdmin(t *testing.T) {
	h := newHarness(t)

	_, err := h.service.Open(context.Background(), OpenInput{
		Role:       "admin",
		AuthMethod: "password-pending",
		Email:      "root@getnomik.com",
		Password:   "supersecret",
	})

	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, "FORBIDDEN"))
}

/*
TestOpen_ReportsAllViolationsAtOnce verifies that a bad email and a short
password are reported together, not first-failure-only.
*/
func TestOpen_ReportsAllViolationsAtOnce(t *testing.T) {
	h := newHarness(t)

	_, err := h.service.Open(context.Background(), OpenInput{
		Role:       "client",
		AuthMethod: "password-pending",
		Email:      "not-an-email",
		Password:   "short",
	})

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "VALIDATION_ERROR", ae.Code)
	assert.Len(t, ae.Details, 2)
}

/*
TestOpen_DuplicateEmailFailsFast verifies the courtesy check against an
already-committed account at open.
*/
func TestOpen_DuplicateEmailFailsFast(t *testing.T) {
	h := newHarness(t)

	token := h.openClient(t, "taken@example.com")
	h.completeClient(t, token)
	_, err := h.service.Commit(context.Background(), token)
	require.NoError(t, err)

	_, err = h.service.Open(context.Background(), OpenInput{
		Role:       "client",
		AuthMethod: "password-pending",
		Email:      "Taken@Example.com",
		Password:   "another password",
	})

	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, "CONFLICT"))
}

/*
TestOpen_FederatedRequiresAssertion verifies the federated path rejects a
missing identity assertion.
*/
func TestOpen_FederatedRequiresAssertion(t *testing.T) {
	h := newHarness(t)

	_, err := h.service.Open(context.Background(), OpenInput{
		Role:       "client",
		AuthMethod: "federated",
	})

	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, "VALIDATION_ERROR"))
}

/*
TestOpen_FederatedNormalizesEmail verifies the asserted email is lowercased
before it becomes the session identity.
*/
func TestOpen_FederatedNormalizesEmail(t *testing.T) {
	h := newHarness(t)

	result, err := h.service.Open(context.Background(), OpenInput{
		Role:       "client",
		AuthMethod: "federated",
		Assertion: &accounts.FederatedAssertion{
			Provider: "google",
			Subject:  "sub-123",
			Email:    "Asha.Rao@GMail.com",
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "asha.rao@gmail.com", result.Snapshot.Email)
}

// # Step Submission

/*
TestSubmitStep_OutOfOrder verifies that skipping ahead in the flow is
rejected with the expected step named.
*/
func TestSubmitStep_OutOfOrder(t *testing.T) {
	h := newHarness(t)
	token := h.openClient(t, "asha@example.com")

	_, err := h.service.SubmitStep(context.Background(), token, StepDocumentUpload, nil)

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, CodeStepOutOfOrder, ae.Code)
	assert.Contains(t, ae.Message, StepPersonalInfo)
}

/*
TestSubmitStep_IdempotentResubmission verifies that submitting the same step
with the same payload twice yields the same snapshot.
*/
func TestSubmitStep_IdempotentResubmission(t *testing.T) {
	h := newHarness(t)
	token := h.openClient(t, "asha@example.com")
	ctx := context.Background()

	first, err := h.service.SubmitStep(ctx, token, StepPersonalInfo, clientPersonalPayload)
	require.NoError(t, err)

	second, err := h.service.SubmitStep(ctx, token, StepPersonalInfo, clientPersonalPayload)
	require.NoError(t, err)

	assert.Equal(t, first.CompletedSteps, second.CompletedSteps)
	assert.Equal(t, first.Fields, second.Fields)
	assert.Equal(t, first.NextStep, second.NextStep)
}

/*
TestSubmitStep_ConcurrentResubmission verifies parallel resubmissions of one
step are safe: every call works on its own copy of the draft, so none of
them can race another, and the step is recorded exactly once.
*/
func TestSubmitStep_ConcurrentResubmission(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	token := h.openClient(t, "asha@example.com")

	_, err := h.service.SubmitStep(ctx, token, StepPersonalInfo, clientPersonalPayload)
	require.NoError(t, err)

	const workers = 8
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for index := 0; index < workers; index++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.service.SubmitStep(ctx, token, StepPersonalInfo, clientPersonalPayload)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	for err := range results {
		assert.NoError(t, err)
	}

	snapshot, err := h.service.SubmitStep(ctx, token, StepPersonalInfo, clientPersonalPayload)
	require.NoError(t, err)
	assert.Equal(t, []string{StepPersonalInfo}, snapshot.CompletedSteps)
}

/*
TestSubmitStep_AfterAllStepsComplete verifies that an unknown step submitted
to a fully completed draft gets a message saying so, rather than an empty
"next expected step".
*/
func TestSubmitStep_AfterAllStepsComplete(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	token := h.openClient(t, "asha@example.com")
	h.completeClient(t, token)

	_, err := h.service.SubmitStep(ctx, token, "billing-info", nil)

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, CodeStepOutOfOrder, ae.Code)
	assert.Contains(t, ae.Message, "already complete")
	assert.NotContains(t, ae.Message, `""`)
}

/*
TestSubmitStep_ReportsAllViolations verifies that every violated field of a
payload is reported in one response.
*/
func TestSubmitStep_ReportsAllViolations(t *testing.T) {
	h := newHarness(t)
	token := h.openClient(t, "asha@example.com")

	_, err := h.service.SubmitStep(context.Background(), token, StepPersonalInfo, map[string]string{
		"firstName":   "Asha",
		"phoneNumber": "12345", // bad format
		"pincode":     "56",    // bad format
		// lastName, address, city, state missing
	})

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "VALIDATION_ERROR", ae.Code)
	assert.Len(t, ae.Details, 6)
}

/*
TestSubmitStep_RejectsUnknownFields verifies fields outside the role policy
are not silently stored.
*/
func TestSubmitStep_RejectsUnknownFields(t *testing.T) {
	h := newHarness(t)
	token := h.openClient(t, "asha@example.com")

	payload := map[string]string{"favoriteColor": "blue"}
	for name, value := range clientPersonalPayload {
		payload[name] = value
	}

	_, err := h.service.SubmitStep(context.Background(), token, StepPersonalInfo, payload)

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	require.Len(t, ae.Details, 1)
	assert.Equal(t, "favoriteColor", ae.Details[0].Field)
}

// # Commit

/*
TestClientRegistration_FullFlow walks the complete client path from open to
commit and checks the resulting account.
*/
func TestClientRegistration_FullFlow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	token := h.openClient(t, "Asha@Example.com")
	h.completeClient(t, token)

	account, err := h.service.Commit(ctx, token)
	require.NoError(t, err)

	assert.Equal(t, sec.RoleClient, account.Role)
	assert.Equal(t, "asha@example.com", account.Email)
	assert.Equal(t, "Asha", account.Profile["firstName"])
	assert.Equal(t, "560001", account.Profile["pincode"])
	assert.Len(t, account.Documents, 3)
	assert.True(t, sec.CheckPasswordHash("correct horse battery", account.PasswordHash))

	// The account is durably findable.
	stored, err := h.accounts.FindByEmail(ctx, "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, account.ID, stored.ID)

	// The session is terminal: a second commit cannot produce a second account.
	_, err = h.service.Commit(ctx, token)
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, CodeSessionNotFound))
}

/*
TestAdvocateRegistration_FullFlow walks the advocate path, including the
professional-info step and its document categories.
*/
func TestAdvocateRegistration_FullFlow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	result, err := h.service.Open(ctx, OpenInput{
		Role:       "advocate",
		AuthMethod: "password-pending",
		Email:      "meera@chambers.in",
		Password:   "objection sustained",
	})
	require.NoError(t, err)
	token := result.Token

	_, err = h.service.SubmitStep(ctx, token, StepPersonalInfo, advocatePersonalPayload)
	require.NoError(t, err)
	_, err = h.service.SubmitStep(ctx, token, StepProfessionalInfo, advocateProfessionalPayload)
	require.NoError(t, err)

	_, err = h.service.AttachDocument(ctx, token, "identity-proof", "blob-id-1")
	require.NoError(t, err)
	_, err = h.service.AttachDocument(ctx, token, "advocate-verification", "blob-bar-1")
	require.NoError(t, err)

	account, err := h.service.Commit(ctx, token)
	require.NoError(t, err)

	assert.Equal(t, sec.RoleAdvocate, account.Role)
	assert.Equal(t, "KAR/1234/2012", account.Profile["barCouncilNumber"])
	assert.Len(t, account.Documents, 2)
}

/*
TestAdvocate_ExperienceOutOfRange verifies numeric policy bounds on the
professional-info step.
*/
func TestAdvocate_ExperienceOutOfRange(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	result, err := h.service.Open(ctx, OpenInput{
		Role:       "advocate",
		AuthMethod: "password-pending",
		Email:      "meera@chambers.in",
		Password:   "objection sustained",
	})
	require.NoError(t, err)

	_, err = h.service.SubmitStep(ctx, result.Token, StepPersonalInfo, advocatePersonalPayload)
	require.NoError(t, err)

	payload := map[string]string{}
	for name, value := range advocateProfessionalPayload {
		payload[name] = value
	}
	payload["experience"] = "75"

	_, err = h.service.SubmitStep(ctx, result.Token, StepProfessionalInfo, payload)

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	require.Len(t, ae.Details, 1)
	assert.Equal(t, "experience", ae.Details[0].Field)
}

/*
TestCommit_IncompleteSteps verifies commit names the missing steps and
leaves the draft repairable.
*/
func TestCommit_IncompleteSteps(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	token := h.openClient(t, "asha@example.com")

	_, err := h.service.Commit(ctx, token)
	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, CodeIncompleteSteps, ae.Code)
	assert.Contains(t, ae.Message, StepPersonalInfo)

	// The failed commit did not destroy the draft.
	_, err = h.service.SubmitStep(ctx, token, StepPersonalInfo, clientPersonalPayload)
	assert.NoError(t, err)
}

/*
TestCommit_MissingDocuments verifies commit names every absent required
category.
*/
func TestCommit_MissingDocuments(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	token := h.openClient(t, "asha@example.com")

	_, err := h.service.SubmitStep(ctx, token, StepPersonalInfo, clientPersonalPayload)
	require.NoError(t, err)

	_, err = h.service.AttachDocument(ctx, token, "identity-proof", "blob-1")
	require.NoError(t, err)

	_, err = h.service.Commit(ctx, token)
	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, CodeMissingDocuments, ae.Code)
	assert.Contains(t, ae.Message, "address-proof")
	assert.Contains(t, ae.Message, "supplementary")
}

/*
TestCommit_ExactlyOnceUnderConcurrency fires parallel commits at one
completed session and requires exactly one account.
*/
func TestCommit_ExactlyOnceUnderConcurrency(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	token := h.openClient(t, "asha@example.com")
	h.completeClient(t, token)

	const attempts = 16
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.service.Commit(ctx, token)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes := 0
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		assert.True(t, apperr.HasCode(err, CodeSessionNotFound))
	}
	assert.Equal(t, 1, successes)

	_, err := h.accounts.FindByEmail(ctx, "asha@example.com")
	assert.NoError(t, err)
}

/*
TestCommit_ConcurrentDuplicateEmail completes two sessions under the same
email and verifies exactly one commit wins the uniqueness race.
*/
func TestCommit_ConcurrentDuplicateEmail(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	tokenOne := h.openClient(t, "asha@example.com")
	tokenTwo := h.openClient(t, "asha@example.com")
	h.completeClient(t, tokenOne)
	h.completeClient(t, tokenTwo)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for _, token := range []string{tokenOne, tokenTwo} {
		wg.Add(1)
		go func(token string) {
			defer wg.Done()
			_, err := h.service.Commit(ctx, token)
			results <- err
		}(token)
	}
	wg.Wait()
	close(results)

	successes, conflicts := 0, 0
	for err := range results {
		switch {
		case err == nil:
			successes++
		case apperr.HasCode(err, "CONFLICT"):
			conflicts++
		default:
			t.Fatalf("unexpected commit error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, conflicts)
}

/*
TestCommit_PasswordPolicyRaised verifies that a draft opened under a weaker
password policy cannot commit once the minimum is raised.
*/
func TestCommit_PasswordPolicyRaised(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	token := h.openClient(t, "asha@example.com")
	h.completeClient(t, token)

	h.service.passwordMinLength = 40

	_, err := h.service.Commit(ctx, token)
	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "VALIDATION_ERROR", ae.Code)
	require.Len(t, ae.Details, 1)
	assert.Equal(t, accounts.FieldPassword, ae.Details[0].Field)
}

// # Expiry & Abandon

/*
TestSession_ExpiresAfterInactivity verifies the lazy expiry check one tick
past the deadline.
*/
func TestSession_ExpiresAfterInactivity(t *testing.T) {
	h := newHarness(t)
	token := h.openClient(t, "asha@example.com")

	h.clock.Advance(30*time.Minute + time.Second)

	_, err := h.service.SubmitStep(context.Background(), token, StepPersonalInfo, clientPersonalPayload)
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, CodeSessionNotFound))
}

/*
TestSession_ActivityRefreshesDeadline verifies each successful operation
restarts the inactivity window.
*/
func TestSession_ActivityRefreshesDeadline(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	token := h.openClient(t, "asha@example.com")

	h.clock.Advance(20 * time.Minute)
	_, err := h.service.SubmitStep(ctx, token, StepPersonalInfo, clientPersonalPayload)
	require.NoError(t, err)

	// 40 minutes after open, but only 20 since the last activity.
	h.clock.Advance(20 * time.Minute)
	_, err = h.service.SubmitStep(ctx, token, StepDocumentUpload, nil)
	assert.NoError(t, err)
}

/*
TestAbandon_TerminalAndIdempotent verifies abandon destroys the draft and
tolerates unknown tokens.
*/
func TestAbandon_TerminalAndIdempotent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	token := h.openClient(t, "asha@example.com")

	require.NoError(t, h.service.Abandon(ctx, token))
	require.NoError(t, h.service.Abandon(ctx, token))
	require.NoError(t, h.service.Abandon(ctx, "never-issued"))

	_, err := h.service.SubmitStep(ctx, token, StepPersonalInfo, clientPersonalPayload)
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, CodeSessionNotFound))
}

// # Documents

/*
TestAttachDocument_ReplacesCategory verifies re-attaching a category keeps
only the latest handle.
*/
func TestAttachDocument_ReplacesCategory(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	token := h.openClient(t, "asha@example.com")

	_, err := h.service.AttachDocument(ctx, token, "identity-proof", "blob-old")
	require.NoError(t, err)

	snapshot, err := h.service.AttachDocument(ctx, token, "identity-proof", "blob-new")
	require.NoError(t, err)

	assert.Equal(t, "blob-new", snapshot.Documents[documents.CategoryIdentityProof])
	assert.Len(t, snapshot.Documents, 1)
}

/*
TestAttachDocument_CompletesUploadStep verifies that attaching a document
is itself the upload step: a client who submits personal info and attaches
the required documents can commit without ever calling SubmitStep for the
field-less upload step.
*/
func TestAttachDocument_CompletesUploadStep(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	token := h.openClient(t, "asha@example.com")

	_, err := h.service.SubmitStep(ctx, token, StepPersonalInfo, clientPersonalPayload)
	require.NoError(t, err)

	var snapshot *Snapshot
	for _, category := range []string{"identity-proof", "address-proof", "supplementary"} {
		snapshot, err = h.service.AttachDocument(ctx, token, category, "blob-"+category)
		require.NoError(t, err)
	}

	assert.Contains(t, snapshot.CompletedSteps, StepDocumentUpload)
	assert.Empty(t, snapshot.NextStep)

	account, err := h.service.Commit(ctx, token)
	require.NoError(t, err)
	assert.Len(t, account.Documents, 3)
}

/*
TestAttachDocument_UnknownCategory verifies category names outside the
policy are rejected.
*/
func TestAttachDocument_UnknownCategory(t *testing.T) {
	h := newHarness(t)
	token := h.openClient(t, "asha@example.com")

	_, err := h.service.AttachDocument(context.Background(), token, "tax-return", "blob-1")

	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, "VALIDATION_ERROR"))
}

/*
TestCommit_ClearsOrphanTracking verifies committed handles leave the orphan
tracker while abandoned ones stay reclaimable.
*/
func TestCommit_ClearsOrphanTracking(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	token := h.openClient(t, "asha@example.com")
	h.completeClient(t, token)

	_, err := h.service.Commit(ctx, token)
	require.NoError(t, err)

	reclaimed, err := h.tracker.Reclaim(ctx, h.clock.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, reclaimed)
}
