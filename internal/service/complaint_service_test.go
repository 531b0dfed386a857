package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/civiceye/internal/config"
	"github.com/spec-kit/civiceye/internal/domain"
	apperrors "github.com/spec-kit/civiceye/pkg/util"
)

var displayIDPattern = regexp.MustCompile(`^CE-\d{4}-\d{4}$`)

func newComplaintServiceForTest(policy config.PolicyConfig) (*ComplaintService, *fakeComplaintRepo, *fakeDepartmentRepo) {
	complaints := newFakeComplaintRepo()
	departments := newFakeDepartmentRepo()
	svc := NewComplaintService(policy, ComplaintDependencies{
		ComplaintRepo:  complaints,
		TrailRepo:      &fakeTrailRepo{complaints: complaints},
		DepartmentRepo: departments,
	})
	return svc, complaints, departments
}

func submitInput() ComplaintCreateInput {
	return ComplaintCreateInput{
		FullName:      "Ada Citizen",
		Email:         "ada@example.com",
		Location:      "Main St",
		ComplaintType: "street_light",
		Description:   "Lamp flickering all night",
	}
}

func TestSubmitDefaults(t *testing.T) {
	svc, _, _ := newComplaintServiceForTest(config.PolicyConfig{})

	complaint, err := svc.Submit(context.Background(), 1, submitInput())
	require.NoError(t, err)

	assert.Equal(t, domain.ComplaintStatusPending, complaint.Status)
	assert.Equal(t, domain.ComplaintPriorityMedium, complaint.Priority)
	assert.Regexp(t, displayIDPattern, complaint.DisplayID)
	assert.NotZero(t, complaint.ID)
}

func TestSubmitUnknownDepartment(t *testing.T) {
	svc, _, _ := newComplaintServiceForTest(config.PolicyConfig{})

	deptID := int64(42)
	input := submitInput()
	input.DepartmentID = &deptID

	_, err := svc.Submit(context.Background(), 1, input)
	requireDomainCode(t, err, "VALIDATION_FAILED")
}

func TestSubmitPreservesEvidenceOrder(t *testing.T) {
	svc, repo, _ := newComplaintServiceForTest(config.PolicyConfig{})

	input := submitInput()
	input.Images = []string{"a.png", "b.jpg", "c.gif"}

	complaint, err := svc.Submit(context.Background(), 1, input)
	require.NoError(t, err)

	stored, err := repo.GetByID(context.Background(), complaint.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.png", "b.jpg", "c.gif"}, stored.Images)
}

func TestSubmitConcurrentUniqueDisplayIDs(t *testing.T) {
	svc, _, _ := newComplaintServiceForTest(config.PolicyConfig{})

	const n = 50
	ids := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			complaint, err := svc.Submit(context.Background(), userID, submitInput())
			if err != nil {
				t.Error(err)
				return
			}
			ids <- complaint.DisplayID
		}(int64(i + 1))
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool, n)
	for id := range ids {
		assert.Regexp(t, displayIDPattern, id)
		assert.False(t, seen[id], "duplicate display id %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}

func TestUpdateStatusAppendsTrail(t *testing.T) {
	svc, _, _ := newComplaintServiceForTest(config.PolicyConfig{})
	authority := &domain.Authority{ID: 7}

	complaint, err := svc.Submit(context.Background(), 1, submitInput())
	require.NoError(t, err)

	updated, entry, err := svc.UpdateStatus(context.Background(), authority, complaint.ID, "inprogress", "Crew dispatched")
	require.NoError(t, err)
	assert.Equal(t, domain.ComplaintStatusInProgress, updated.Status)
	assert.Equal(t, "Crew dispatched", entry.Message)
	assert.Equal(t, domain.ComplaintStatusInProgress, entry.Status)

	fetched, trail, err := svc.Get(context.Background(), complaint.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ComplaintStatusInProgress, fetched.Status)
	require.Len(t, trail, 1)
	assert.Equal(t, "Crew dispatched", trail[0].Message)
}

func TestUpdateStatusDefaultMessage(t *testing.T) {
	svc, _, _ := newComplaintServiceForTest(config.PolicyConfig{})
	authority := &domain.Authority{ID: 7}

	complaint, err := svc.Submit(context.Background(), 1, submitInput())
	require.NoError(t, err)

	_, entry, err := svc.UpdateStatus(context.Background(), authority, complaint.ID, "resolved", "   ")
	require.NoError(t, err)
	assert.Equal(t, "Status changed to resolved", entry.Message)
}

func TestUpdateStatusRejectsUnknownValue(t *testing.T) {
	svc, _, _ := newComplaintServiceForTest(config.PolicyConfig{})
	authority := &domain.Authority{ID: 7}

	complaint, err := svc.Submit(context.Background(), 1, submitInput())
	require.NoError(t, err)

	_, _, err = svc.UpdateStatus(context.Background(), authority, complaint.ID, "closed", "")
	requireDomainCode(t, err, "VALIDATION_FAILED")
}

func TestUpdateStatusRejectsBackwardTransition(t *testing.T) {
	svc, _, _ := newComplaintServiceForTest(config.PolicyConfig{})
	authority := &domain.Authority{ID: 7}

	complaint, err := svc.Submit(context.Background(), 1, submitInput())
	require.NoError(t, err)

	_, _, err = svc.UpdateStatus(context.Background(), authority, complaint.ID, "resolved", "")
	require.NoError(t, err)

	_, _, err = svc.UpdateStatus(context.Background(), authority, complaint.ID, "pending", "")
	requireDomainCode(t, err, "VALIDATION_FAILED")

	fetched, _, err := svc.Get(context.Background(), complaint.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ComplaintStatusResolved, fetched.Status)
}

func TestUpdateStatusNotFound(t *testing.T) {
	svc, _, _ := newComplaintServiceForTest(config.PolicyConfig{})
	authority := &domain.Authority{ID: 7}

	_, _, err := svc.UpdateStatus(context.Background(), authority, 999, "inprogress", "")
	requireDomainCode(t, err, "NOT_FOUND")
}

func TestUpdateStatusWithoutAuthority(t *testing.T) {
	svc, _, _ := newComplaintServiceForTest(config.PolicyConfig{})

	_, _, err := svc.UpdateStatus(context.Background(), nil, 1, "inprogress", "")
	requireDomainCode(t, err, "FORBIDDEN")
}

func TestUpdateStatusDepartmentScoping(t *testing.T) {
	svc, _, departments := newComplaintServiceForTest(config.PolicyConfig{ScopeAuthorityToDepartment: true})

	roads := &domain.Department{Name: "Roads", Place: "City", Pincode: "560001", Email: "roads@example.com", PhoneNumber: "9876543210", Description: "Road works"}
	water := &domain.Department{Name: "Water", Place: "City", Pincode: "560002", Email: "water@example.com", PhoneNumber: "9876543211", Description: "Water supply"}
	require.NoError(t, departments.Create(context.Background(), roads))
	require.NoError(t, departments.Create(context.Background(), water))

	input := submitInput()
	input.DepartmentID = &roads.ID
	complaint, err := svc.Submit(context.Background(), 1, input)
	require.NoError(t, err)

	outsider := &domain.Authority{ID: 5, DepartmentID: &water.ID}
	_, _, err = svc.UpdateStatus(context.Background(), outsider, complaint.ID, "inprogress", "")
	requireDomainCode(t, err, "FORBIDDEN")

	insider := &domain.Authority{ID: 6, DepartmentID: &roads.ID}
	_, _, err = svc.UpdateStatus(context.Background(), insider, complaint.ID, "inprogress", "")
	require.NoError(t, err)

	// authorities without a department keep unrestricted rights
	unbound := &domain.Authority{ID: 7}
	_, _, err = svc.UpdateStatus(context.Background(), unbound, complaint.ID, "resolved", "")
	require.NoError(t, err)
}

func TestUpdateStatusTrailFailureLeavesStatusUnchanged(t *testing.T) {
	svc, repo, _ := newComplaintServiceForTest(config.PolicyConfig{})
	authority := &domain.Authority{ID: 7}

	complaint, err := svc.Submit(context.Background(), 1, submitInput())
	require.NoError(t, err)

	repo.failTrail = true
	_, _, err = svc.UpdateStatus(context.Background(), authority, complaint.ID, "inprogress", "")
	require.Error(t, err)

	fetched, trail, err := svc.Get(context.Background(), complaint.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ComplaintStatusPending, fetched.Status)
	assert.Empty(t, trail)
}

func TestHistoryForUnknownComplaint(t *testing.T) {
	svc, _, _ := newComplaintServiceForTest(config.PolicyConfig{})

	_, err := svc.HistoryFor(context.Background(), 404)
	requireDomainCode(t, err, "NOT_FOUND")
}

func TestHistoryForOrdersOldestFirst(t *testing.T) {
	svc, _, _ := newComplaintServiceForTest(config.PolicyConfig{})
	authority := &domain.Authority{ID: 7}

	complaint, err := svc.Submit(context.Background(), 1, submitInput())
	require.NoError(t, err)
	_, _, err = svc.UpdateStatus(context.Background(), authority, complaint.ID, "inprogress", "first")
	require.NoError(t, err)
	_, _, err = svc.UpdateStatus(context.Background(), authority, complaint.ID, "resolved", "second")
	require.NoError(t, err)

	trail, err := svc.HistoryFor(context.Background(), complaint.ID)
	require.NoError(t, err)
	require.Len(t, trail, 2)
	assert.Equal(t, "first", trail[0].Message)
	assert.Equal(t, "second", trail[1].Message)
}

func TestListFiltering(t *testing.T) {
	svc, _, _ := newComplaintServiceForTest(config.PolicyConfig{})
	authority := &domain.Authority{ID: 7}

	var resolvedID int64
	for i := 0; i < 3; i++ {
		input := submitInput()
		input.Description = fmt.Sprintf("issue %d", i)
		complaint, err := svc.Submit(context.Background(), int64(i+1), input)
		require.NoError(t, err)
		if i == 0 {
			resolvedID = complaint.ID
		}
	}
	_, _, err := svc.UpdateStatus(context.Background(), authority, resolvedID, "resolved", "")
	require.NoError(t, err)

	resolved := domain.ComplaintStatusResolved
	got, err := svc.List(context.Background(), ComplaintListFilter{Status: &resolved})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, resolvedID, got[0].ID)

	userID := int64(2)
	got, err = svc.List(context.Background(), ComplaintListFilter{UserID: &userID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, userID, got[0].UserID)
}

func requireDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr), "expected DomainError, got %T: %v", err, err)
	assert.Equal(t, code, domainErr.Code)
}
