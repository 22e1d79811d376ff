package directory

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

// mockTokenVerifier is a testing mock for TokenVerifier
type mockTokenVerifier struct {
	subject string
}

func (m *mockTokenVerifier) Verify(token string) (string, error) {
	return m.subject, nil
}

const fetchReportsAction = "fetch_expense_reports"

func memberUser() User {
	return User{
		ID:                 "user-1",
		Status:             "ACTIVE",
		OrganizationStatus: "ACTIVE",
		Role: Role{
			Name: "member",
			Type: "custom",
			Permissions: []Permission{
				{Name: "reports", Actions: []string{fetchReportsAction}},
			},
		},
	}
}

// memberDirectory holds user-1 with a registered device and one live session on it
func memberDirectory() *MockDirectory {
	dir := NewMockDirectory()
	dir.Users["user-1"] = memberUser()
	dir.Devices["client-1"] = "device-1"
	dir.Sessions["user-1"] = []string{"device-1"}
	return dir
}

func requestHeaders(token string, clientID string, sourceApp string) http.Header {
	headers := http.Header{}
	if token != "" {
		headers.Set(AuthorizationHeader, "Bearer "+token)
	}
	if clientID != "" {
		headers.Set(ClientIDHeader, clientID)
	}
	if sourceApp != "" {
		headers.Set(SourceAppHeader, sourceApp)
	}
	return headers
}

func TestAuthorizeGrants(t *testing.T) {
	grants := []struct {
		name    string
		prepare func(*MockDirectory)
		headers http.Header
		actions []string
	}{
		{"permitted action from own device", nil,
			requestHeaders("token", "client-1", ""), []string{fetchReportsAction}},
		{"trusted app skips device checks", func(dir *MockDirectory) {
			dir.Devices = map[string]string{}
		}, requestHeaders("token", "", TrustedSourceApp), []string{fetchReportsAction}},
		{"owner role bypasses action checks", func(dir *MockDirectory) {
			user := dir.Users["user-1"]
			user.Role = Role{Name: RoleOwner, Type: RoleTypeDefault}
			dir.Users["user-1"] = user
		}, requestHeaders("token", "client-1", ""), []string{"manage_everything"}},
		{"no actions wanted", nil,
			requestHeaders("token", "client-1", ""), nil},
	}

	for _, grant := range grants {
		dir := memberDirectory()
		if grant.prepare != nil {
			grant.prepare(dir)
		}
		access := NewAccessController(&mockTokenVerifier{subject: "user-1"}, dir)

		user, err := access.Authorize(context.Background(), grant.headers, grant.actions...)
		if err != nil {
			t.Fatalf("Failed to authorize %s: %v", grant.name, err)
		}
		assert.Equal(t, user.ID, "user-1", "Authorize returned the wrong user for %s", grant.name)
	}
}

func TestAuthorizeRejections(t *testing.T) {
	rejections := []struct {
		name    string
		prepare func(*MockDirectory)
		headers http.Header
		class   error
		message string
	}{
		{"missing authorization header", nil,
			requestHeaders("", "client-1", ""), ErrUnauthorized, "Authorization header missing"},
		{"unknown user", func(dir *MockDirectory) {
			delete(dir.Users, "user-1")
		}, requestHeaders("token", "client-1", ""), ErrUnauthorized, "User not found"},
		{"deleted user", func(dir *MockDirectory) {
			user := dir.Users["user-1"]
			user.Status = UserStatusDeleted
			dir.Users["user-1"] = user
		}, requestHeaders("token", "client-1", ""), ErrUnauthorized, "User account is not active"},
		{"disabled user", func(dir *MockDirectory) {
			user := dir.Users["user-1"]
			user.Status = UserStatusDisabled
			dir.Users["user-1"] = user
		}, requestHeaders("token", "client-1", ""), ErrUnauthorized, "User account is not active"},
		{"blocked organization", func(dir *MockDirectory) {
			user := dir.Users["user-1"]
			user.OrganizationStatus = OrganizationStatusBlocked
			dir.Users["user-1"] = user
		}, requestHeaders("token", "client-1", ""), ErrUnauthorized, "User's organization is blocked"},
		{"missing client id", nil,
			requestHeaders("token", "", ""), ErrUnauthorized, "No ClientId provided"},
		{"unknown device", nil,
			requestHeaders("token", "client-9", ""), ErrUnauthorized, "Device not found"},
		{"session on another device", func(dir *MockDirectory) {
			dir.Sessions["user-1"] = []string{"device-2"}
		}, requestHeaders("token", "client-1", ""), ErrForbidden, "Currently logged in to another device"},
		{"unpermitted action", func(dir *MockDirectory) {
			user := dir.Users["user-1"]
			user.Role.Permissions = []Permission{{Name: "budgets", Actions: []string{"manage_budgets"}}}
			dir.Users["user-1"] = user
		}, requestHeaders("token", "client-1", ""), ErrForbidden, "Access Denied"},
	}

	for _, rejection := range rejections {
		dir := memberDirectory()
		if rejection.prepare != nil {
			rejection.prepare(dir)
		}
		access := NewAccessController(&mockTokenVerifier{subject: "user-1"}, dir)

		_, err := access.Authorize(context.Background(), rejection.headers, fetchReportsAction)
		if err == nil {
			t.Fatalf("Should have rejected %s", rejection.name)
		}
		if !errors.Is(err, rejection.class) {
			t.Fatalf("Rejected %s with the wrong error class: %v", rejection.name, err)
		}
		assert.Contains(t, err.Error(), rejection.message, "Wrong rejection for %s", rejection.name)
	}
}

func TestAuthorizeSessionConflictClearsRememberedLogin(t *testing.T) {
	dir := memberDirectory()
	dir.Sessions["user-1"] = []string{"device-2"}
	access := NewAccessController(&mockTokenVerifier{subject: "user-1"}, dir)

	_, err := access.Authorize(context.Background(), requestHeaders("token", "client-1", ""), fetchReportsAction)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("Session conflict should be forbidden, got %v", err)
	}
	assert.Equal(t, dir.Cleared, []string{"user-1"}, "Remembered login was not cleared on conflict")
}
