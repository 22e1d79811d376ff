package directory

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
)

// TrustedSourceApp is the back-office caller exempt from device checks
const TrustedSourceApp = "banksphere"

// Request headers access checks read
const (
	AuthorizationHeader = "Authorization"
	ClientIDHeader      = "client-id"
	SourceAppHeader     = "source-app"
)

/*
AccessController answers whether a request may perform a set of actions. A
request carries a bearer token naming the user; the user must be active, in
an unblocked organization, and calling from their logged-in device unless the
request comes from the trusted back-office app. Owner roles and empty action
lists bypass the per-action permission check
*/
type AccessController struct {
	tokens    TokenVerifier
	directory Directory
}

// NewAccessController returns an *AccessController over the given stores
func NewAccessController(tokens TokenVerifier, directory Directory) *AccessController {
	return &AccessController{
		tokens:    tokens,
		directory: directory,
	}
}

// bearerToken strips an optional Bearer prefix from the authorization value
func bearerToken(header string) string {
	pieces := strings.Split(header, "Bearer ")
	return pieces[len(pieces)-1]
}

// currentUser resolves the request's bearer token to a directory user
func (a *AccessController) currentUser(ctx context.Context, headers http.Header) (User, error) {
	authHeader := headers.Get(AuthorizationHeader)
	if authHeader == "" {
		return User{}, fmt.Errorf("%w: Authorization header missing", ErrUnauthorized)
	}

	userID, err := a.tokens.Verify(bearerToken(authHeader))
	if err != nil {
		return User{}, err
	}

	user, err := a.directory.UserByID(ctx, userID)
	if err == ErrUserNotFound {
		return User{}, fmt.Errorf("%w: User not found", ErrUnauthorized)
	} else if err != nil {
		return User{}, fmt.Errorf("Failed to look up user %s: %w", userID, err)
	}
	return user, nil
}

// checkDevice enforces the single-device login rule for untrusted callers
func (a *AccessController) checkDevice(ctx context.Context, headers http.Header, user User) error {
	clientID := headers.Get(ClientIDHeader)
	if clientID == "" {
		return fmt.Errorf("%w: No ClientId provided", ErrUnauthorized)
	}

	deviceID, err := a.directory.DeviceIDByClientID(ctx, clientID)
	if err == ErrDeviceNotFound {
		return fmt.Errorf("%w: Device not found", ErrUnauthorized)
	} else if err != nil {
		return fmt.Errorf("Failed to look up device %s: %w", clientID, err)
	}

	elsewhere, err := a.directory.HasSessionElsewhere(ctx, user.ID, deviceID)
	if err != nil {
		return fmt.Errorf("Failed to look up sessions for user %s: %w", user.ID, err)
	}
	if elsewhere {
		if err = a.directory.ClearRememberMe(ctx, user.ID); err != nil {
			log.Printf("Failed to clear remembered login for user %s: %v\n", user.ID, err)
		}
		return fmt.Errorf("%w: Currently logged in to another device", ErrForbidden)
	}
	return nil
}

/*
Authorize resolves the request's user and applies the access rules for the
wanted actions. Failures wrap ErrUnauthorized or ErrForbidden; any other
error is an infrastructure failure
*/
func (a *AccessController) Authorize(ctx context.Context, headers http.Header, actions ...string) (User, error) {
	user, err := a.currentUser(ctx, headers)
	if err != nil {
		return User{}, err
	}

	if user.Status == UserStatusDeleted || user.Status == UserStatusDisabled {
		return User{}, fmt.Errorf("%w: User account is not active", ErrUnauthorized)
	}
	if user.OrganizationStatus == OrganizationStatusBlocked {
		return User{}, fmt.Errorf("%w: User's organization is blocked", ErrUnauthorized)
	}

	if headers.Get(SourceAppHeader) != TrustedSourceApp {
		if err = a.checkDevice(ctx, headers, user); err != nil {
			return User{}, err
		}
	}

	isOwner := user.Role.Name == RoleOwner && user.Role.Type == RoleTypeDefault
	if isOwner || len(actions) == 0 || user.Role.Allows(actions...) {
		return user, nil
	}
	return User{}, fmt.Errorf("%w: Access Denied", ErrForbidden)
}
