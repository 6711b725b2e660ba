// Package auth implements device identity for the expense API. A device
// registers once with a display name and a locally generated secret; the
// server stores only a bcrypt hash and hands out short-lived session tokens.
// Accounts, invites and the member directory proper live in the wider app.
package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/aroray/settleup/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("unknown member or wrong device secret")
	ErrWeakSecret         = errors.New("device secret must be at least 8 characters")
)

// MemberStorage defines the persistence the authenticator needs. Keeping it
// narrow lets the auth package stay independent of the storage implementation.
type MemberStorage interface {
	CreateMember(ctx context.Context, m *models.Member) error
	GetMember(ctx context.Context, memberID string) (*models.Member, error)
}

// DeviceAuthenticator registers devices and verifies their secrets with
// bcrypt.
type DeviceAuthenticator struct {
	storage MemberStorage
}

// NewDeviceAuthenticator creates a device-secret authenticator.
func NewDeviceAuthenticator(storage MemberStorage) *DeviceAuthenticator {
	return &DeviceAuthenticator{storage: storage}
}

// ValidateSecret checks the secret against minimum requirements.
func (a *DeviceAuthenticator) ValidateSecret(secret string) error {
	if len(secret) < 8 {
		return ErrWeakSecret
	}
	return nil
}

// Register creates a member record for a new device.
func (a *DeviceAuthenticator) Register(ctx context.Context, displayName, secret string) (*models.Member, error) {
	if err := a.ValidateSecret(secret); err != nil {
		return nil, err
	}
	if displayName == "" {
		return nil, errors.New("display name is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash device secret: %w", err)
	}

	member := &models.Member{
		DisplayName: displayName,
		SecretHash:  string(hash),
	}
	if err := a.storage.CreateMember(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to create member: %w", err)
	}
	return member, nil
}

// Authenticate verifies the member ID and device secret, returning the member
// if valid.
func (a *DeviceAuthenticator) Authenticate(ctx context.Context, memberID, secret string) (*models.Member, error) {
	member, err := a.storage.GetMember(ctx, memberID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(member.SecretHash), []byte(secret)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return member, nil
}
