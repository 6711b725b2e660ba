package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aroray/settleup/internal/models"
)

// memoryMembers is an in-memory MemberStorage for tests.
type memoryMembers struct {
	members map[string]*models.Member
}

func newMemoryMembers() *memoryMembers {
	return &memoryMembers{members: make(map[string]*models.Member)}
}

func (s *memoryMembers) CreateMember(_ context.Context, m *models.Member) error {
	if m.ID == "" {
		m.ID = "m1"
	}
	s.members[m.ID] = m
	return nil
}

func (s *memoryMembers) GetMember(_ context.Context, memberID string) (*models.Member, error) {
	m, ok := s.members[memberID]
	if !ok {
		return nil, errors.New("not found")
	}
	return m, nil
}

func TestRegisterAndAuthenticate(t *testing.T) {
	a := NewDeviceAuthenticator(newMemoryMembers())
	ctx := context.Background()

	member, err := a.Register(ctx, "alice", "super secret phrase")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if member.ID == "" {
		t.Error("member ID not assigned")
	}
	if member.SecretHash == "super secret phrase" {
		t.Error("secret stored in the clear")
	}

	got, err := a.Authenticate(ctx, member.ID, "super secret phrase")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if got.DisplayName != "alice" {
		t.Errorf("display name = %s, want alice", got.DisplayName)
	}

	if _, err := a.Authenticate(ctx, member.ID, "wrong secret!"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong secret err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := a.Authenticate(ctx, "nobody", "super secret phrase"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown member err = %v, want ErrInvalidCredentials", err)
	}
}

func TestRegisterRejectsWeakSecret(t *testing.T) {
	a := NewDeviceAuthenticator(newMemoryMembers())

	if _, err := a.Register(context.Background(), "alice", "short"); !errors.Is(err, ErrWeakSecret) {
		t.Errorf("weak secret err = %v, want ErrWeakSecret", err)
	}
}

func TestJWTRoundTrip(t *testing.T) {
	mgr := NewJWTManager("test-secret", time.Hour)
	member := &models.Member{ID: "m1", DisplayName: "alice"}

	token, err := mgr.Generate(member)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := mgr.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.MemberID != "m1" {
		t.Errorf("member ID = %s, want m1", claims.MemberID)
	}
}

func TestJWTRejectsTampering(t *testing.T) {
	mgr := NewJWTManager("test-secret", time.Hour)
	other := NewJWTManager("other-secret", time.Hour)

	token, err := other.Generate(&models.Member{ID: "m1"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if _, err := mgr.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("foreign token err = %v, want ErrInvalidToken", err)
	}

	if _, err := mgr.Validate("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage token err = %v, want ErrInvalidToken", err)
	}
}

func TestJWTRejectsExpired(t *testing.T) {
	mgr := NewJWTManager("test-secret", -time.Minute)

	token, err := mgr.Generate(&models.Member{ID: "m1"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if _, err := mgr.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token err = %v, want ErrInvalidToken", err)
	}
}
