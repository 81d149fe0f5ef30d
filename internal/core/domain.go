package core

import (
	"errors"
	"strings"
	"time"
)

const (
	// Invitation statuses reported by the backend. PENDING is the only
	// non-terminal state.
	InvitationPending   InvitationStatus = "PENDING"
	InvitationAccepted  InvitationStatus = "ACCEPTED"
	InvitationCancelled InvitationStatus = "CANCELLED"
	InvitationExpired   InvitationStatus = "EXPIRED"
)

const (
	RoleOwner  MemberRole = "OWNER"
	RoleMember MemberRole = "MEMBER"
)

type (
	InvitationStatus string

	MemberRole string

	Money struct {
		Cents int64 `json:"cents"`
	}

	// User is the authenticated identity as reported by the session provider.
	User struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}

	Family struct {
		UUID      string    `json:"uuid"`
		Name      string    `json:"name"`
		CreatedAt time.Time `json:"createdAt"`
	}

	Member struct {
		UserID   string     `json:"userId"`
		Name     string     `json:"name"`
		Email    string     `json:"email"`
		Role     MemberRole `json:"role"`
		JoinedAt time.Time  `json:"joinedAt"`
	}

	Category struct {
		UUID string `json:"uuid"`
		Name string `json:"name"`
		Icon string `json:"icon,omitempty"`
	}

	Expense struct {
		UUID         string    `json:"uuid"`
		Description  string    `json:"description"`
		Amount       Money     `json:"amount"`
		CategoryUUID string    `json:"categoryUuid"`
		SpentAt      time.Time `json:"spentAt"`
	}

	Income struct {
		UUID        string    `json:"uuid"`
		Description string    `json:"description"`
		Amount      Money     `json:"amount"`
		ReceivedAt  time.Time `json:"receivedAt"`
	}

	// Invitation is a time-limited, single-use token granting family
	// membership.
	Invitation struct {
		UUID       string           `json:"uuid"`
		Token      string           `json:"token"`
		FamilyUUID string           `json:"familyUuid"`
		FamilyName string           `json:"familyName"`
		Status     InvitationStatus `json:"status"`
		ExpiresAt  time.Time        `json:"expiresAt"`
		CreatedAt  time.Time        `json:"createdAt"`
	}

	Notification struct {
		UUID      string    `json:"uuid"`
		UserID    string    `json:"userId"`
		Kind      string    `json:"kind"`
		Message   string    `json:"message"`
		Read      bool      `json:"read"`
		CreatedAt time.Time `json:"createdAt"`
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyName        = errors.New("empty name")
)

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (e Expense) Validate() error {
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.CategoryUUID) == "" {
		return errors.New("empty category")
	}
	if e.SpentAt.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

func (i Income) Validate() error {
	if len(strings.TrimSpace(i.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(i.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := i.Amount.Validate(); err != nil {
		return err
	}
	if i.ReceivedAt.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > 50 {
		return errors.New("name too long (max 50 characters)")
	}
	return nil
}

func (f Family) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return ErrEmptyName
	}
	if len(f.Name) > 50 {
		return errors.New("name too long (max 50 characters)")
	}
	return nil
}

// Terminal reports whether the invitation status can never change again.
func (s InvitationStatus) Terminal() bool {
	switch s {
	case InvitationAccepted, InvitationCancelled, InvitationExpired:
		return true
	}
	return false
}

// Usable reports whether the invitation can still be accepted at the given
// instant. The backend runs its own expiry sweep; checking the local clock as
// well means the stricter of the two verdicts wins.
func (i Invitation) Usable(now time.Time) bool {
	if i.Status.Terminal() {
		return false
	}
	return now.Before(i.ExpiresAt)
}
