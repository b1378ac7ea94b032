package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type MembershipType string

const (
	MemberStudent MembershipType = "student"
	MemberTeacher MembershipType = "teacher"
	MemberPublic  MembershipType = "public"
)

func (t MembershipType) Valid() bool {
	switch t {
	case MemberStudent, MemberTeacher, MemberPublic:
		return true
	}
	return false
}

// DefaultBorrowLimit is the borrow limit applied when a member is
// registered without an explicit one.
func (t MembershipType) DefaultBorrowLimit() int {
	switch t {
	case MemberStudent:
		return 5
	case MemberTeacher:
		return 10
	case MemberPublic:
		return 3
	}
	return 3
}

type MembershipStatus string

const (
	MembershipActive    MembershipStatus = "active"
	MembershipSuspended MembershipStatus = "suspended"
	MembershipExpired   MembershipStatus = "expired"
)

func (s MembershipStatus) Valid() bool {
	switch s {
	case MembershipActive, MembershipSuspended, MembershipExpired:
		return true
	}
	return false
}

type Member struct {
	ID               int64            `json:"id" db:"id"`
	MemberCode       string           `json:"memberCode" db:"member_code"`
	FullName         string           `json:"fullName" db:"full_name"`
	Email            string           `json:"email" db:"email"`
	Phone            string           `json:"phone" db:"phone"`
	MembershipType   MembershipType   `json:"membershipType" db:"membership_type"`
	MembershipStatus MembershipStatus `json:"membershipStatus" db:"membership_status"`
	MaxBorrowLimit   int              `json:"maxBorrowLimit" db:"max_borrow_limit"`

	// CurrentBorrowCount mirrors the number of unreturned loans. It is
	// only ever mutated inside the same transaction as the loan write.
	CurrentBorrowCount int `json:"currentBorrowCount" db:"current_borrow_count"`

	TotalFines       decimal.Decimal `json:"totalFines" db:"total_fines"`
	RegistrationDate time.Time       `json:"registrationDate" db:"registration_date"`
}
