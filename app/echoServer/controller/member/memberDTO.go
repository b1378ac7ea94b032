package memberctrl

import "github.com/shopspring/decimal"

type MemberReq struct {
	FullName         string `json:"fullName" validate:"required"`
	Email            string `json:"email" validate:"required,email"`
	Phone            string `json:"phone"`
	MembershipType   string `json:"membershipType" validate:"required,oneof=student teacher public"`
	MembershipStatus string `json:"membershipStatus" validate:"omitempty,oneof=active suspended expired"`
	MaxBorrowLimit   int    `json:"maxBorrowLimit" validate:"omitempty,min=1"`
}

type PayFineReq struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
}
