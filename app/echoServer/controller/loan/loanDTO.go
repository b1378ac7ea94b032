package loanctrl

type CheckoutReq struct {
	MemberCode string `json:"memberCode" validate:"required"`
	Barcode    string `json:"barcode" validate:"required"`
}

type ReturnReq struct {
	Barcode string `json:"barcode" validate:"required"`
}
