package copyctrl

type CopyReq struct {
	Barcode   string `json:"barcode"`
	Status    string `json:"status" validate:"omitempty,oneof=available maintenance lost"`
	Location  string `json:"location"`
	Condition string `json:"condition" validate:"omitempty,oneof=excellent good fair poor"`
}

type MarkStatusReq struct {
	Status string `json:"status" validate:"required,oneof=available borrowed maintenance lost"`
}
