package dto

type CheckoutRequest struct {
	BookID   string `json:"book_id" validate:"required,uuid"`
	MemberID string `json:"member_id" validate:"required,uuid"`
}

type ReturnRequest struct {
	BookID string `json:"book_id" validate:"required,uuid"`
}
