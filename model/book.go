package model

import "time"

type CopyStatus string

const (
	CopyAvailable   CopyStatus = "available"
	CopyBorrowed    CopyStatus = "borrowed"
	CopyMaintenance CopyStatus = "maintenance"
	CopyLost        CopyStatus = "lost"
)

func (s CopyStatus) Valid() bool {
	switch s {
	case CopyAvailable, CopyBorrowed, CopyMaintenance, CopyLost:
		return true
	}
	return false
}

type CopyCondition string

const (
	ConditionExcellent CopyCondition = "excellent"
	ConditionGood      CopyCondition = "good"
	ConditionFair      CopyCondition = "fair"
	ConditionPoor      CopyCondition = "poor"
)

func (c CopyCondition) Valid() bool {
	switch c {
	case ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor:
		return true
	}
	return false
}

type Book struct {
	ID          int64  `json:"id" db:"id"`
	Title       string `json:"title" db:"title"`
	Author      string `json:"author" db:"author"`
	ISBN        string `json:"isbn" db:"isbn"`
	Publisher   string `json:"publisher" db:"publisher"`
	PublishYear int    `json:"publishYear" db:"publish_year"`
	Category    string `json:"category" db:"category"`
	Description string `json:"description" db:"description"`

	// Copy counts are derived from book_copies, never stored on books.
	TotalCopies     int64 `json:"totalCopies" db:"total_copies"`
	AvailableCopies int64 `json:"availableCopies" db:"available_copies"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

type BookCopy struct {
	ID           int64         `json:"id" db:"id"`
	BookID       int64         `json:"bookId" db:"book_id"`
	Barcode      string        `json:"barcode" db:"barcode"`
	Status       CopyStatus    `json:"status" db:"status"`
	Location     string        `json:"location" db:"location"`
	Condition    CopyCondition `json:"condition" db:"condition"`
	AcquiredDate time.Time     `json:"acquiredDate" db:"acquired_date"`
}
