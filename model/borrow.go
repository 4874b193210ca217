// model/borrow.go
package model

import "time"

type Borrowing struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	ItemKind   ItemKind   `json:"item_kind"`
	ItemID     int64      `json:"item_id"`
	BorrowDate time.Time  `json:"borrow_date"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
	Fine       float64    `json:"fine"`
}

// Open reports whether the item is still out.
func (b *Borrowing) Open() bool { return b.ReturnDate == nil }
