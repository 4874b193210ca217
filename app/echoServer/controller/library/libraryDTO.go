package library

// ReturnReq carries an optional explicit return date; today when absent.
type ReturnReq struct {
	ReturnDate string `json:"return_date" validate:"omitempty,datetime=2006-01-02"`
}
