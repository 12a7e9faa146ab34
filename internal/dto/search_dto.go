package dto

import "encoding/json"

// SearchRequest carries a predicate tree plus paging. The tree is decoded by
// internal/predicate; see that package for the wire format.
type SearchRequest struct {
	Where json.RawMessage `json:"where" validate:"required"`
	Page  int             `json:"page"  validate:"omitempty,min=1"`
	Limit int             `json:"limit" validate:"omitempty,min=1,max=200"`
}
