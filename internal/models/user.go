package models

// User is a person the portal bills: a root payer, or a dependent whose
// invoices are paid by the user referenced in ParentID.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string `json:"id"`

	// Name is the display name used on documents and in family groups.
	Name string `json:"name"`

	// Email is where invoices and campaigns are sent.
	Email string `json:"email"`

	Address string `json:"address"`
	Phone   string `json:"phone"`

	// ParentID references the guardian paying for this user.
	// Empty for root payers.
	ParentID string `json:"parent_id,omitempty"`

	// CreatedAt is the Unix timestamp when the user was created.
	CreatedAt int64 `json:"created_at"`
}

// RootID returns the ID of the user paying this user's invoices.
func (u User) RootID() string {
	if u.ParentID != "" {
		return u.ParentID
	}
	return u.ID
}
