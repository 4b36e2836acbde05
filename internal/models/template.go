package models

// Template stores the HTML of one document kind. There is one row per kind.
type Template struct {
	// Kind is the document kind (invoice, club_invoice, ...).
	Kind string `json:"kind"`

	// HTML is the template body with {{token}} placeholders.
	HTML string `json:"html"`

	// UpdatedAt is the Unix timestamp of the last save.
	UpdatedAt int64 `json:"updated_at"`

	// UpdatedBy is the admin who saved it last.
	UpdatedBy string `json:"updated_by,omitempty"`
}
