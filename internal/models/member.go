package models

// Member is a device identity with a display name. Member records are owned
// by the wider app's membership system; this subsystem reads them for label
// resolution and authentication only.
type Member struct {
	// ID is the unique identifier for the member (UUID format).
	ID string `json:"id"`

	// DisplayName is shown next to the member's shares and transfers.
	DisplayName string `json:"display_name"`

	// SecretHash is the bcrypt hash of the device secret. Never serialized.
	SecretHash string `json:"-"`

	// CreatedAt is the Unix timestamp when the member registered.
	CreatedAt int64 `json:"created_at"`
}
