package models

// Group is a reusable set of people who split expenses with each other.
// Expenses and payments always belong to exactly one group.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Ski Trip").
	Name string

	// Members is the list of participant names in this group, sorted by name.
	// Payers and shareholders of new expenses are added automatically.
	Members []string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}
