package model

// Notification is a transient, human-readable confirmation shown as a toast.
type Notification struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}
