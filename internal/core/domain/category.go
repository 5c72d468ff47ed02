package domain

// Category is read-only reference data owned by the category collaborator.
type Category struct {
	CategoryID string `json:"categoryID"`
	Name       string `json:"name"`
	Icon       string `json:"icon"`
}
