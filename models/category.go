package models

// Category is a fixed spending/income bucket. The default set is seeded at
// migration time; transactions keep a denormalized copy of the name so
// renames never rewrite history.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}
