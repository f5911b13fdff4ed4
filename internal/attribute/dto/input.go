package dto

type DefineInput struct {
	Name     string
	Type     string
	Options  []string
	Required bool
}

// UpdateInput cannot change the type of a definition.
type UpdateInput struct {
	ID       string
	Name     string
	Options  []string
	Required bool
}
