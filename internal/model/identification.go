package model

// IdentificationResult is what the remote model said about the image.
type IdentificationResult struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Valid reports whether both fields are present.
func (r IdentificationResult) Valid() bool {
	return r.Name != "" && r.Description != ""
}
