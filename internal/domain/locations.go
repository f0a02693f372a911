package domain

// Parameter locations in the output document.
const (
	LocationQuery    = "query"
	LocationPath     = "path"
	LocationHeader   = "header"
	LocationFormData = "formData"
	LocationBody     = "body"
)
