// internal/app/system/limits/limits.go
package limits

// Request size limits for the JSON API.
const (
	// MaxJSONBody caps any API request body.
	MaxJSONBody = 64 << 10 // 64 KB

	// MaxNotesLength caps check-in notes after sanitizing, in runes.
	MaxNotesLength = 4000

	// MaxTitleLength caps assignment and goal titles, in runes.
	MaxTitleLength = 200

	// MaxDescriptionLength caps assignment descriptions, in runes.
	MaxDescriptionLength = 2000

	// MaxListLimit caps the ?limit= query parameter on list endpoints.
	MaxListLimit = 500
)
