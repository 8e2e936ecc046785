package assets

// AssetLoader defines the contract for loading story templates and stylesheets.
type AssetLoader interface {
	// LoadTemplate loads an HTML template by name (without .html extension).
	// Returns ErrTemplateNotFound if the template doesn't exist.
	// Returns ErrInvalidAssetName if the name contains invalid characters.
	LoadTemplate(name string) (string, error)

	// LoadStyle loads a CSS stylesheet by name (without .css extension).
	// Returns ErrStyleNotFound if the stylesheet doesn't exist.
	// Returns ErrInvalidAssetName if the name contains invalid characters.
	LoadStyle(name string) (string, error)
}

// DefaultTemplateName is the name of the built-in story template.
const DefaultTemplateName = "story-template"

// DefaultStyleName is the name of the built-in print stylesheet.
const DefaultStyleName = "pdf-styles"
