// Package assets provides the story HTML templates and print stylesheets.
//
// # Loader Architecture
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - built-in story-template.html and pdf-styles.css
//	    ├── FilesystemLoader  - flat template directory on disk
//	    └── AssetResolver     - custom directory first, embedded fallback
//
// A template directory holds {name}.html templates and {name}.css
// stylesheets side by side. Overriding only the stylesheet keeps the
// embedded template, and vice versa.
//
// # Security
//
// Asset names are restricted to letters, digits, '-' and '_'.
// FilesystemLoader resolves symlinks and verifies paths stay within the directory.
package assets
