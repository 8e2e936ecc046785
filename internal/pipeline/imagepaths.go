package pipeline

import (
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// ResolveImagePaths rewrites relative img[src] values to absolute file://
// URLs under imageDir. The document is set into a blank page before
// printing, so relative paths would otherwise resolve against about:blank.
// An empty imageDir returns the HTML unchanged.
//
// Left untouched: remote URLs, data URIs, absolute paths, and relative paths
// that would escape imageDir.
func ResolveImagePaths(htmlContent, imageDir string) (string, error) {
	if imageDir == "" {
		return htmlContent, nil
	}

	absDir, err := filepath.Abs(imageDir)
	if err != nil {
		return "", err
	}

	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	if rewriteImages(doc, absDir) == 0 {
		return htmlContent, nil
	}

	var buf strings.Builder
	if err := html.Render(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// rewriteImages walks the tree and returns the number of rewritten attributes.
func rewriteImages(n *html.Node, dir string) int {
	count := 0
	if n.Type == html.ElementNode && n.Data == "img" {
		for i, attr := range n.Attr {
			if attr.Key != "src" || !isRelativePath(attr.Val) {
				continue
			}
			absPath := filepath.Join(dir, attr.Val)
			if !isPathUnderDir(absPath, dir) {
				continue
			}
			n.Attr[i].Val = pathToFileURL(absPath)
			count++
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		count += rewriteImages(c, dir)
	}
	return count
}

// isRelativePath returns true if the path should be rewritten.
func isRelativePath(path string) bool {
	if path == "" || strings.HasPrefix(path, "#") {
		return false
	}
	for _, prefix := range []string{"http://", "https://", "file://", "data:", "//"} {
		if strings.HasPrefix(path, prefix) {
			return false
		}
	}
	return !filepath.IsAbs(path)
}

// isPathUnderDir checks if absPath is under dir.
func isPathUnderDir(absPath, dir string) bool {
	cleanDir := filepath.Clean(dir)
	if !strings.HasSuffix(cleanDir, string(filepath.Separator)) {
		cleanDir += string(filepath.Separator)
	}
	return strings.HasPrefix(filepath.Clean(absPath)+string(filepath.Separator), cleanDir)
}

// pathToFileURL converts an absolute path to a file:// URL.
func pathToFileURL(absPath string) string {
	u := url.URL{
		Scheme: "file",
		Path:   filepath.ToSlash(absPath),
	}
	return u.String()
}
