package obs

import "strings"

// resourceRoots are API prefixes whose next path segment is a resource id.
var resourceRoots = []string{
	"/api/products/",
	"/api/categories/",
	"/api/posts/",
}

// CanonicalPath collapses resource identifiers so metric label cardinality
// stays bounded.
func CanonicalPath(path string) string {
	if path == "" {
		return "/"
	}
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	for _, root := range resourceRoots {
		if !strings.HasPrefix(path, root) {
			continue
		}
		rest := strings.Trim(strings.TrimPrefix(path, root), "/")
		if rest == "" {
			return strings.TrimSuffix(root, "/")
		}
		segments := strings.Split(rest, "/")
		if len(segments) == 1 {
			return root + ":id"
		}
		if len(segments) == 2 {
			return root + ":id/" + segments[1]
		}
		if len(segments) == 3 {
			return root + ":id/" + segments[1] + "/:itemID"
		}
	}
	return path
}
