package utils

import "strings"

// SanitizePath strips directory-traversal and shell-substitution
// sequences from a path before it is used in a log message or error
// string derived from package-controlled input (conffile paths,
// maintainer script names): removes "..", "$" and "`", then trims any
// leading "/" so the result can never be read as an absolute path.
func SanitizePath(path string) string {
	path = strings.ReplaceAll(path, "..", "")
	path = strings.ReplaceAll(path, "$", "")
	path = strings.ReplaceAll(path, "`", "")
	return strings.TrimLeft(path, "/")
}
