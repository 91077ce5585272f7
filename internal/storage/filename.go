package storage

import (
	"path"
	"regexp"
	"strings"
)

var (
	// Characters invalid in filenames on most filesystems
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	// Whitespace characters to normalize
	whitespaceChars = regexp.MustCompile(`[\r\n\t]`)
	// Multiple spaces to collapse
	multipleSpaces = regexp.MustCompile(`\s+`)
)

// MungeFilename sanitizes a picker-supplied filename for storage. Path
// components and invalid characters are stripped, and every dot-separated
// segment that looks like a disallowed extension gets an underscore appended
// so the stored file can't be served under an unexpected type.
func MungeFilename(filename string, allowedExtensions []string) string {
	// Drop any path the remote side may have sent.
	filename = path.Base(strings.ReplaceAll(filename, "\\", "/"))

	filename = invalidFilenameChars.ReplaceAllString(filename, "")
	filename = whitespaceChars.ReplaceAllString(filename, " ")
	filename = multipleSpaces.ReplaceAllString(filename, " ")
	filename = strings.TrimSpace(filename)

	// path.Base maps an empty input to ".", which would otherwise run
	// through the extension loop below.
	if filename == "" || filename == "." {
		return "file"
	}

	allowed := make(map[string]bool, len(allowedExtensions))
	for _, ext := range allowedExtensions {
		allowed[strings.ToLower(strings.TrimPrefix(ext, "."))] = true
	}

	parts := strings.Split(filename, ".")
	if len(parts) > 1 {
		// Everything between the stem and the final extension is a candidate
		// double extension.
		for i := 1; i < len(parts); i++ {
			if !allowed[strings.ToLower(parts[i])] {
				parts[i] += "_"
			}
		}
		filename = strings.Join(parts, ".")
	}

	if len(filename) > 200 {
		filename = strings.TrimSpace(filename[:200])
	}
	if filename == "" || filename == "." {
		filename = "file"
	}

	return filename
}
