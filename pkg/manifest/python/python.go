// Package python provides manifest parsers for the Python ecosystems:
// pip (requirements.txt), pipenv (Pipfile, Pipfile.lock), poetry/PEP 621
// (pyproject.toml), and setup.py.
package python

import "strings"

// operators in precedence order: the first operator found in a requirement
// line wins, and the remainder of the line after it is kept verbatim as
// the version spec.
var operators = []string{"==", ">=", "<=", "~=", ">", "<"}

// parseRequirement parses one requirement string ("pkg>=1.2", "pkg[extra]",
// a VCS URL, ...) into dst. Empty strings and comments are ignored.
func parseRequirement(req string, dst map[string]string) {
	req = strings.TrimSpace(req)
	if req == "" || strings.HasPrefix(req, "#") {
		return
	}

	for _, op := range operators {
		if i := strings.Index(req, op); i >= 0 {
			name := strings.TrimSpace(req[:i])
			version := strings.TrimSpace(req[i+len(op):])
			if op == "==" {
				dst[name] = version
			} else {
				dst[name] = op + version
			}
			return
		}
	}

	if strings.Contains(req, "git+") || strings.Contains(req, "http") {
		if _, frag, ok := strings.Cut(req, "#"); ok && strings.Contains(frag, "egg=") {
			egg := frag[strings.Index(frag, "egg=")+len("egg="):]
			name, _, _ := strings.Cut(egg, "&")
			dst[strings.TrimSpace(name)] = "git-dependency"
		} else {
			dst[req] = "url-dependency"
		}
		return
	}

	if strings.Contains(req, "[") && strings.Contains(req, "]") {
		name, _, _ := strings.Cut(req, "[")
		dst[strings.TrimSpace(name)] = "with-extras"
		return
	}

	dst[req] = "latest"
}
