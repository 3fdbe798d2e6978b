package control

import "strings"

// ValidArchitecture reports whether arch is syntactically valid: either
// the wildcards "all" or "any", a bare CPU name ("amd64"), or an
// os-cpu/os-vendor-cpu qualified name ("windows-amd64"), matching the
// Debian Architecture field grammar generalized to the
// non-Debian-OS triples this format also needs to describe.
func ValidArchitecture(arch string) bool {
	if arch == "" {
		return false
	}
	if arch == "all" || arch == "any" {
		return true
	}

	parts := strings.Split(arch, "-")
	for _, p := range parts {
		if p == "" {
			return false
		}
		for _, r := range p {
			if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
				return false
			}
		}
	}
	return len(parts) >= 1 && len(parts) <= 3
}

// parseArchTriplet splits an architecture into its os/vendor/cpu parts.
// A two-part form ("os-cpu") leaves vendor empty, meaning "any vendor".
func parseArchTriplet(arch string) (os, vendor, cpu string, ok bool) {
	parts := strings.Split(arch, "-")
	switch len(parts) {
	case 2:
		return parts[0], "", parts[1], true
	case 3:
		return parts[0], parts[1], parts[2], true
	default:
		return "", "", "", false
	}
}

// ArchitectureCompatible reports whether a candidate's Architecture is
// installable on a target architecture (§3 "Package identity"):
// "all" matches any target; "source" only matches "source"; otherwise
// OS and CPU must match exactly and vendor, if present on both sides,
// must also match — an absent vendor on either side matches any.
func ArchitectureCompatible(candidate, target string) bool {
	if candidate == target {
		return true
	}
	if candidate == "all" {
		return true
	}
	if candidate == "source" || target == "source" {
		return false
	}

	cOS, cVendor, cCPU, cOK := parseArchTriplet(candidate)
	tOS, tVendor, tCPU, tOK := parseArchTriplet(target)
	if !cOK || !tOK {
		return false
	}
	if cOS != tOS || cCPU != tCPU {
		return false
	}
	if cVendor != "" && tVendor != "" && cVendor != tVendor {
		return false
	}
	return true
}

// ParseDependsField splits a comma-separated field such as Depends or
// Pre-Depends into its raw, still-unparsed clause strings, trimming
// the field out of the stanza as the teacher's collection readers do
// so downstream code never sees it twice.
func ParseDependsField(s Stanza, field string) []string {
	value, ok := s[field]
	if !ok {
		return nil
	}
	delete(s, field)

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
