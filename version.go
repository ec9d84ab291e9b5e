package pyext

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Version is the semantic version extracted from the foreign source tree,
// used as package metadata for the built extension.
//
// Raw holds the normalized token exactly as found (tag prefix stripped);
// Major/Minor/Patch are best-effort numeric parses of its dotted parts and
// stay zero for components that are not plain integers.
type Version struct {
	Major, Minor, Patch int
	Raw                 string
}

// String returns the normalized version token, e.g. "0.20.0".
func (v Version) String() string {
	return v.Raw
}

// ExtractVersion scans the file at path for a version declaration and
// returns the normalized version.
//
// A line matches when it contains both the declaration keyword and the
// version token, compared case-insensitively (e.g. `const jsonnetVersion =
// "v0.20.0"` with decl "const" and token "version"). The value is everything after the first "=" with
// surrounding whitespace and quotes trimmed; a single leading 'v' tag
// marker is stripped. The first matching line wins and scanning stops
// there, regardless of later matches.
//
// Returns ErrVersionNotFound (wrapped with the path) when no line matches.
// The caller must treat that as fatal: defaulting the version would publish
// corrupt package metadata.
func ExtractVersion(path, decl, token string) (Version, error) {
	f, err := os.Open(path)
	if err != nil {
		return Version{}, fmt.Errorf("version file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !containsFold(line, decl) || !containsFold(line, token) {
			continue
		}

		_, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}

		value = strings.Trim(value, "\n \"")
		if value == "" {
			continue
		}
		if value[0] == 'v' {
			value = value[1:]
		}

		return parseVersion(value), nil
	}
	if err := scanner.Err(); err != nil {
		return Version{}, fmt.Errorf("version file %s: %w", path, err)
	}

	return Version{}, fmt.Errorf("%s: %w", path, ErrVersionNotFound)
}

// containsFold reports whether s contains substr ignoring case, so the
// version token matches both "version" and "jsonnetVersion" spellings.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// parseVersion fills the numeric components from a dotted version token.
// Components that fail to parse are left at zero; Raw always survives.
func parseVersion(raw string) Version {
	v := Version{Raw: raw}

	parts := strings.SplitN(raw, ".", 3)
	numbers := []*int{&v.Major, &v.Minor, &v.Patch}
	for i, part := range parts {
		if i >= len(numbers) {
			break
		}
		if n, err := strconv.Atoi(part); err == nil {
			*numbers[i] = n
		}
	}

	return v
}
