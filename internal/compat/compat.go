// Package compat decides which loader versions pair with a base game version.
package compat

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// BaseVersion is a base game version parsed as 1.{Major}.{Minor}
type BaseVersion struct {
	Major int
	Minor int
}

// LoaderTriple is the leading {major}.{minor}.{build} of a loader version
type LoaderTriple struct {
	Major int
	Minor int
	Build int
}

var loaderTriplePattern = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)`)

// ParseBaseVersion parses "1.21.1" into {21, 1}. A missing minor defaults
// to 0 ("1.21" -> {21, 0}). Returns false when the string has fewer than
// two dot-separated parts or a part is not numeric.
func ParseBaseVersion(v string) (BaseVersion, bool) {
	parts := strings.Split(strings.TrimSpace(v), ".")
	if len(parts) < 2 {
		return BaseVersion{}, false
	}

	major, err := strconv.Atoi(parts[1])
	if err != nil {
		return BaseVersion{}, false
	}

	minor := 0
	if len(parts) > 2 {
		minor, err = strconv.Atoi(parts[2])
		if err != nil {
			return BaseVersion{}, false
		}
	}

	return BaseVersion{Major: major, Minor: minor}, true
}

// ParseLoaderTriple extracts the leading numeric triple of a loader version
// such as "20.4.237-beta".
func ParseLoaderTriple(v string) (LoaderTriple, bool) {
	m := loaderTriplePattern.FindStringSubmatch(v)
	if m == nil {
		return LoaderTriple{}, false
	}
	major, _ := strconv.Atoi(m[1])
	minor, _ := strconv.Atoi(m[2])
	build, _ := strconv.Atoi(m[3])
	return LoaderTriple{Major: major, Minor: minor, Build: build}, true
}

// NeoForgeCompatible reports whether a NeoForge version targets the base
// version. Major and minor must match exactly; the build is ignored.
func NeoForgeCompatible(base BaseVersion, loaderVersion string) bool {
	triple, ok := ParseLoaderTriple(loaderVersion)
	if !ok {
		return false
	}
	return triple.Major == base.Major && triple.Minor == base.Minor
}

// FilterNeoForge returns the candidates compatible with baseVersion, newest
// build first. An unparseable base version yields an empty result.
func FilterNeoForge(baseVersion string, candidates []string) []string {
	base, ok := ParseBaseVersion(baseVersion)
	if !ok {
		return []string{}
	}

	compatible := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if NeoForgeCompatible(base, c) {
			compatible = append(compatible, c)
		}
	}

	sort.SliceStable(compatible, func(i, j int) bool {
		bi, bj := buildNumber(compatible[i]), buildNumber(compatible[j])
		if bi != bj {
			return bi > bj
		}
		return releaseFirst(compatible[i], compatible[j])
	})

	return compatible
}

func buildNumber(v string) int {
	triple, ok := ParseLoaderTriple(v)
	if !ok {
		return 0
	}
	return triple.Build
}

// releaseFirst orders two versions of the same build by semver precedence,
// so "21.1.72" sorts before "21.1.72-beta". Non-semver strings keep their
// order.
func releaseFirst(a, b string) bool {
	va, vb := "v"+a, "v"+b
	if !semver.IsValid(va) || !semver.IsValid(vb) {
		return false
	}
	return semver.Compare(va, vb) > 0
}

// IsStable reports whether a loader version is a release build. Versions
// tagged beta or alpha in any case are unstable.
func IsStable(v string) bool {
	lower := strings.ToLower(v)
	return !strings.Contains(lower, "beta") && !strings.Contains(lower, "alpha")
}
