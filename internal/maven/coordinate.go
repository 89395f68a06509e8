// Package maven expands Maven coordinates into repository paths.
package maven

import (
	"fmt"
	"strings"
)

// Coordinate is a parsed group:artifact:version[:classifier][@extension]
type Coordinate struct {
	Group      string
	Artifact   string
	Version    string
	Classifier string
	Extension  string
}

// Parse splits a Maven coordinate. The extension defaults to "jar".
func Parse(name string) (Coordinate, error) {
	c := Coordinate{Extension: "jar"}

	body := strings.TrimSpace(name)
	if at := strings.LastIndex(body, "@"); at >= 0 {
		c.Extension = body[at+1:]
		body = body[:at]
	}

	parts := strings.Split(body, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return Coordinate{}, fmt.Errorf("invalid maven coordinate: %q", name)
	}
	for _, p := range parts {
		if p == "" {
			return Coordinate{}, fmt.Errorf("invalid maven coordinate: %q", name)
		}
	}

	c.Group, c.Artifact, c.Version = parts[0], parts[1], parts[2]
	if len(parts) == 4 {
		c.Classifier = parts[3]
	}
	return c, nil
}

// FileName returns artifact-version[-classifier].ext
func (c Coordinate) FileName() string {
	name := c.Artifact + "-" + c.Version
	if c.Classifier != "" {
		name += "-" + c.Classifier
	}
	return name + "." + c.Extension
}

// Path returns the repository-relative path using forward slashes,
// e.g. "org/quiltmc/quilt-loader/0.26.0/quilt-loader-0.26.0.jar".
func (c Coordinate) Path() string {
	return strings.ReplaceAll(c.Group, ".", "/") + "/" + c.Artifact + "/" + c.Version + "/" + c.FileName()
}

func (c Coordinate) String() string {
	s := c.Group + ":" + c.Artifact + ":" + c.Version
	if c.Classifier != "" {
		s += ":" + c.Classifier
	}
	if c.Extension != "jar" {
		s += "@" + c.Extension
	}
	return s
}

// URL joins a repository base URL and a relative artifact path.
func URL(repository, relativePath string) string {
	return strings.TrimRight(repository, "/") + "/" + strings.TrimLeft(relativePath, "/")
}

// Candidates builds the ordered candidate URL list for relativePath: the
// preferred repository first (when set), then each fallback. Duplicate
// URLs are dropped, keeping the first occurrence.
func Candidates(relativePath, preferred string, fallbacks []string) []string {
	seen := make(map[string]bool)
	var urls []string

	add := func(repo string) {
		if repo == "" {
			return
		}
		u := URL(repo, relativePath)
		if seen[u] {
			return
		}
		seen[u] = true
		urls = append(urls, u)
	}

	add(preferred)
	for _, repo := range fallbacks {
		add(repo)
	}
	return urls
}
