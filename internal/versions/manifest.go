package versions

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	perrors "github.com/p-blackswan/protodocs/internal/errors"
)

// Manifest is the top-level configuration loaded from versions.yaml.
type Manifest struct {
	Versions []VersionConfig `yaml:"versions"`
}

// VersionConfig describes one protocol version.
type VersionConfig struct {
	// Slug is the URL-safe identifier used in page paths.
	Slug string `yaml:"slug"`
	// AvailableUpstream is true when the upstream docs mirror this version.
	AvailableUpstream bool `yaml:"available_upstream"`
	// ImplementationIndex is an optional pre-aggregated index file.
	ImplementationIndex string `yaml:"implementation_index"`
	// Source is where the protocol JSON comes from.
	Source SourceConfig `yaml:"source"`
}

// SourceConfig names local files or a GitHub location. Exactly one is set.
type SourceConfig struct {
	Files  []string      `yaml:"files"`
	GitHub *GitHubSource `yaml:"github"`
}

// GitHubSource reads protocol files from a repository at a ref.
type GitHubSource struct {
	Owner string   `yaml:"owner"`
	Repo  string   `yaml:"repo"`
	Ref   string   `yaml:"ref"`
	Paths []string `yaml:"paths"`
}

var slugPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// LoadManifest reads a manifest file. Relative file paths inside it are
// resolved against the manifest's directory.
func LoadManifest(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	m, err := ParseManifest(raw)
	if err != nil {
		return nil, err
	}
	m.resolvePaths(filepath.Dir(path))
	return m, nil
}

// ParseManifest parses and validates manifest YAML.
func ParseManifest(raw []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks slugs and sources. Failures match ErrInvalidInput.
func (m *Manifest) Validate() error {
	if len(m.Versions) == 0 {
		return invalid("manifest lists no versions")
	}
	seen := make(map[string]bool, len(m.Versions))
	for i, v := range m.Versions {
		if !slugPattern.MatchString(v.Slug) || v.Slug == "." || v.Slug == ".." {
			return invalid("version %d: slug %q is not URL-safe", i, v.Slug)
		}
		if seen[v.Slug] {
			return invalid("version %q: duplicate slug", v.Slug)
		}
		seen[v.Slug] = true

		hasFiles := len(v.Source.Files) > 0
		hasGitHub := v.Source.GitHub != nil
		switch {
		case hasFiles == hasGitHub:
			return invalid("version %q: source needs exactly one of files or github", v.Slug)
		case hasGitHub:
			gh := v.Source.GitHub
			if gh.Owner == "" || gh.Repo == "" || len(gh.Paths) == 0 {
				return invalid("version %q: github source needs owner, repo and paths", v.Slug)
			}
		}
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", perrors.ErrInvalidInput, fmt.Sprintf(format, args...))
}

func (m *Manifest) resolvePaths(dir string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	for i := range m.Versions {
		v := &m.Versions[i]
		v.ImplementationIndex = abs(v.ImplementationIndex)
		for j, f := range v.Source.Files {
			v.Source.Files[j] = abs(f)
		}
	}
}
