// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package digest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// maxLanguages is the number of extensions listed in a repository outline.
const maxLanguages = 10

// RepoProfile is the raw material for a repository outline.
type RepoProfile struct {
	Files      int
	Extensions map[string]int
	Frameworks []string
}

// ProfileRepo walks root and counts files per extension. Files without an
// extension are not counted, and hidden directories are skipped. A missing
// root yields an empty profile.
func ProfileRepo(root string) RepoProfile {
	p := RepoProfile{Extensions: make(map[string]int)}
	found := make(map[string]bool)

	if _, err := os.Stat(filepath.Join(root, "package.json")); err == nil {
		found["Node.js"] = true
	}
	if info, err := os.Stat(filepath.Join(root, "apps", "web")); err == nil && info.IsDir() {
		found["Next.js"] = true
	}

	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.Contains(strings.ToLower(name), "fastapi") || isRouteModule(path) {
			found["FastAPI"] = true
		}
		if name == "Dockerfile" {
			found["Docker"] = true
		}

		if ext := strings.ToLower(filepath.Ext(name)); ext != "" && ext != name {
			p.Extensions[ext]++
			p.Files++
		}
		return nil
	})

	for fw := range found {
		p.Frameworks = append(p.Frameworks, fw)
	}
	sort.Strings(p.Frameworks)
	return p
}

// isRouteModule matches Python files directly under an api/routes directory.
func isRouteModule(path string) bool {
	if filepath.Ext(path) != ".py" {
		return false
	}
	dir := filepath.ToSlash(filepath.Dir(path))
	return dir == "api/routes" || strings.HasSuffix(dir, "/api/routes")
}

// TopExtensions returns up to n extensions by descending count, ties
// broken alphabetically.
func (p RepoProfile) TopExtensions(n int) []string {
	exts := make([]string, 0, len(p.Extensions))
	for ext := range p.Extensions {
		exts = append(exts, ext)
	}
	sort.Slice(exts, func(i, j int) bool {
		if p.Extensions[exts[i]] != p.Extensions[exts[j]] {
			return p.Extensions[exts[i]] > p.Extensions[exts[j]]
		}
		return exts[i] < exts[j]
	})
	if len(exts) > n {
		exts = exts[:n]
	}
	return exts
}

// DescribeRepo returns a Markdown outline of the repository at root: file
// count, the most common extensions, and detected frameworks.
func DescribeRepo(root string) string {
	p := ProfileRepo(root)

	langs := make([]string, 0, maxLanguages)
	for _, ext := range p.TopExtensions(maxLanguages) {
		langs = append(langs, fmt.Sprintf("%s:%d", ext, p.Extensions[ext]))
	}
	frameworks := "(none detected)"
	if len(p.Frameworks) > 0 {
		frameworks = strings.Join(p.Frameworks, ", ")
	}

	return "# Repository Architecture\n" +
		fmt.Sprintf("- Files: %d\n", p.Files) +
		"- Languages: " + strings.Join(langs, ", ") + "\n" +
		"- Frameworks: " + frameworks
}
