package readme

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

type IssueKind string

const (
	IssueEmptyDestination IssueKind = "empty_destination"
	IssueMissingFile      IssueKind = "missing_file"
	IssueMissingAsset     IssueKind = "missing_asset"
)

type Issue struct {
	Kind        IssueKind `json:"kind"`
	Destination string    `json:"destination,omitempty"`
	Message     string    `json:"message"`
}

// Options tunes a README check.
type Options struct {
	// Root resolves absolute ("/x.svg") references. Defaults to the README's directory.
	Root string
	// Expect lists asset paths the README must reference, e.g. rendered SVGs.
	Expect []string
}

type Report struct {
	Path   string  `json:"path"`
	Links  []Link  `json:"links"`
	Issues []Issue `json:"issues,omitempty"`
}

// OK reports whether the check found nothing wrong.
func (r Report) OK() bool { return len(r.Issues) == 0 }

// Check parses the README at p and validates its references.
func Check(p string, opts Options) (Report, error) {
	source, err := os.ReadFile(p)
	if err != nil {
		return Report{}, fmt.Errorf("readme: read %s: %w", p, err)
	}

	dir := filepath.Dir(p)
	root := opts.Root
	if root == "" {
		root = dir
	}

	report := Report{Path: p, Links: Extract(source)}

	for _, link := range report.Links {
		dest := link.Destination
		if dest == "" {
			report.Issues = append(report.Issues, Issue{
				Kind:    IssueEmptyDestination,
				Message: fmt.Sprintf("%s link has an empty destination", link.Kind),
			})
			continue
		}
		local, ok := localPath(dest)
		if !ok {
			continue
		}
		var full string
		if strings.HasPrefix(local, "/") {
			full = filepath.Join(root, filepath.FromSlash(local))
		} else {
			full = filepath.Join(dir, filepath.FromSlash(local))
		}
		if _, err := os.Stat(full); err != nil {
			report.Issues = append(report.Issues, Issue{
				Kind:        IssueMissingFile,
				Destination: dest,
				Message:     fmt.Sprintf("referenced file %s does not exist", full),
			})
		}
	}

	for _, asset := range opts.Expect {
		if !references(report.Links, asset) {
			report.Issues = append(report.Issues, Issue{
				Kind:        IssueMissingAsset,
				Destination: asset,
				Message:     fmt.Sprintf("README never references %s", asset),
			})
		}
	}

	return report, nil
}

// localPath returns the repository path a destination points at, or false for
// external URLs and in-page anchors.
func localPath(dest string) (string, bool) {
	if strings.HasPrefix(dest, "#") || strings.HasPrefix(dest, "//") {
		return "", false
	}
	u, err := url.Parse(dest)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "", false
	}
	if u.Path == "" {
		return "", false
	}
	return u.Path, true
}

func references(links []Link, asset string) bool {
	want := strings.TrimPrefix(path.Clean(filepath.ToSlash(asset)), "./")
	for _, link := range links {
		dest := link.Destination
		if u, err := url.Parse(dest); err == nil {
			dest = u.Path
		}
		dest = strings.TrimPrefix(path.Clean(dest), "./")
		if dest == want || strings.HasSuffix(dest, "/"+want) {
			return true
		}
	}
	return false
}
