package workflow

import (
	"fmt"
	"path"
	"strings"

	"github.com/Napageneral/profilegen/internal/config"
)

// Variant is one rendering of the AniList card.
type Variant struct {
	Name               string // "mobile", "desktop"
	Display            string // lowlighter config_display
	LimitVar           string
	LimitCharactersVar string
	// InjectTarget, when set, adds a profilegen inject step copying this
	// variant's characters into that SVG.
	InjectTarget string
}

// Profile holds everything Generate needs.
type Profile struct {
	Name        string
	ActionRef   string
	AssetDir    string
	Branch      string
	Hireable    bool
	TokenSecret string
	UserSecret  string
	SectionsVar string
	Variants    []Variant
}

// DefaultProfile derives the mobile and desktop profile from cfg.
func DefaultProfile(cfg *config.AppConfig) Profile {
	variant := func(name, display string) Variant {
		suffix := "_" + strings.ToUpper(name)
		return Variant{
			Name:               name,
			Display:            display,
			LimitVar:           cfg.AniList.LimitVar + suffix,
			LimitCharactersVar: cfg.AniList.LimitCharactersVar + suffix,
		}
	}
	return Profile{
		Name:        "Metrics",
		ActionRef:   MetricsAction + "@latest",
		AssetDir:    cfg.AssetDir,
		Branch:      cfg.Branch,
		Hireable:    cfg.Hireable,
		TokenSecret: "METRICS_TOKEN",
		UserSecret:  cfg.AniList.UserSecret,
		SectionsVar: cfg.AniList.SectionsVar,
		Variants: []Variant{
			variant("mobile", "regular"),
			variant("desktop", "large"),
		},
	}
}

// Filename returns the asset path rendered for v.
func (p Profile) Filename(v Variant) string {
	return path.Join(p.AssetDir, "metrics.anilist."+v.Name+".svg")
}

// Outputs lists every asset path the profile renders.
func (p Profile) Outputs() []string {
	out := make([]string, 0, len(p.Variants))
	for _, v := range p.Variants {
		out = append(out, p.Filename(v))
	}
	return out
}

func vars(name string) string    { return fmt.Sprintf("${{ vars.%s }}", name) }
func secrets(name string) string { return fmt.Sprintf("${{ secrets.%s }}", name) }

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

const (
	CheckoutAction = "actions/checkout@v4"
	SetupGoAction  = "actions/setup-go@v5"
	// InstallCommand puts the profilegen binary on the runner's PATH.
	InstallCommand = "go install github.com/Napageneral/profilegen/cmd/profilegen@latest"
)

// injectSteps checks out the branch the renders were committed to, installs
// profilegen, runs the injections and pushes the rewritten targets back.
func injectSteps(branch string, injects, targets []string) []Step {
	commit := []string{
		`git config user.name "github-actions[bot]"`,
		`git config user.email "41898282+github-actions[bot]@users.noreply.github.com"`,
		"git add " + strings.Join(targets, " "),
		`git diff --cached --quiet || git commit -m "Inject AniList characters"`,
		"git push origin HEAD:" + branch,
	}
	return []Step{
		{Name: "Checkout renders", Uses: CheckoutAction, With: map[string]string{"ref": branch}},
		{Name: "Set up Go", Uses: SetupGoAction, With: map[string]string{"go-version": "stable"}},
		{Name: "Install profilegen", Run: InstallCommand + "\n"},
		{Name: "Inject AniList characters", Run: strings.Join(injects, "\n") + "\n"},
		{Name: "Commit injected SVGs", Run: strings.Join(commit, "\n") + "\n"},
	}
}

// Generate builds the manually dispatched metrics workflow for p.
func Generate(p Profile) *Workflow {
	job := &Job{
		Name:        "Render profile metrics",
		RunsOn:      Runner{Labels: []string{"ubuntu-latest"}},
		Permissions: &Permissions{Scopes: map[string]string{"contents": "write"}},
	}

	var injects, targets []string
	for _, v := range p.Variants {
		job.Steps = append(job.Steps, Step{
			Name: fmt.Sprintf("AniList (%s)", v.Name),
			ID:   "anilist-" + v.Name,
			Uses: p.ActionRef,
			With: map[string]string{
				"filename":                        p.Filename(v),
				"token":                           secrets(p.TokenSecret),
				"base":                            "",
				"config_display":                  v.Display,
				"config_hireable":                 yesNo(p.Hireable),
				"committer_branch":                p.Branch,
				"plugin_anilist":                  "yes",
				"plugin_anilist_limit":            vars(v.LimitVar),
				"plugin_anilist_limit_characters": vars(v.LimitCharactersVar),
				"plugin_anilist_sections":         vars(p.SectionsVar),
				"plugin_anilist_user":             secrets(p.UserSecret),
			},
		})
		if v.InjectTarget != "" {
			injects = append(injects, fmt.Sprintf("profilegen inject %s --source %s --output %s",
				v.InjectTarget, p.Filename(v), v.InjectTarget))
			targets = append(targets, v.InjectTarget)
		}
	}

	if len(injects) > 0 {
		job.Steps = append(job.Steps, injectSteps(p.Branch, injects, targets)...)
	}

	return &Workflow{
		Name: p.Name,
		On:   Triggers{"workflow_dispatch"},
		Jobs: map[string]*Job{"metrics": job},
	}
}
