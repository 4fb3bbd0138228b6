package workflow

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var referencePattern = regexp.MustCompile(`\$\{\{\s*(vars|secrets)\.([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// requiredKeys must appear in every metrics step; base may be empty.
var requiredKeys = []string{"filename", "token", "base"}

// Refs declares the repository variables and secrets that exist. An empty
// list disables the corresponding check.
type Refs struct {
	Vars    []string
	Secrets []string
}

// Reference is one ${{ vars.X }} or ${{ secrets.X }} expression.
type Reference struct {
	Scope string `json:"scope"`
	Name  string `json:"name"`
	Job   string `json:"job"`
	Step  string `json:"step"`
}

type Issue struct {
	Job     string `json:"job,omitempty"`
	Step    string `json:"step,omitempty"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	switch {
	case i.Job == "":
		return i.Message
	case i.Step == "":
		return fmt.Sprintf("%s: %s", i.Job, i.Message)
	default:
		return fmt.Sprintf("%s/%s: %s", i.Job, i.Step, i.Message)
	}
}

// IsMetricsStep reports whether s runs the external metrics action.
func IsMetricsStep(s Step) bool {
	return s.Uses == MetricsAction || strings.HasPrefix(s.Uses, MetricsAction+"@")
}

func stepLabel(s Step, index int) string {
	switch {
	case s.ID != "":
		return s.ID
	case s.Name != "":
		return s.Name
	default:
		return fmt.Sprintf("step %d", index+1)
	}
}

// References lists every vars/secrets expression, by job name then step order.
// Within a step, with-keys and env-keys are visited in sorted order, then run.
func References(w *Workflow) []Reference {
	var refs []Reference
	for _, jobName := range w.JobNames() {
		job := w.Jobs[jobName]
		if job == nil {
			continue
		}
		for i, step := range job.Steps {
			label := stepLabel(step, i)
			for _, value := range stepValues(step) {
				for _, m := range referencePattern.FindAllStringSubmatch(value, -1) {
					refs = append(refs, Reference{Scope: m[1], Name: m[2], Job: jobName, Step: label})
				}
			}
		}
	}
	return refs
}

func stepValues(s Step) []string {
	var values []string
	for _, m := range []map[string]string{s.With, s.Env} {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			values = append(values, m[k])
		}
	}
	if s.Run != "" {
		values = append(values, s.Run)
	}
	return values
}

// Check validates the structure of a metrics workflow.
func Check(w *Workflow, refs Refs) []Issue {
	var issues []Issue

	if len(w.On) != 1 || w.On[0] != "workflow_dispatch" {
		issues = append(issues, Issue{
			Message: fmt.Sprintf("trigger must be workflow_dispatch only, got [%s]", strings.Join(w.On, ", ")),
		})
	}

	metricsSteps := 0
	filenames := map[string]string{}
	for _, jobName := range w.JobNames() {
		job := w.Jobs[jobName]
		if job == nil {
			issues = append(issues, Issue{Job: jobName, Message: "job is empty"})
			continue
		}
		for i, step := range job.Steps {
			if !IsMetricsStep(step) {
				continue
			}
			metricsSteps++
			label := stepLabel(step, i)

			for _, key := range requiredKeys {
				if _, ok := step.With[key]; !ok {
					issues = append(issues, Issue{Job: jobName, Step: label, Message: fmt.Sprintf("missing required input %q", key)})
				}
			}

			if enabled(step.With["plugin_anilist"]) && step.With["plugin_anilist_user"] == "" {
				issues = append(issues, Issue{Job: jobName, Step: label, Message: "plugin_anilist is enabled without plugin_anilist_user"})
			}

			if name := step.With["filename"]; name != "" {
				if prev, ok := filenames[name]; ok {
					issues = append(issues, Issue{Job: jobName, Step: label, Message: fmt.Sprintf("filename %s already rendered by %s", name, prev)})
				} else {
					filenames[name] = label
				}
			}
		}
	}

	if metricsSteps == 0 {
		issues = append(issues, Issue{Message: fmt.Sprintf("no step uses %s", MetricsAction)})
	}

	declaredVars := toSet(refs.Vars)
	declaredSecrets := toSet(refs.Secrets)
	declaredSecrets["GITHUB_TOKEN"] = struct{}{}
	for _, ref := range References(w) {
		declared := declaredVars
		if ref.Scope == "secrets" {
			if len(refs.Secrets) == 0 {
				continue
			}
			declared = declaredSecrets
		} else if len(refs.Vars) == 0 {
			continue
		}
		if _, ok := declared[ref.Name]; !ok {
			issues = append(issues, Issue{Job: ref.Job, Step: ref.Step, Message: fmt.Sprintf("references undeclared %s.%s", ref.Scope, ref.Name)})
		}
	}

	return issues
}

func enabled(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "yes", "true", "on", "1":
		return true
	}
	return false
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}
