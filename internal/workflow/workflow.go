// Package workflow models the CI job that renders profile metrics SVGs.
package workflow

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// MetricsAction is the external action every render step delegates to.
const MetricsAction = "lowlighter/metrics"

// Workflow is the subset of a GitHub Actions workflow profilegen reads and writes.
type Workflow struct {
	Name string          `yaml:"name,omitempty"`
	On   Triggers        `yaml:"on"`
	Jobs map[string]*Job `yaml:"jobs"`
}

type Job struct {
	Name        string       `yaml:"name,omitempty"`
	RunsOn      Runner       `yaml:"runs-on"`
	Permissions *Permissions `yaml:"permissions,omitempty"`
	Steps       []Step       `yaml:"steps"`
}

type Step struct {
	Name string            `yaml:"name,omitempty"`
	ID   string            `yaml:"id,omitempty"`
	Uses string            `yaml:"uses,omitempty"`
	Run  string            `yaml:"run,omitempty"`
	With map[string]string `yaml:"with,omitempty"`
	Env  map[string]string `yaml:"env,omitempty"`
}

// Triggers lists event names. In YAML it accepts a scalar, a sequence or a
// mapping (whose keys are the events) and is written as a mapping.
type Triggers []string

func (t *Triggers) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		*t = Triggers{n.Value}
	case yaml.SequenceNode:
		var names []string
		if err := n.Decode(&names); err != nil {
			return err
		}
		*t = names
	case yaml.MappingNode:
		names := make([]string, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			names = append(names, n.Content[i].Value)
		}
		*t = names
	default:
		return fmt.Errorf("workflow: unsupported trigger node at line %d", n.Line)
	}
	return nil
}

func (t Triggers) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, name := range t {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: name},
			&yaml.Node{Kind: yaml.MappingNode, Style: yaml.FlowStyle},
		)
	}
	return node, nil
}

// Runner selects where a job runs: a label, a list of labels, or a
// {group, labels} mapping.
type Runner struct {
	Group  string
	Labels []string
}

func (r *Runner) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		*r = Runner{Labels: []string{n.Value}}
	case yaml.SequenceNode:
		var labels []string
		if err := n.Decode(&labels); err != nil {
			return err
		}
		*r = Runner{Labels: labels}
	case yaml.MappingNode:
		var sel struct {
			Group  string `yaml:"group"`
			Labels Runner `yaml:"labels"`
		}
		if err := n.Decode(&sel); err != nil {
			return err
		}
		*r = Runner{Group: sel.Group, Labels: sel.Labels.Labels}
	default:
		return fmt.Errorf("workflow: unsupported runs-on node at line %d", n.Line)
	}
	return nil
}

func (r Runner) MarshalYAML() (any, error) {
	switch {
	case r.Group != "":
		sel := struct {
			Group  string   `yaml:"group"`
			Labels []string `yaml:"labels,omitempty"`
		}{r.Group, r.Labels}
		return sel, nil
	case len(r.Labels) == 1:
		return r.Labels[0], nil
	default:
		return r.Labels, nil
	}
}

// Permissions is either a blanket level (read-all, write-all) or a
// per-scope mapping such as contents: write.
type Permissions struct {
	All    string
	Scopes map[string]string
}

func (p *Permissions) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		*p = Permissions{All: n.Value}
	case yaml.MappingNode:
		scopes := map[string]string{}
		if err := n.Decode(&scopes); err != nil {
			return err
		}
		*p = Permissions{Scopes: scopes}
	default:
		return fmt.Errorf("workflow: unsupported permissions node at line %d", n.Line)
	}
	return nil
}

func (p Permissions) MarshalYAML() (any, error) {
	if p.All != "" {
		return p.All, nil
	}
	return p.Scopes, nil
}

// Parse decodes a workflow document.
func Parse(data []byte) (*Workflow, error) {
	var w Workflow
	if err := yaml.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("workflow: parse: %w", err)
	}
	return &w, nil
}

// Load reads and decodes the workflow file at path.
func Load(path string) (*Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("workflow: read %s: %w", path, err)
	}
	w, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return w, nil
}

// Marshal renders w as YAML with two-space indentation.
func Marshal(w *Workflow) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(w); err != nil {
		return nil, fmt.Errorf("workflow: marshal: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("workflow: marshal: %w", err)
	}
	return buf.Bytes(), nil
}

// JobNames returns the job ids in sorted order.
func (w *Workflow) JobNames() []string {
	names := make([]string, 0, len(w.Jobs))
	for name := range w.Jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
