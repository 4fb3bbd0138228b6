package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Napageneral/profilegen/internal/workflow"
)

func newWorkflowCmd() *cobra.Command {
	workflowCmd := &cobra.Command{
		Use:   "workflow",
		Short: "Generate and check the metrics workflow",
	}

	var output string
	var injects []string
	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Write the manually dispatched metrics workflow",
		Run: func(cmd *cobra.Command, args []string) {
			type Result struct {
				OK      bool     `json:"ok"`
				Message string   `json:"message,omitempty"`
				Path    string   `json:"path,omitempty"`
				Outputs []string `json:"outputs,omitempty"`
				YAML    string   `json:"yaml,omitempty"`
			}

			profile := workflow.DefaultProfile(cfg)
			for _, entry := range injects {
				name, target, ok := strings.Cut(entry, "=")
				if !ok || target == "" {
					fail(Result{Message: fmt.Sprintf("invalid --inject %q, want variant=path", entry)})
				}
				found := false
				for i := range profile.Variants {
					if profile.Variants[i].Name == name {
						profile.Variants[i].InjectTarget = target
						found = true
					}
				}
				if !found {
					fail(Result{Message: fmt.Sprintf("unknown variant %q in --inject", name)})
				}
			}

			data, err := workflow.Marshal(workflow.Generate(profile))
			if err != nil {
				fail(Result{Message: err.Error()})
			}

			result := Result{OK: true, Outputs: profile.Outputs()}
			if output == "" {
				if jsonOutput {
					result.YAML = string(data)
					printJSON(result)
				} else {
					os.Stdout.Write(data)
				}
				return
			}

			if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
				fail(Result{Message: fmt.Sprintf("Failed to create directory: %v", err)})
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				fail(Result{Message: fmt.Sprintf("Failed to write workflow: %v", err)})
			}
			logger("workflow").Info("workflow written", "path", output)

			result.Path = output
			result.Message = "Workflow written"
			if jsonOutput {
				printJSON(result)
			} else {
				fmt.Printf("✓ Workflow: %s\n", output)
				for _, out := range result.Outputs {
					fmt.Printf("  renders %s\n", out)
				}
			}
		},
	}
	generateCmd.Flags().StringVarP(&output, "output", "o", "", "Write the workflow to this path instead of stdout")
	generateCmd.Flags().StringArrayVar(&injects, "inject", nil, "Add an inject step, as variant=target.svg (repeatable)")

	var declaredVars, declaredSecrets []string
	checkCmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Validate a metrics workflow file",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			type Result struct {
				OK         bool                 `json:"ok"`
				Message    string               `json:"message,omitempty"`
				Issues     []workflow.Issue     `json:"issues,omitempty"`
				References []workflow.Reference `json:"references,omitempty"`
			}

			w, err := workflow.Load(args[0])
			if err != nil {
				fail(Result{Message: err.Error()})
			}

			issues := workflow.Check(w, workflow.Refs{Vars: declaredVars, Secrets: declaredSecrets})
			result := Result{OK: len(issues) == 0, Issues: issues, References: workflow.References(w)}
			if result.OK {
				result.Message = fmt.Sprintf("%s is valid", args[0])
			} else {
				result.Message = fmt.Sprintf("%s has %d issue(s)", args[0], len(issues))
			}

			if jsonOutput {
				printJSON(result)
			} else if result.OK {
				fmt.Printf("✓ %s\n", result.Message)
			} else {
				fmt.Fprintf(os.Stderr, "%s:\n", result.Message)
				for _, issue := range issues {
					fmt.Fprintf(os.Stderr, "  - %s\n", issue)
				}
			}
			if !result.OK {
				os.Exit(1)
			}
		},
	}
	checkCmd.Flags().StringSliceVar(&declaredVars, "var", nil, "Declared repository variable (repeatable)")
	checkCmd.Flags().StringSliceVar(&declaredSecrets, "secret", nil, "Declared repository secret (repeatable)")

	workflowCmd.AddCommand(generateCmd)
	workflowCmd.AddCommand(checkCmd)
	return workflowCmd
}
