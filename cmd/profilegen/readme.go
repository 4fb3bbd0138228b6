package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Napageneral/profilegen/internal/readme"
	"github.com/Napageneral/profilegen/internal/workflow"
)

func newReadmeCmd() *cobra.Command {
	readmeCmd := &cobra.Command{
		Use:   "readme",
		Short: "Inspect the profile README",
	}

	var opts readme.Options
	var expectRenders bool
	checkCmd := &cobra.Command{
		Use:   "check [file]",
		Short: "Report broken or missing references in the README",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			type Result struct {
				OK      bool           `json:"ok"`
				Message string         `json:"message,omitempty"`
				Links   int            `json:"links"`
				Issues  []readme.Issue `json:"issues,omitempty"`
			}

			path := "README.md"
			if len(args) == 1 {
				path = args[0]
			}
			if expectRenders {
				opts.Expect = append(opts.Expect, workflow.DefaultProfile(cfg).Outputs()...)
			}

			report, err := readme.Check(path, opts)
			if err != nil {
				fail(Result{Message: err.Error()})
			}

			result := Result{OK: report.OK(), Links: len(report.Links), Issues: report.Issues}
			if result.OK {
				result.Message = fmt.Sprintf("%s: %d reference(s), no issues", path, len(report.Links))
			} else {
				result.Message = fmt.Sprintf("%s has %d issue(s)", path, len(report.Issues))
			}

			if jsonOutput {
				printJSON(result)
			} else if result.OK {
				fmt.Printf("✓ %s\n", result.Message)
			} else {
				fmt.Fprintf(os.Stderr, "%s:\n", result.Message)
				for _, issue := range report.Issues {
					fmt.Fprintf(os.Stderr, "  - [%s] %s\n", issue.Kind, issue.Message)
				}
			}
			if !result.OK {
				os.Exit(1)
			}
		},
	}
	checkCmd.Flags().StringVar(&opts.Root, "root", "", "Directory absolute references resolve against (default: README directory)")
	checkCmd.Flags().StringArrayVar(&opts.Expect, "expect", nil, "Asset path the README must reference (repeatable)")
	checkCmd.Flags().BoolVar(&expectRenders, "expect-renders", false, "Require references to every SVG the metrics workflow renders")

	readmeCmd.AddCommand(checkCmd)
	return readmeCmd
}
