package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Napageneral/profilegen/internal/db"
	"github.com/Napageneral/profilegen/internal/ledger"
	"github.com/Napageneral/profilegen/internal/svg"
)

func newInjectCmd() *cobra.Command {
	var opts svg.Options
	var record bool

	cmd := &cobra.Command{
		Use:   "inject <svg>",
		Short: "Inject AniList character images into a metrics SVG",
		Long: `Replace a target SVG <foreignObject> with an AniList section populated
with the <img> data URIs extracted from a source SVG.`,
		Args: cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			type Result struct {
				OK       bool   `json:"ok"`
				Message  string `json:"message,omitempty"`
				Output   string `json:"output,omitempty"`
				Images   int    `json:"images,omitempty"`
				Bytes    int    `json:"bytes,omitempty"`
				RenderID string `json:"render_id,omitempty"`
				Skipped  bool   `json:"skipped,omitempty"`
			}

			if len(args) == 0 {
				cmd.SetOut(os.Stderr)
				cmd.Help()
				os.Exit(2)
			}
			opts.Target = args[0]
			if !cmd.Flags().Changed("width") {
				opts.Width = cfg.Image.Width
			}
			if !cmd.Flags().Changed("height") {
				opts.Height = cfg.Image.Height
			}
			if opts.Source == "" {
				failUsage(Result{Message: "--source is required"})
			}

			ctx := context.Background()
			res, err := svg.NewInjector(logger("inject")).Inject(ctx, opts)
			if err != nil {
				fail(Result{Message: err.Error()})
			}

			result := Result{OK: true, Output: res.Output, Images: res.Images, Bytes: res.Bytes}

			if record {
				rendered, err := recordRender(ctx, res, opts.Source)
				if err != nil {
					fail(Result{Message: fmt.Sprintf("Wrote %s but failed to record it: %v", res.Output, err)})
				}
				result.RenderID = rendered.RenderID
				result.Skipped = rendered.Skipped
			}

			result.Message = fmt.Sprintf("Done --> %s", res.Output)
			if jsonOutput {
				printJSON(result)
			} else {
				fmt.Printf("✓ Pulled %d image(s) from %s\n", res.Images, opts.Source)
				fmt.Printf("✓ Done --> %s\n", res.Output)
				if record && result.Skipped {
					fmt.Println("  (ledger: content unchanged)")
				} else if record {
					fmt.Printf("  Ledger: %s\n", result.RenderID)
				}
			}
		},
	}

	cmd.Flags().StringVarP(&opts.Source, "source", "s", "", "Path to the source SVG containing the .anilist/.characters <img> elements")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Output SVG path (default: target name with .out.svg)")
	cmd.Flags().IntVarP(&opts.MaxImages, "max-images", "m", 0, "Optional cap on number of images from the source SVG")
	cmd.Flags().BoolVar(&opts.Merge, "merge", false, "Prefer target <foreignObject> that already contains .anilist")
	cmd.Flags().IntVar(&opts.Width, "width", svg.DefaultWidth, "Output <img> width")
	cmd.Flags().IntVar(&opts.Height, "height", svg.DefaultHeight, "Output <img> height")
	cmd.Flags().BoolVar(&record, "record", false, "Record the output in the render ledger")

	return cmd
}

func recordRender(ctx context.Context, res svg.Result, source string) (ledger.RenderResult, error) {
	content, err := os.ReadFile(res.Output)
	if err != nil {
		return ledger.RenderResult{}, err
	}
	database, err := db.Open()
	if err != nil {
		return ledger.RenderResult{}, err
	}
	defer database.Close()

	return ledger.Record(ctx, database, ledger.RenderInput{
		Path:       res.Output,
		Kind:       "inject",
		SourcePath: source,
		Content:    content,
		Images:     res.Images,
	})
}
