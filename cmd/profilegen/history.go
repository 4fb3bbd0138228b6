package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Napageneral/profilegen/internal/db"
	"github.com/Napageneral/profilegen/internal/ledger"
)

func newHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded renders, newest first",
		Run: func(cmd *cobra.Command, args []string) {
			type Result struct {
				OK      bool            `json:"ok"`
				Message string          `json:"message,omitempty"`
				Renders []ledger.Render `json:"renders,omitempty"`
			}

			database, err := db.Open()
			if err != nil {
				fail(Result{Message: fmt.Sprintf("Failed to open database: %v", err)})
			}
			defer database.Close()

			renders, err := ledger.List(context.Background(), database, limit)
			if err != nil {
				fail(Result{Message: err.Error()})
			}

			if jsonOutput {
				printJSON(Result{OK: true, Renders: renders})
				return
			}
			if len(renders) == 0 {
				fmt.Println("No renders recorded")
				return
			}
			for _, r := range renders {
				fmt.Printf("%s  %s  %-6s  %d image(s)  %s\n",
					time.Unix(r.CreatedAt, 0).Format(time.RFC3339), r.ID[:8], r.Kind, r.Images, r.Path)
			}
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum renders to show (0 = all)")
	return cmd
}
