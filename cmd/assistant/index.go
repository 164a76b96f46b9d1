package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"assistant-ai/internal/service"
)

func indexCmd(open opener) *cobra.Command {
	var (
		doc    string
		force  bool
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build the index for a document ahead of questions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if doc == "" {
				return errors.New("--doc is required")
			}
			return withSession(cmd, open, doc, func(ctx context.Context, s *session, ref string) error {
				res, err := s.assistant.WarmIndex(ctx, service.IndexRequest{DocumentRef: ref, Force: force})
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(cmd, res)
				}
				for _, step := range res.Trace {
					cmd.Printf("  %s\n", step)
				}
				if res.CacheHit {
					cmd.Printf("Index %s is up to date\n", res.CollectionID)
				} else {
					cmd.Printf("Built index %s (%s)\n", res.CollectionID, res.CacheReason)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&doc, "doc", "d", "", "document to index")
	cmd.Flags().BoolVar(&force, "force", false, "rebuild even if a valid index exists")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}
