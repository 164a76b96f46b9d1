package main

import (
	"context"

	"github.com/spf13/cobra"
)

func documentsCmd(open opener) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "documents",
		Short: "List the documents in DOCUMENTS_DIR",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, open, "", func(ctx context.Context, s *session, _ string) error {
				entries, err := s.assistant.Documents(ctx)
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(cmd, entries)
				}
				if len(entries) == 0 {
					cmd.Println("No documents found.")
					return nil
				}
				for _, e := range entries {
					cmd.Printf("  %-50s %10d bytes  %s\n", e.Ref, e.SizeBytes, e.ModifiedAt.Format("2006-01-02 15:04"))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the listing as JSON")
	return cmd
}
