package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"assistant-ai/internal/service"
	"assistant-ai/internal/workflow"
)

const separator = "------------------------------------------------------------"

type askOptions struct {
	doc   string
	force bool
	k     int
	json  bool
}

func askCmd(open opener) *cobra.Command {
	var opts askOptions
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a single question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")
			return withSession(cmd, open, opts.doc, func(ctx context.Context, s *session, ref string) error {
				res, err := s.assistant.Ask(ctx, service.AskRequest{
					Question:     question,
					DocumentRef:  ref,
					K:            opts.k,
					ForceRebuild: opts.force,
				})
				if err != nil {
					return err
				}
				if opts.json {
					return printJSON(cmd, res)
				}
				printResult(cmd, res)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&opts.doc, "doc", "d", "", "document to answer from")
	cmd.Flags().BoolVar(&opts.force, "force", false, "rebuild the document index even if a valid one exists")
	cmd.Flags().IntVar(&opts.k, "k", 0, "number of chunks to retrieve (default RETRIEVAL_K)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the full result as JSON")
	return cmd
}

func printResult(cmd *cobra.Command, res workflow.Result) {
	cmd.Printf("\n🤖 Assistant: %s\n", res.Answer)
	cmd.Printf("\n📊 Agent: %s\n", strings.ToUpper(string(res.Intent)))
	if len(res.Trace) > 0 {
		cmd.Println("\n📋 Steps:")
		for _, step := range res.Trace {
			cmd.Printf("  %s\n", step)
		}
	}
	if res.Error != nil {
		cmd.PrintErrf("\n%s failed (%s): %s\n", res.Error.Stage, res.Error.Kind, res.Error.Message)
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
