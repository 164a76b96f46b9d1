package main

import (
	"bufio"
	"context"
	"strings"

	"github.com/spf13/cobra"

	"assistant-ai/internal/service"
)

func chatCmd(open opener) *cobra.Command {
	var doc string
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, open, doc, func(ctx context.Context, s *session, ref string) error {
				return runChat(ctx, cmd, s.assistant, ref)
			})
		},
	}
	cmd.Flags().StringVarP(&doc, "doc", "d", "", "document to answer from")
	return cmd
}

func isExit(line string) bool {
	switch strings.ToLower(line) {
	case "", "exit", "quit", "q":
		return true
	}
	return false
}

func runChat(ctx context.Context, cmd *cobra.Command, assistant service.AssistantService, ref string) error {
	cmd.Println("🤖 Integrated RAG + Weather Assistant")
	cmd.Println(strings.Repeat("=", 60))
	if ref != "" {
		cmd.Printf("📄 Loaded document: %s\n", ref)
	}
	cmd.Println("\nI can help with:")
	cmd.Println("  🌤️  Weather - 'What's the weather in Mumbai?'")
	if ref != "" {
		cmd.Println("  📄 Document Q&A - 'Summarize chapter 1'")
	}
	cmd.Println("\nType 'exit' to quit")
	cmd.Println(separator)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		cmd.Print("\n💬 You: ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if isExit(question) {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		res, err := assistant.Ask(ctx, service.AskRequest{Question: question, DocumentRef: ref})
		if err != nil {
			cmd.PrintErrf("❌ %v\n", err)
			continue
		}
		printResult(cmd, res)
		cmd.Println(separator)
	}
	cmd.Println("👋 Goodbye!")
	return scanner.Err()
}
