package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"assistant-ai/internal/app"
	"assistant-ai/internal/config"
	"assistant-ai/internal/service"
)

// session is an opened assistant plus the function that releases it.
type session struct {
	assistant service.AssistantService
	close     func(context.Context) error
}

// opener opens a session whose document library is rooted at libraryRoot,
// or at DOCUMENTS_DIR when libraryRoot is empty.
type opener func(libraryRoot string) (*session, error)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(openApp)
	root.SetOut(os.Stdout)
	if err := root.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd(open opener) *cobra.Command {
	root := &cobra.Command{
		Use:           "assistant",
		Short:         "Ask questions about documents or the weather",
		Long:          "assistant routes each question to document question answering, a weather lookup or a help response.",
		SilenceUsage: true,
	}

	root.AddCommand(askCmd(open))
	root.AddCommand(chatCmd(open))
	root.AddCommand(indexCmd(open))
	root.AddCommand(documentsCmd(open))
	return root
}

func openApp(libraryRoot string) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	slog.SetDefault(cfg.NewLogger())

	var opts []app.Option
	if libraryRoot != "" {
		opts = append(opts, app.WithLibraryRoot(libraryRoot))
	}
	a, err := app.New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &session{assistant: a.Assistant, close: a.Close}, nil
}

// splitDocPath turns a document path into a library root and a reference inside it.
func splitDocPath(path string) (root, ref string, err error) {
	if path == "" {
		return "", "", nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	return filepath.Dir(abs), filepath.Base(abs), nil
}

// withSession opens a session for docPath, runs fn and always closes the session.
func withSession(cmd *cobra.Command, open opener, docPath string, fn func(ctx context.Context, s *session, ref string) error) (err error) {
	root, ref, err := splitDocPath(docPath)
	if err != nil {
		return err
	}
	s, err := open(root)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := s.close(context.Background()); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return fn(cmd.Context(), s, ref)
}
