package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"assistant-ai/internal/document"
	"assistant-ai/internal/indexcache"
	"assistant-ai/internal/router"
	"assistant-ai/internal/service"
	"assistant-ai/internal/service/mocks"
	"assistant-ai/internal/workflow"
)

type fakeOpener struct {
	assistant *mocks.MockAssistantService
	roots     []string
	closed    int
}

func (f *fakeOpener) open(root string) (*session, error) {
	f.roots = append(f.roots, root)
	return &session{
		assistant: f.assistant,
		close: func(context.Context) error {
			f.closed++
			return nil
		},
	}, nil
}

func run(t *testing.T, f *fakeOpener, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd(f.open)
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func newFake(t *testing.T) *fakeOpener {
	ctrl := gomock.NewController(t)
	return &fakeOpener{assistant: mocks.NewMockAssistantService(ctrl)}
}

func TestAskCmd(t *testing.T) {
	f := newFake(t)
	doc := filepath.Join(t.TempDir(), "report.pdf")

	f.assistant.EXPECT().
		Ask(gomock.Any(), service.AskRequest{Question: "summarize chapter 1", DocumentRef: "report.pdf", K: 3, ForceRebuild: true}).
		Return(workflow.Result{
			Answer: "Chapter 1 covers the basics.",
			Intent: router.IntentRAG,
			Trace:  []string{"🧭 Routed to: RAG agent", "✓ Generated answer"},
		}, nil)

	out, _, err := run(t, f, "", "ask", "--doc", doc, "--force", "--k", "3", "summarize", "chapter", "1")
	if err != nil {
		t.Fatalf("ask error = %v", err)
	}
	for _, want := range []string{"🤖 Assistant: Chapter 1 covers the basics.", "📊 Agent: RAG", "📋 Steps:", "  ✓ Generated answer"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if len(f.roots) != 1 || f.roots[0] != filepath.Dir(doc) {
		t.Errorf("library roots = %v, want %s", f.roots, filepath.Dir(doc))
	}
	if f.closed != 1 {
		t.Errorf("closed = %d, want 1", f.closed)
	}
}

func TestAskCmd_RequiresQuestion(t *testing.T) {
	f := newFake(t)
	if _, _, err := run(t, f, "", "ask"); err == nil {
		t.Error("ask without question error = nil")
	}
	if len(f.roots) != 0 {
		t.Error("session opened for invalid invocation")
	}
}

func TestAskCmd_ReportsWorkflowFailure(t *testing.T) {
	f := newFake(t)
	f.assistant.EXPECT().Ask(gomock.Any(), gomock.Any()).Return(workflow.Result{
		Answer: "I couldn't read the document.",
		Intent: router.IntentRAG,
		Error:  &workflow.ErrorInfo{Stage: "INGEST", Kind: workflow.KindIngestion, Message: "unsupported"},
	}, nil)

	_, errOut, err := run(t, f, "", "ask", "what is this")
	if err != nil {
		t.Fatalf("ask error = %v", err)
	}
	if !strings.Contains(errOut, "INGEST failed (ingestion)") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestAskCmd_ServiceErrorClosesSession(t *testing.T) {
	f := newFake(t)
	f.assistant.EXPECT().Ask(gomock.Any(), gomock.Any()).Return(workflow.Result{}, errors.New("boom"))

	if _, _, err := run(t, f, "", "ask", "q"); err == nil {
		t.Error("ask error = nil")
	}
	if f.closed != 1 {
		t.Errorf("closed = %d, want 1", f.closed)
	}
}

func TestChatCmd(t *testing.T) {
	f := newFake(t)
	gomock.InOrder(
		f.assistant.EXPECT().Ask(gomock.Any(), service.AskRequest{Question: "weather in Pune?"}).
			Return(workflow.Result{Answer: "Sunny", Intent: router.IntentWeather}, nil),
		f.assistant.EXPECT().Ask(gomock.Any(), service.AskRequest{Question: "hello"}).
			Return(workflow.Result{Answer: "I can help with", Intent: router.IntentUnknown}, nil),
	)

	out, _, err := run(t, f, "weather in Pune?\n  hello  \nquit\nnever asked\n", "chat")
	if err != nil {
		t.Fatalf("chat error = %v", err)
	}
	if !strings.Contains(out, "📊 Agent: WEATHER") || !strings.Contains(out, "📊 Agent: UNKNOWN") {
		t.Errorf("output:\n%s", out)
	}
	if !strings.Contains(out, "👋 Goodbye!") {
		t.Error("missing goodbye")
	}
	if strings.Contains(out, "📄 Document Q&A") {
		t.Error("document help shown without a document")
	}
}

func TestChatCmd_EOFLeaves(t *testing.T) {
	f := newFake(t)
	out, _, err := run(t, f, "", "chat")
	if err != nil {
		t.Fatalf("chat error = %v", err)
	}
	if !strings.Contains(out, "👋 Goodbye!") || f.closed != 1 {
		t.Errorf("closed = %d, output:\n%s", f.closed, out)
	}
}

func TestIsExit(t *testing.T) {
	for _, in := range []string{"", "exit", "QUIT", "q"} {
		if !isExit(in) {
			t.Errorf("isExit(%q) = false", in)
		}
	}
	if isExit("quitting time") {
		t.Error("isExit(\"quitting time\") = true")
	}
}

func TestIndexCmd(t *testing.T) {
	f := newFake(t)
	doc := filepath.Join(t.TempDir(), "notes.md")

	f.assistant.EXPECT().WarmIndex(gomock.Any(), service.IndexRequest{DocumentRef: "notes.md", Force: true}).
		Return(workflow.WarmResult{CollectionID: "doc_abc", CacheReason: indexcache.ReasonForceRebuild, Trace: []string{"✓ Built and saved new index"}}, nil)

	out, _, err := run(t, f, "", "index", "--doc", doc, "--force")
	if err != nil {
		t.Fatalf("index error = %v", err)
	}
	if !strings.Contains(out, "Built index doc_abc (force_rebuild)") {
		t.Errorf("output:\n%s", out)
	}

	if _, _, err := run(t, f, "", "index"); err == nil || !strings.Contains(err.Error(), "--doc") {
		t.Errorf("index without --doc error = %v", err)
	}
}

func TestDocumentsCmd(t *testing.T) {
	f := newFake(t)
	f.assistant.EXPECT().Documents(gomock.Any()).Return([]document.Entry{{Ref: "reports/q3.pdf", SizeBytes: 42}}, nil)

	out, _, err := run(t, f, "", "documents")
	if err != nil {
		t.Fatalf("documents error = %v", err)
	}
	if !strings.Contains(out, "reports/q3.pdf") {
		t.Errorf("output:\n%s", out)
	}
	if len(f.roots) != 1 || f.roots[0] != "" {
		t.Errorf("roots = %v, want DOCUMENTS_DIR default", f.roots)
	}

	f.assistant.EXPECT().Documents(gomock.Any()).Return(nil, nil)
	out, _, _ = run(t, f, "", "documents")
	if !strings.Contains(out, "No documents found.") {
		t.Errorf("empty output:\n%s", out)
	}
}

func TestSplitDocPath(t *testing.T) {
	root, ref, err := splitDocPath("")
	if err != nil || root != "" || ref != "" {
		t.Errorf("splitDocPath(\"\") = %q, %q, %v", root, ref, err)
	}

	wd, _ := os.Getwd()
	root, ref, err = splitDocPath("docs/a.md")
	if err != nil {
		t.Fatal(err)
	}
	if root != filepath.Join(wd, "docs") || ref != "a.md" {
		t.Errorf("splitDocPath(docs/a.md) = %q, %q", root, ref)
	}
}
