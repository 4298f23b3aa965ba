package explain

import (
	"context"
	"errors"
	"testing"

	"github.com/tmc/langchaingo/llms"

	"github.com/roamdigital/explainer/internal/model"
)

type fakeModel struct {
	content    string
	err        error
	chunks     [][]byte
	streamErr  error
}

func (f *fakeModel) GenerateContent(ctx context.Context, _ []llms.MessageContent, opts ...llms.CallOption) (*llms.ContentResponse, error) {
	var call llms.CallOptions
	for _, o := range opts {
		o(&call)
	}
	if call.StreamingFunc != nil {
		if f.streamErr != nil {
			return nil, f.streamErr
		}
		for _, c := range f.chunks {
			if err := call.StreamingFunc(ctx, c); err != nil {
				return nil, err
			}
		}
		return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.content}}}, nil
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.content}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, _ string, _ ...llms.CallOption) (string, error) {
	return f.content, f.err
}

func TestGenerateReturnsModelText(t *testing.T) {
	g := New(&fakeModel{content: "This shows because of its category."}, 0.1, 256, 3000, 20)
	text, usedFallback, _ := g.Generate(context.Background(), PromptInput{Intent: model.ParsedIntent{RawQuestion: "why?"}})
	if usedFallback {
		t.Fatal("did not expect fallback")
	}
	if text != "This shows because of its category." {
		t.Errorf("unexpected text: %s", text)
	}
}

func TestGenerateFallsBackOnModelError(t *testing.T) {
	present := false
	g := New(&fakeModel{err: errors.New("timeout")}, 0.1, 256, 3000, 20)
	text, usedFallback, reason := g.Generate(context.Background(), PromptInput{
		Trace: []model.TraceStep{{Step: model.StepMainQuery, Count: 0, TargetPresent: &present}},
	})
	if !usedFallback || reason == "" {
		t.Fatal("expected fallback with a reason")
	}
	if text == "" {
		t.Error("expected non-empty fallback text")
	}
}

func TestGenerateNilModelFallsBack(t *testing.T) {
	g := New(nil, 0.1, 256, 3000, 20)
	_, usedFallback, reason := g.Generate(context.Background(), PromptInput{})
	if !usedFallback || reason == "" {
		t.Fatal("expected fallback when no model is configured")
	}
}

func TestStreamForwardsChunks(t *testing.T) {
	g := New(&fakeModel{chunks: [][]byte{[]byte("hel"), []byte("lo")}, content: "hello"}, 0.1, 256, 3000, 20)
	var got []byte
	err := g.Stream(context.Background(), PromptInput{}, func(c []byte) error {
		got = append(got, c...)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("expected forwarded chunks to concatenate to hello, got %s", got)
	}
}

func TestStreamNilModelErrors(t *testing.T) {
	g := New(nil, 0.1, 256, 3000, 20)
	err := g.Stream(context.Background(), PromptInput{}, func([]byte) error { return nil })
	if err == nil {
		t.Fatal("expected an error when no model is configured")
	}
}
