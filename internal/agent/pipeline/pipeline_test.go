package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/closetmind/closetmind-backend/internal/agent/llm"
	"github.com/closetmind/closetmind-backend/internal/agent/tool"
	"github.com/closetmind/closetmind-backend/internal/agent/types"
	"github.com/closetmind/closetmind-backend/internal/pkg/logger"
	"github.com/closetmind/closetmind-backend/internal/scraper"
	wstypes "github.com/closetmind/closetmind-backend/internal/websearch/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestLogger() *logger.Logger {
	return &logger.Logger{Logger: zap.NewNop()}
}

// fakeProvider 返回固定搜索结果
type fakeProvider struct {
	resp *wstypes.SearchResponse
	err  error
}

func (f *fakeProvider) Search(ctx context.Context, req *wstypes.SearchRequest) (*wstypes.SearchResponse, error) {
	return f.resp, f.err
}

func (f *fakeProvider) LensSearch(ctx context.Context, req *wstypes.LensRequest) (*wstypes.SearchResponse, error) {
	return f.resp, f.err
}

func (f *fakeProvider) GetID() wstypes.ProviderID { return wstypes.ProviderSerper }
func (f *fakeProvider) GetName() string           { return "fake" }
func (f *fakeProvider) Validate() error           { return nil }

// stageGenerator 按 prompt 前缀区分提取和格式化两个阶段
func stageGenerator(extractReply, formatReply string, formatErr error) llm.GeneratorFunc {
	return func(ctx context.Context, prompt string) (string, error) {
		if strings.HasPrefix(prompt, "Extract product information") {
			return extractReply, nil
		}
		if formatErr != nil {
			return "", formatErr
		}
		return formatReply, nil
	}
}

func newTestCoordinator(t *testing.T, provider *fakeProvider, gen llm.Generator) *Coordinator {
	t.Helper()

	log := newTestLogger()
	searchTool := tool.NewSearchTool(provider, log)
	scrapeTool := tool.NewScrapeTool(scraper.New(nil), nil, log)
	extractTool := tool.NewExtractTool(gen, log)

	return NewCoordinator(searchTool, scrapeTool, extractTool, gen, log)
}

func newProductServer(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><head><title>Product %s</title></head><body><p>Details about %s</p></body></html>`,
			r.URL.Path, r.URL.Path)
	}))
	t.Cleanup(srv.Close)

	return srv
}

func collectEvents(events chan types.Event) []types.Event {
	close(events)
	var out []types.Event
	for ev := range events {
		out = append(out, ev)
	}
	return out
}

func TestCoordinator_Run_AllStagesInOrder(t *testing.T) {
	srv := newProductServer(t)

	provider := &fakeProvider{
		resp: &wstypes.SearchResponse{
			Results: []*wstypes.SearchResult{
				{Title: "Red Dress", URL: srv.URL + "/red-dress"},
				{Title: "Blue Dress", URL: srv.URL + "/blue-dress"},
			},
		},
	}
	gen := stageGenerator(
		`{"name": "Red Dress", "price": "$39", "description": "A dress"}`,
		"Here are two dresses I found for you.",
		nil,
	)

	c := newTestCoordinator(t, provider, gen)

	events := make(chan types.Event, 16)
	state := c.Run(context.Background(), tool.SearchInput{Query: "red dress"}, events)

	require.NotNil(t, state)
	require.NotNil(t, state.SearchResults)
	require.NotNil(t, state.ScrapedContent)
	require.NotNil(t, state.ExtractedData)
	assert.Len(t, state.SearchResults.Links, 2)
	assert.Len(t, state.ScrapedContent.ScrapedData, 2)
	assert.Len(t, state.ExtractedData.ExtractedItems, 2)
	assert.Equal(t, "Here are two dresses I found for you.", state.FinalResponse)

	got := collectEvents(events)
	require.Len(t, got, 4)
	assert.Equal(t, []string{StageSearch, StageScrape, StageExtract, StageFormat},
		[]string{got[0].Stage, got[1].Stage, got[2].Stage, got[3].Stage})
	for _, ev := range got[:3] {
		assert.Equal(t, types.EventIntermediate, ev.Type)
	}
	assert.Equal(t, types.EventFinal, got[3].Type)
	assert.Equal(t, state.FinalResponse, got[3].Content)
}

func TestCoordinator_Run_IsDeterministic(t *testing.T) {
	srv := newProductServer(t)

	provider := &fakeProvider{
		resp: &wstypes.SearchResponse{
			Results: []*wstypes.SearchResult{
				{Title: "Hat", URL: srv.URL + "/hat"},
			},
		},
	}
	gen := stageGenerator(
		`{"name": "Hat", "price": "$5", "description": "straw"}`,
		"One hat found.",
		nil,
	)

	c := newTestCoordinator(t, provider, gen)

	first := c.Run(context.Background(), tool.SearchInput{Query: "hat"}, nil)
	second := c.Run(context.Background(), tool.SearchInput{Query: "hat"}, nil)

	assert.Equal(t, first, second)
}

func TestCoordinator_Run_SearchFailureStillFinishes(t *testing.T) {
	provider := &fakeProvider{err: errors.New("search backend down")}
	gen := stageGenerator("", "unused", nil)

	c := newTestCoordinator(t, provider, gen)

	events := make(chan types.Event, 16)
	state := c.Run(context.Background(), tool.SearchInput{Query: "anything"}, events)

	assert.Equal(t, types.StatusError, state.SearchResults.Status)
	assert.Equal(t, types.StatusError, state.ScrapedContent.Status)
	assert.Equal(t, types.StatusError, state.ExtractedData.Status)
	assert.Contains(t, state.FinalResponse, "couldn't find any useful results")

	got := collectEvents(events)
	require.Len(t, got, 4)
	assert.Equal(t, types.EventFinal, got[3].Type)
}

func TestCoordinator_Run_FormatFallsBackToListing(t *testing.T) {
	srv := newProductServer(t)

	provider := &fakeProvider{
		resp: &wstypes.SearchResponse{
			Results: []*wstypes.SearchResult{
				{Title: "Coat", URL: srv.URL + "/coat"},
			},
		},
	}
	gen := stageGenerator(
		`{"name": "Winter Coat", "price": "$120", "description": "warm"}`,
		"",
		errors.New("format model down"),
	)

	c := newTestCoordinator(t, provider, gen)
	state := c.Run(context.Background(), tool.SearchInput{Query: "coat"}, nil)

	assert.Contains(t, state.FinalResponse, "Winter Coat")
	assert.Contains(t, state.FinalResponse, "$120")
	assert.Contains(t, state.FinalResponse, srv.URL+"/coat")
}

func TestRenderItems(t *testing.T) {
	out := renderItems([]types.ExtractedItem{
		{Name: "Dress", Price: "$20", Description: "blue", Link: "https://shop.example/d"},
		{Name: "Hat", Price: "Price not found"},
	})

	assert.Contains(t, out, "1. Dress - $20")
	assert.Contains(t, out, "https://shop.example/d")
	assert.Contains(t, out, "2. Hat - Price not found")
}
