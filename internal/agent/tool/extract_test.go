package tool

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/closetmind/closetmind-backend/internal/agent/llm"
	"github.com/closetmind/closetmind-backend/internal/agent/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTool_Run_ParsesModelOutput(t *testing.T) {
	gen := llm.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		return `Here is the result: {"name": "Red Dress", "price": "$39.99", "description": "A nice red dress"} hope it helps`, nil
	})

	tool := NewExtractTool(gen, newTestLogger())
	out := tool.Run(context.Background(), &types.ScrapeOutput{
		Status: types.StatusSuccess,
		ScrapedData: []types.ScrapedPage{
			{URL: "https://shop.example/red", Title: "Red Dress Page", Content: "Red dress for $39.99", Status: types.StatusSuccess},
		},
	})

	assert.Equal(t, types.StatusSuccess, out.Status)
	require.Len(t, out.ExtractedItems, 1)

	item := out.ExtractedItems[0]
	assert.Equal(t, "https://shop.example/red", item.Link)
	assert.Equal(t, "Red Dress", item.Name)
	assert.Equal(t, "$39.99", item.Price)
	assert.Equal(t, "A nice red dress", item.Description)
}

func TestExtractTool_Run_FallbackOnUnparseableOutput(t *testing.T) {
	gen := llm.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		return "I could not find any product information.", nil
	})

	content := strings.Repeat("long product description ", 20)

	tool := NewExtractTool(gen, newTestLogger())
	out := tool.Run(context.Background(), &types.ScrapeOutput{
		Status: types.StatusSuccess,
		ScrapedData: []types.ScrapedPage{
			{URL: "https://shop.example/a", Title: "Fallback Page", Content: content, Status: types.StatusSuccess},
		},
	})

	require.Len(t, out.ExtractedItems, 1)

	item := out.ExtractedItems[0]
	assert.Equal(t, "Fallback Page", item.Name)
	assert.Equal(t, PriceNotFound, item.Price)
	assert.Equal(t, content[:maxDescriptionLen], item.Description)
	assert.LessOrEqual(t, len(item.Description), maxDescriptionLen)
}

func TestExtractTool_Run_FallbackOnModelError(t *testing.T) {
	gen := llm.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		return "", errors.New("model unavailable")
	})

	tool := NewExtractTool(gen, newTestLogger())
	out := tool.Run(context.Background(), &types.ScrapeOutput{
		Status: types.StatusSuccess,
		ScrapedData: []types.ScrapedPage{
			{URL: "https://shop.example/a", Title: "Some Page", Content: "short content", Status: types.StatusSuccess},
		},
	})

	assert.Equal(t, types.StatusSuccess, out.Status)
	require.Len(t, out.ExtractedItems, 1)
	assert.Equal(t, "Some Page", out.ExtractedItems[0].Name)
	assert.Equal(t, PriceNotFound, out.ExtractedItems[0].Price)
}

func TestExtractTool_Run_SkipsFailedAndEmptyPages(t *testing.T) {
	var calls int
	gen := llm.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		calls++
		return `{"name": "Item", "price": "$10", "description": "ok"}`, nil
	})

	tool := NewExtractTool(gen, newTestLogger())
	out := tool.Run(context.Background(), &types.ScrapeOutput{
		Status: types.StatusSuccess,
		ScrapedData: []types.ScrapedPage{
			{URL: "https://shop.example/failed", Status: types.StatusFailed, Error: "timeout"},
			{URL: "https://shop.example/empty", Status: types.StatusSuccess, Content: ""},
			{URL: "https://shop.example/ok", Title: "OK", Content: "content", Status: types.StatusSuccess},
		},
	})

	assert.Equal(t, types.StatusSuccess, out.Status)
	require.Len(t, out.ExtractedItems, 1)
	assert.Equal(t, "https://shop.example/ok", out.ExtractedItems[0].Link)
	assert.Equal(t, 1, calls)
}

func TestExtractTool_Run_RejectsMissingInput(t *testing.T) {
	gen := llm.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		t.Fatal("generator should not be called")
		return "", nil
	})

	tool := NewExtractTool(gen, newTestLogger())

	out := tool.Run(context.Background(), nil)
	assert.Equal(t, types.StatusError, out.Status)

	out = tool.Run(context.Background(), &types.ScrapeOutput{Status: types.StatusError})
	assert.Equal(t, types.StatusError, out.Status)
}

func TestParseExtraction(t *testing.T) {
	tests := []struct {
		name     string
		reply    string
		wantOK   bool
		wantItem types.ExtractedItem
	}{
		{
			name:   "plain json",
			reply:  `{"name": "Dress", "price": "$20", "description": "blue"}`,
			wantOK: true,
			wantItem: types.ExtractedItem{
				Name: "Dress", Price: "$20", Description: "blue",
			},
		},
		{
			name:   "json wrapped in prose",
			reply:  "Sure! Here it is: {\"name\": \"Hat\", \"price\": \"$5\", \"description\": \"straw\"} Anything else?",
			wantOK: true,
			wantItem: types.ExtractedItem{
				Name: "Hat", Price: "$5", Description: "straw",
			},
		},
		{
			name:   "missing price defaults to sentinel",
			reply:  `{"name": "Scarf", "description": "wool"}`,
			wantOK: true,
			wantItem: types.ExtractedItem{
				Name: "Scarf", Price: PriceNotFound, Description: "wool",
			},
		},
		{
			name:   "missing name rejected",
			reply:  `{"price": "$5", "description": "no name"}`,
			wantOK: false,
		},
		{
			name:   "no braces",
			reply:  "sorry, nothing found",
			wantOK: false,
		},
		{
			name:   "invalid json in window",
			reply:  "{name: Dress, price: $20}",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, ok := parseExtraction(tt.reply)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantItem, item)
			}
		})
	}
}

func TestParseExtraction_TruncatesDescription(t *testing.T) {
	long := strings.Repeat("x", maxDescriptionLen*2)
	item, ok := parseExtraction(`{"name": "Item", "price": "$1", "description": "` + long + `"}`)
	require.True(t, ok)
	assert.Len(t, item.Description, maxDescriptionLen)
}

func TestTruncate_KeepsRuneBoundary(t *testing.T) {
	// 3-byte runes so the byte cap falls mid-rune
	long := strings.Repeat("连衣裙", maxDescriptionLen)

	got := truncate(long, maxDescriptionLen)
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), maxDescriptionLen)
	assert.True(t, strings.HasPrefix(long, got))
}
