package tool

import (
	"context"

	"github.com/closetmind/closetmind-backend/internal/agent/types"
	"github.com/closetmind/closetmind-backend/internal/pkg/logger"
	"github.com/closetmind/closetmind-backend/internal/websearch/provider"
	wstypes "github.com/closetmind/closetmind-backend/internal/websearch/types"
	"go.uber.org/zap"
)

// SearchInput 搜索工具输入
// Query 和 ImageURL 互斥，ImageURL 非空时走以图搜图
type SearchInput struct {
	Query    string `json:"query,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// SearchTool 封装搜索提供商为统一的工具信封
// 任何查询失败都转换为 status=error，不向上抛出
type SearchTool struct {
	provider provider.Provider
	logger   *logger.Logger
}

// NewSearchTool 创建搜索工具
func NewSearchTool(p provider.Provider, log *logger.Logger) *SearchTool {
	return &SearchTool{provider: p, logger: log}
}

// Run 执行搜索，单次尝试不重试
func (t *SearchTool) Run(ctx context.Context, input SearchInput) types.SearchOutput {
	if input.Query == "" && input.ImageURL == "" {
		return types.SearchOutput{
			Status:  types.StatusError,
			Message: "search query or image url is required",
		}
	}

	if input.ImageURL != "" {
		return t.lensSearch(ctx, input.ImageURL)
	}
	return t.textSearch(ctx, input.Query)
}

func (t *SearchTool) textSearch(ctx context.Context, query string) types.SearchOutput {
	resp, err := t.provider.Search(ctx, &wstypes.SearchRequest{Query: query})
	if err != nil {
		t.logger.Warn("web search failed", zap.Error(err), zap.String("query", query))
		return types.SearchOutput{
			Status:  types.StatusError,
			Query:   query,
			Message: err.Error(),
		}
	}

	return types.SearchOutput{
		Status: types.StatusSuccess,
		Query:  query,
		Links:  toSearchLinks(resp),
	}
}

func (t *SearchTool) lensSearch(ctx context.Context, imageURL string) types.SearchOutput {
	resp, err := t.provider.LensSearch(ctx, &wstypes.LensRequest{ImageURL: imageURL})
	if err != nil {
		t.logger.Warn("lens search failed", zap.Error(err), zap.String("image_url", imageURL))
		return types.SearchOutput{
			Status:   types.StatusError,
			ImageURL: imageURL,
			Message:  err.Error(),
		}
	}

	return types.SearchOutput{
		Status:   types.StatusSuccess,
		ImageURL: imageURL,
		Links:    toSearchLinks(resp),
	}
}

func toSearchLinks(resp *wstypes.SearchResponse) []types.SearchLink {
	links := make([]types.SearchLink, 0, len(resp.Results))
	for _, r := range resp.Results {
		links = append(links, types.SearchLink{
			Title:   r.Title,
			Link:    r.URL,
			Snippet: r.Content,
			Source:  r.Source,
		})
	}
	return links
}
