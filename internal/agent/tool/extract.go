package tool

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/closetmind/closetmind-backend/internal/agent/llm"
	"github.com/closetmind/closetmind-backend/internal/agent/types"
	"github.com/closetmind/closetmind-backend/internal/pkg/logger"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	// PriceNotFound 价格缺失时的占位值
	PriceNotFound = "Price not found"

	// maxDescriptionLen 描述字段最大长度
	maxDescriptionLen = 120

	// promptContentBudget 嵌入提取 prompt 的页面内容 token 预算
	promptContentBudget = 1500
)

const extractPromptTemplate = `Extract product information from the following web page content.
Reply with a single JSON object with exactly these three fields:
{"name": "...", "price": "...", "description": "..."}

Use "%s" for the price if no price is present.
Keep the description under %d characters.

Page title: %s
Page content:
%s`

// ExtractTool 从抓取内容中提取结构化商品信息
// 单条提取永不失败：模型输出无法解析时退化为启发式结果
type ExtractTool struct {
	generator llm.Generator
	logger    *logger.Logger
}

// NewExtractTool 创建提取工具
func NewExtractTool(g llm.Generator, log *logger.Logger) *ExtractTool {
	return &ExtractTool{generator: g, logger: log}
}

// Run 对每个抓取成功且内容非空的页面提取一条记录
// 失败或空内容的页面直接跳过，不出现在输出中
func (t *ExtractTool) Run(ctx context.Context, scraped *types.ScrapeOutput) types.ExtractOutput {
	if scraped == nil || scraped.Status != types.StatusSuccess {
		return types.ExtractOutput{
			Status:  types.StatusError,
			Message: "no scraped content to extract from",
		}
	}

	items := make([]types.ExtractedItem, 0, len(scraped.ScrapedData))
	for _, page := range scraped.ScrapedData {
		if page.Status != types.StatusSuccess || page.Content == "" {
			continue
		}
		items = append(items, t.extractOne(ctx, page))
	}

	return types.ExtractOutput{
		Status:         types.StatusSuccess,
		ExtractedItems: items,
	}
}

// extractOne 提取单个页面，模型调用或解析失败时走启发式回退
func (t *ExtractTool) extractOne(ctx context.Context, page types.ScrapedPage) types.ExtractedItem {
	content := llm.TruncateToTokens(page.Content, promptContentBudget)
	prompt := fmt.Sprintf(extractPromptTemplate, PriceNotFound, maxDescriptionLen, page.Title, content)

	reply, err := t.generator.Generate(ctx, prompt)
	if err != nil {
		t.logger.Warn("extraction model call failed", zap.String("url", page.URL), zap.Error(err))
		return t.heuristicFallback(page)
	}

	item, ok := parseExtraction(reply)
	if !ok {
		t.logger.Debug("extraction output unparseable, using fallback", zap.String("url", page.URL))
		return t.heuristicFallback(page)
	}

	item.Link = page.URL
	return item
}

// parseExtraction 定位回复中第一个 { 和最后一个 } 之间的子串
// 并解析 name/price/description 三个字段
func parseExtraction(reply string) (types.ExtractedItem, bool) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return types.ExtractedItem{}, false
	}

	window := reply[start : end+1]
	if !gjson.Valid(window) {
		return types.ExtractedItem{}, false
	}

	parsed := gjson.Parse(window)
	name := parsed.Get("name").String()
	if name == "" {
		return types.ExtractedItem{}, false
	}

	price := parsed.Get("price").String()
	if price == "" {
		price = PriceNotFound
	}

	return types.ExtractedItem{
		Name:        name,
		Price:       price,
		Description: truncate(parsed.Get("description").String(), maxDescriptionLen),
	}, true
}

// heuristicFallback 基于页面标题和内容前缀构造确定性记录
func (t *ExtractTool) heuristicFallback(page types.ScrapedPage) types.ExtractedItem {
	name := page.Title
	if name == "" {
		name = page.URL
	}

	return types.ExtractedItem{
		Link:        page.URL,
		Name:        name,
		Price:       PriceNotFound,
		Description: truncate(page.Content, maxDescriptionLen),
	}
}

// truncate cuts s to at most n bytes without splitting a rune
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
