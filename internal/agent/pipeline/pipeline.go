package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/closetmind/closetmind-backend/internal/agent/llm"
	"github.com/closetmind/closetmind-backend/internal/agent/tool"
	"github.com/closetmind/closetmind-backend/internal/agent/types"
	"github.com/closetmind/closetmind-backend/internal/pkg/logger"
	"go.uber.org/zap"
)

// 阶段名称，固定顺序执行
const (
	StageSearch  = "search"
	StageScrape  = "scrape"
	StageExtract = "extract"
	StageFormat  = "format"
)

const formatPromptTemplate = `You are a helpful shopping assistant. The user asked:
%s

The following items were found:
%s

Write a concise, friendly response presenting these items with their names, prices and links.
If the list is empty, say that nothing useful was found and suggest rephrasing.`

// Coordinator 固定四阶段顺序流水线
// Search -> Scrape -> Extract -> Format，阶段之间无条件推进：
// 上一阶段产出错误信封时原样传给下一阶段，由下一阶段按
// "无事可做" 处理而不是崩溃
type Coordinator struct {
	searchTool  *tool.SearchTool
	scrapeTool  *tool.ScrapeTool
	extractTool *tool.ExtractTool
	generator   llm.Generator
	logger      *logger.Logger
}

// NewCoordinator 创建流水线协调器
func NewCoordinator(
	searchTool *tool.SearchTool,
	scrapeTool *tool.ScrapeTool,
	extractTool *tool.ExtractTool,
	generator llm.Generator,
	log *logger.Logger,
) *Coordinator {
	return &Coordinator{
		searchTool:  searchTool,
		scrapeTool:  scrapeTool,
		extractTool: extractTool,
		generator:   generator,
		logger:      log,
	}
}

// Run 执行流水线并向 events 发送阶段事件
// 最后一个事件类型为 final，携带格式化后的回答
// 状态随请求创建、随请求丢弃，不跨请求共享
func (c *Coordinator) Run(ctx context.Context, input tool.SearchInput, events chan<- types.Event) *types.PipelineState {
	state := types.NewPipelineState()

	// Search
	searchOut := c.searchTool.Run(ctx, input)
	state.SearchResults = &searchOut
	c.emit(events, types.Event{
		Type:    types.EventIntermediate,
		Stage:   StageSearch,
		Content: fmt.Sprintf("found %d links", len(searchOut.Links)),
	})

	// Scrape
	scrapeOut := c.scrapeTool.Run(ctx, state.SearchResults)
	state.ScrapedContent = &scrapeOut
	c.emit(events, types.Event{
		Type:    types.EventIntermediate,
		Stage:   StageScrape,
		Content: fmt.Sprintf("scraped %d pages", len(scrapeOut.ScrapedData)),
	})

	// Extract
	extractOut := c.extractTool.Run(ctx, state.ScrapedContent)
	state.ExtractedData = &extractOut
	c.emit(events, types.Event{
		Type:    types.EventIntermediate,
		Stage:   StageExtract,
		Content: fmt.Sprintf("extracted %d items", len(extractOut.ExtractedItems)),
	})

	// Format
	state.FinalResponse = c.format(ctx, input, state)
	c.emit(events, types.Event{
		Type:    types.EventFinal,
		Stage:   StageFormat,
		Content: state.FinalResponse,
	})

	return state
}

// format 将累积状态组合成自然语言回答
// 不调用任何工具；模型失败时退化为确定性文本
func (c *Coordinator) format(ctx context.Context, input tool.SearchInput, state *types.PipelineState) string {
	query := input.Query
	if query == "" {
		query = input.ImageURL
	}

	var items []types.ExtractedItem
	if state.ExtractedData != nil {
		items = state.ExtractedData.ExtractedItems
	}

	if len(items) == 0 {
		return "I searched the web but couldn't find any useful results for your request. Try rephrasing or being more specific."
	}

	reply, err := c.generator.Generate(ctx, fmt.Sprintf(formatPromptTemplate, query, renderItems(items)))
	if err != nil {
		c.logger.Warn("format stage model call failed", zap.Error(err))
		return renderItems(items)
	}

	return reply
}

// renderItems 确定性地罗列提取结果
func renderItems(items []types.ExtractedItem) string {
	var sb strings.Builder
	for i, item := range items {
		fmt.Fprintf(&sb, "%d. %s", i+1, item.Name)
		if item.Price != "" {
			fmt.Fprintf(&sb, " - %s", item.Price)
		}
		if item.Description != "" {
			fmt.Fprintf(&sb, "\n   %s", item.Description)
		}
		if item.Link != "" {
			fmt.Fprintf(&sb, "\n   %s", item.Link)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (c *Coordinator) emit(events chan<- types.Event, ev types.Event) {
	if events == nil {
		return
	}
	events <- ev
}
