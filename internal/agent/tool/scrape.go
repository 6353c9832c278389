package tool

import (
	"context"
	"sync"

	"github.com/closetmind/closetmind-backend/internal/agent/types"
	"github.com/closetmind/closetmind-backend/internal/pkg/logger"
	"github.com/closetmind/closetmind-backend/internal/pkg/workerpool"
	"github.com/closetmind/closetmind-backend/internal/scraper"
	"go.uber.org/zap"
)

// MaxScrapeLinks 单个批次最多抓取的链接数
// 只处理前 N 条，后面的丢弃以限制延迟和成本
const MaxScrapeLinks = 5

// ScrapeTool 抓取搜索结果中的页面
// 单个链接失败记录在对应条目中，不影响批次
type ScrapeTool struct {
	scraper *scraper.Scraper
	pool    *workerpool.Pool
	logger  *logger.Logger
}

// NewScrapeTool 创建抓取工具
func NewScrapeTool(s *scraper.Scraper, pool *workerpool.Pool, log *logger.Logger) *ScrapeTool {
	return &ScrapeTool{scraper: s, pool: pool, logger: log}
}

// Run 抓取前 min(5, len(links)) 个链接
// 输出顺序与输入顺序一致；缺少 links 输入时返回 status=error
func (t *ScrapeTool) Run(ctx context.Context, search *types.SearchOutput) types.ScrapeOutput {
	if search == nil || search.Status != types.StatusSuccess {
		return types.ScrapeOutput{
			Status:  types.StatusError,
			Message: "no links to scrape",
		}
	}

	links := search.Links
	if len(links) > MaxScrapeLinks {
		links = links[:MaxScrapeLinks]
	}

	// 结果槽按下标寻址，保证输出顺序与输入一致
	pages := make([]types.ScrapedPage, len(links))

	var wg sync.WaitGroup
	for i, link := range links {
		i, link := i, link
		wg.Add(1)

		task := func() {
			defer wg.Done()
			pages[i] = t.scrapeOne(ctx, link)
		}

		if t.pool != nil {
			if err := t.pool.Submit(task); err != nil {
				// 池关闭时退化为同步执行
				task()
			}
		} else {
			task()
		}
	}
	wg.Wait()

	return types.ScrapeOutput{
		Status:      types.StatusSuccess,
		ScrapedData: pages,
	}
}

// scrapeOne 抓取单个链接，失败时返回 failed 条目
func (t *ScrapeTool) scrapeOne(ctx context.Context, link types.SearchLink) types.ScrapedPage {
	page, err := t.scraper.Fetch(ctx, link.Link)
	if err != nil {
		t.logger.Warn("scrape failed", zap.String("url", link.Link), zap.Error(err))
		return types.ScrapedPage{
			URL:    link.Link,
			Title:  link.Title,
			Status: types.StatusFailed,
			Error:  err.Error(),
		}
	}

	title := page.Title
	if title == "" {
		title = link.Title
	}

	return types.ScrapedPage{
		URL:     link.Link,
		Title:   title,
		Content: page.Content,
		Status:  types.StatusSuccess,
	}
}
