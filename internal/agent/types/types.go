package types

// 工具返回的统一信封状态
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusFailed  = "failed"
)

// SearchLink 搜索结果条目
type SearchLink struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet,omitempty"`
	Source  string `json:"source,omitempty"`
}

// SearchOutput 搜索工具信封
// 成功时携带 links，失败时携带 message
type SearchOutput struct {
	Status   string       `json:"status"`
	Query    string       `json:"query,omitempty"`
	ImageURL string       `json:"image_url,omitempty"`
	Links    []SearchLink `json:"links,omitempty"`
	Message  string       `json:"message,omitempty"`
}

// ScrapedPage 单个链接的抓取结果
// 一旦生成不再修改
type ScrapedPage struct {
	URL     string `json:"url"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`
	Status  string `json:"status"` // success | failed
	Error   string `json:"error,omitempty"`
}

// ScrapeOutput 抓取工具信封
type ScrapeOutput struct {
	Status      string        `json:"status"`
	ScrapedData []ScrapedPage `json:"scraped_data,omitempty"`
	Message     string        `json:"message,omitempty"`
}

// ExtractedItem 结构化提取结果
type ExtractedItem struct {
	Link        string `json:"link"`
	Name        string `json:"name"`
	Price       string `json:"price"`
	Description string `json:"description"`
}

// ExtractOutput 提取工具信封
type ExtractOutput struct {
	Status         string          `json:"status"`
	ExtractedItems []ExtractedItem `json:"extracted_items,omitempty"`
	Message        string          `json:"message,omitempty"`
}

// 流水线各阶段写入的状态 key
const (
	KeySearchResults  = "search_results"
	KeyScrapedContent = "scraped_content"
	KeyExtractedData  = "extracted_data"
	KeyFinalResponse  = "final_response"
)

// PipelineState 流水线共享状态
// 每个阶段只读取自己需要的 key，写入恰好一个 key
// 请求开始时创建，请求结束时丢弃
type PipelineState struct {
	SearchResults  *SearchOutput  `json:"search_results,omitempty"`
	ScrapedContent *ScrapeOutput  `json:"scraped_content,omitempty"`
	ExtractedData  *ExtractOutput `json:"extracted_data,omitempty"`
	FinalResponse  string         `json:"final_response,omitempty"`
}

// NewPipelineState 创建空的流水线状态
func NewPipelineState() *PipelineState {
	return &PipelineState{}
}

// 事件类型
const (
	EventIntermediate = "intermediate"
	EventFinal        = "final"
)

// Event 流水线/处理器产生的事件
type Event struct {
	Type    string `json:"type"` // intermediate | final
	Stage   string `json:"stage,omitempty"`
	Content string `json:"content"`
}

// Intent 路由意图
type Intent string

const (
	IntentSearch  Intent = "search"
	IntentOutfit  Intent = "outfit"
	IntentGeneral Intent = "general"
)

// WardrobeItem 衣橱条目（由外部存储提供）
type WardrobeItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url,omitempty"`
	Category string `json:"category,omitempty"`
	Features string `json:"features,omitempty"`
}

// Outfit 穿搭组合
type Outfit struct {
	Description string   `json:"description"`
	ImageURLs   []string `json:"image_urls,omitempty"`
	Rationale   string   `json:"rationale,omitempty"`
}
