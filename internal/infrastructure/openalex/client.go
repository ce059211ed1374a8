// Package openalex 提供 OpenAlex 文献元数据检索实现
package openalex

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"scholar-rec-api/internal/config"
	"scholar-rec-api/internal/domain/entity"
	"scholar-rec-api/internal/infrastructure/persistence/redis"
	"scholar-rec-api/pkg/logger"
	"scholar-rec-api/pkg/metrics"
)

var tracer = otel.Tracer("openalex")

// Client OpenAlex Works API 客户端
// 同一子查询的原始响应缓存在 Redis 中，避免重试与并发子查询重复打外部 API。
type Client struct {
	httpClient *http.Client
	config     *config.OpenAlexConfig
	cache      *redis.Cache
}

// NewClient 创建 OpenAlex 客户端
// cache 可为 nil，此时退化为每次直连。
func NewClient(cfg *config.OpenAlexConfig, cache *redis.Cache) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		config:     cfg,
		cache:      cache,
	}
}

// Search 按检索式查询文献，返回按相关性降序的论文列表
// 返回的论文已计算内容哈希，摘要缺失或不可用时置为占位文本。
func (c *Client) Search(ctx context.Context, query string) ([]*entity.Paper, error) {
	ctx, span := tracer.Start(ctx, "openalex.Search",
		trace.WithAttributes(attribute.String("query", query)))
	defer span.End()

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty search query")
	}

	body, err := c.fetch(ctx, query)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	var resp worksResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to parse openalex response: %w", err)
	}

	papers := make([]*entity.Paper, 0, len(resp.Results))
	total := len(resp.Results)
	for i, w := range resp.Results {
		p := c.toPaper(&w)
		// 位置相关性：OpenAlex 默认按相关性排序
		if total > 1 {
			p.SimilarityScore = 1.0 - float64(i)/float64(total-1)*0.9
		} else {
			p.SimilarityScore = 1.0
		}
		papers = append(papers, p)
	}

	metrics.PapersFetchedTotal.WithLabelValues("openalex").Add(float64(len(papers)))
	span.SetAttributes(attribute.Int("result_count", len(papers)))
	return papers, nil
}

// fetch 拉取原始响应，命中缓存时不触网
func (c *Client) fetch(ctx context.Context, query string) ([]byte, error) {
	reqURL := c.buildURL(query)

	load := func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", "scholar-rec-api/1.0")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("openalex request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("openalex returned HTTP %d", resp.StatusCode)
		}

		return io.ReadAll(resp.Body)
	}

	// cache_ttl 为 0 表示关闭缓存
	if c.cache == nil || c.config.CacheTTL <= 0 {
		return load()
	}

	body, err := c.cache.GetOrLoadSafe(ctx, cacheKey(reqURL), c.config.CacheTTL, func() (interface{}, error) {
		return load()
	})
	if err != nil {
		// 缓存故障不阻断检索
		logger.Warn(ctx, "openalex cache unavailable, falling back to direct fetch", "error", err)
		return load()
	}
	return body, nil
}

// buildURL 构造检索 URL
func (c *Client) buildURL(query string) string {
	endpoint := c.config.Endpoint
	if endpoint == "" {
		endpoint = "https://api.openalex.org/works"
	}

	maxResults := c.config.MaxResults
	if maxResults <= 0 {
		maxResults = 25
	}
	if maxResults > 200 {
		maxResults = 200
	}

	params := url.Values{
		"search":   {query},
		"per_page": {fmt.Sprintf("%d", maxResults)},
		"page":     {"1"},
	}

	if c.config.FromYears > 0 {
		from := time.Now().AddDate(-c.config.FromYears, 0, 0).Format("2006-01-02")
		params.Set("filter", "from_publication_date:"+from)
	}

	if c.config.Email != "" {
		params.Set("mailto", c.config.Email)
	}

	return endpoint + "?" + params.Encode()
}

// toPaper 将 OpenAlex Work 映射为论文实体
func (c *Client) toPaper(w *work) *entity.Paper {
	p := &entity.Paper{
		ExternalID: w.ID,
		Title:      w.Title,
	}

	abstract := ReconstructAbstract(w.AbstractInvertedIndex)
	if AbstractUsable(abstract) {
		p.Abstract = abstract
	} else {
		p.Abstract = entity.NoAbstractSentinel
	}

	for _, a := range w.Authorships {
		if a.Author.DisplayName != "" {
			p.Authors = append(p.Authors, a.Author.DisplayName)
		}
	}

	if w.PublicationDate != "" {
		if t, err := time.Parse("2006-01-02", w.PublicationDate); err == nil {
			p.PublicationDate = t
		}
	} else if w.PublicationYear > 0 {
		p.PublicationDate = time.Date(w.PublicationYear, 1, 1, 0, 0, 0, 0, time.UTC)
	}

	if w.PrimaryLocation.LandingPageURL != "" {
		p.LandingURL = w.PrimaryLocation.LandingPageURL
	} else if w.DOI != "" {
		p.LandingURL = w.DOI
	}
	if w.OpenAccess.OAURL != "" {
		p.PDFURL = w.OpenAccess.OAURL
	} else if w.PrimaryLocation.PDFURL != "" {
		p.PDFURL = w.PrimaryLocation.PDFURL
	}

	p.FWCI = w.FWCI
	p.CitationPercentile = w.CitationNormalizedPercentile.Value
	p.CitationCount = w.CitedByCount
	for _, cy := range w.CountsByYear {
		p.CountsByYear = append(p.CountsByYear, entity.YearCitation{
			Year:  cy.Year,
			Count: cy.CitedByCount,
		})
	}
	for _, t := range w.Topics {
		if t.DisplayName != "" {
			p.Topics = append(p.Topics, t.DisplayName)
		}
	}

	p.ComputeContentHash()
	return p
}

// cacheKey 以请求 URL 摘要为缓存键
func cacheKey(reqURL string) string {
	sum := sha256.Sum256([]byte(reqURL))
	return "openalex:works:" + hex.EncodeToString(sum[:16])
}

// OpenAlex Works API 响应结构
type worksResponse struct {
	Meta    worksMeta `json:"meta"`
	Results []work    `json:"results"`
}

type worksMeta struct {
	Count   int `json:"count"`
	PerPage int `json:"per_page"`
	Page    int `json:"page"`
}

type work struct {
	ID                           string               `json:"id"`
	Title                        string               `json:"title"`
	DOI                          string               `json:"doi"`
	PublicationDate              string               `json:"publication_date"`
	PublicationYear              int                  `json:"publication_year"`
	Authorships                  []authorship         `json:"authorships"`
	AbstractInvertedIndex        map[string][]int     `json:"abstract_inverted_index"`
	PrimaryLocation              location             `json:"primary_location"`
	OpenAccess                   openAccess           `json:"open_access"`
	FWCI                         float64              `json:"fwci"`
	CitationNormalizedPercentile normalizedPercentile `json:"citation_normalized_percentile"`
	CitedByCount                 int                  `json:"cited_by_count"`
	CountsByYear                 []yearCount          `json:"counts_by_year"`
	Topics                       []topic              `json:"topics"`
}

type authorship struct {
	Author author `json:"author"`
}

type author struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type location struct {
	LandingPageURL string `json:"landing_page_url"`
	PDFURL         string `json:"pdf_url"`
}

type openAccess struct {
	IsOA     bool   `json:"is_oa"`
	OAStatus string `json:"oa_status"`
	OAURL    string `json:"oa_url"`
}

type normalizedPercentile struct {
	Value float64 `json:"value"`
}

type yearCount struct {
	Year         int `json:"year"`
	CitedByCount int `json:"cited_by_count"`
}

type topic struct {
	DisplayName string `json:"display_name"`
}
