package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iWorld-y/motor_radar/app/motor_radar/pkg/errs"
	"github.com/iWorld-y/motor_radar/app/motor_radar/pkg/model"
)

const defaultBaseURL = "https://www.googleapis.com/youtube/v3"

// Client YouTube Data API v3 客户端
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewClient 创建一个新的 Data API 客户端
func NewClient(apiKey string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// NewClientWithBaseURL 允许测试替换接入点
func NewClientWithBaseURL(apiKey, baseURL string, timeout time.Duration) *Client {
	c := NewClient(apiKey, timeout)
	c.baseURL = baseURL
	return c
}

// Ensure Client implements both capabilities
var (
	_ VideoSearcher  = (*Client)(nil)
	_ CommentFetcher = (*Client)(nil)
)

// searchResponse search.list 响应
type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
	} `json:"items"`
}

// videosResponse videos.list 响应
type videosResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			Description  string `json:"description"`
			ChannelTitle string `json:"channelTitle"`
			PublishedAt  string `json:"publishedAt"`
		} `json:"snippet"`
		Statistics struct {
			ViewCount string `json:"viewCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// commentsResponse commentThreads.list 响应
type commentsResponse struct {
	Items []struct {
		Snippet struct {
			TopLevelComment struct {
				Snippet struct {
					TextDisplay string `json:"textDisplay"`
				} `json:"snippet"`
			} `json:"topLevelComment"`
		} `json:"snippet"`
	} `json:"items"`
}

// apiError Data API 错误响应
type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

// Search 按相关性搜索视频并补全元数据
func (c *Client) Search(ctx context.Context, req *SearchRequest) ([]model.VideoCandidate, error) {
	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("type", "video")
	q.Set("order", "relevance")
	q.Set("q", req.Query)
	if req.MaxResults > 0 {
		q.Set("maxResults", strconv.Itoa(min(req.MaxResults, 50)))
	}
	if !req.PublishedAfter.IsZero() {
		q.Set("publishedAfter", req.PublishedAfter.UTC().Format(time.RFC3339))
	}
	if !req.PublishedBefore.IsZero() {
		q.Set("publishedBefore", req.PublishedBefore.UTC().Format(time.RFC3339))
	}
	if req.RegionCode != "" {
		q.Set("regionCode", req.RegionCode)
	}

	var sr searchResponse
	if err := c.get(ctx, "/search", q, &sr); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(sr.Items))
	for _, item := range sr.Items {
		if item.ID.VideoID != "" {
			ids = append(ids, item.ID.VideoID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	return c.videoDetails(ctx, ids)
}

// videoDetails 批量获取视频元数据，保持传入顺序
func (c *Client) videoDetails(ctx context.Context, ids []string) ([]model.VideoCandidate, error) {
	byID := make(map[string]model.VideoCandidate, len(ids))

	// videos.list 单次最多 50 个 id
	for start := 0; start < len(ids); start += 50 {
		end := min(start+50, len(ids))

		q := url.Values{}
		q.Set("part", "snippet,statistics")
		q.Set("id", strings.Join(ids[start:end], ","))

		var vr videosResponse
		if err := c.get(ctx, "/videos", q, &vr); err != nil {
			return nil, err
		}

		for _, item := range vr.Items {
			published, _ := time.Parse(time.RFC3339, item.Snippet.PublishedAt)
			views, _ := strconv.ParseInt(item.Statistics.ViewCount, 10, 64)
			byID[item.ID] = model.VideoCandidate{
				ID:          item.ID,
				URL:         "https://www.youtube.com/watch?v=" + item.ID,
				Title:       item.Snippet.Title,
				Channel:     item.Snippet.ChannelTitle,
				PublishedAt: published,
				Views:       views,
				Description: item.Snippet.Description,
			}
		}
	}

	candidates := make([]model.VideoCandidate, 0, len(ids))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			candidates = append(candidates, c)
		}
	}
	return candidates, nil
}

// TopComments 获取视频的相关性排序顶层评论
func (c *Client) TopComments(ctx context.Context, videoID string, max int) ([]string, error) {
	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("videoId", videoID)
	q.Set("order", "relevance")
	q.Set("textFormat", "plainText")
	if max > 0 {
		q.Set("maxResults", strconv.Itoa(min(max, 100)))
	}

	var cr commentsResponse
	if err := c.get(ctx, "/commentThreads", q, &cr); err != nil {
		// 评论被关闭属于正常空结果
		if strings.Contains(err.Error(), "commentsDisabled") {
			return nil, nil
		}
		return nil, err
	}

	comments := make([]string, 0, len(cr.Items))
	for _, item := range cr.Items {
		text := item.Snippet.TopLevelComment.Snippet.TextDisplay
		if text != "" {
			comments = append(comments, text)
		}
	}
	if max > 0 && len(comments) > max {
		comments = comments[:max]
	}
	return comments, nil
}

// get 执行一次 API 请求并解码响应
func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	q.Set("key", c.apiKey)

	httpReq, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request failed: %w", err)
	}

	res, err := c.client.Do(httpReq)
	if err != nil {
		return errs.External("youtube api request failed: %v", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("read body failed: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		var ae apiError
		if jsonErr := json.Unmarshal(body, &ae); jsonErr == nil && len(ae.Error.Errors) > 0 {
			reason := ae.Error.Errors[0].Reason
			// 配额/限流错误交给上层按瞬时错误处理
			if reason == "quotaExceeded" || reason == "rateLimitExceeded" || res.StatusCode == http.StatusTooManyRequests {
				return errs.External("youtube api %s (status %d)", reason, res.StatusCode)
			}
			return fmt.Errorf("youtube api error (status %d): %s", res.StatusCode, reason)
		}
		return fmt.Errorf("youtube api error (status %d): %s", res.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response failed: %w", err)
	}
	return nil
}
