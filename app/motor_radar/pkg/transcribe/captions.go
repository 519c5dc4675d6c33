package transcribe

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const timedtextURL = "https://video.google.com/timedtext"

// CaptionClient 通过 timedtext 接口拉取已有字幕
type CaptionClient struct {
	baseURL string
	client  *http.Client
}

// NewCaptionClient 创建字幕客户端
func NewCaptionClient(timeout time.Duration) *CaptionClient {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &CaptionClient{
		baseURL: timedtextURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// NewCaptionClientWithBaseURL 允许测试替换接入点
func NewCaptionClientWithBaseURL(baseURL string, timeout time.Duration) *CaptionClient {
	c := NewCaptionClient(timeout)
	c.baseURL = baseURL
	return c
}

var _ CaptionFetcher = (*CaptionClient)(nil)

// transcriptXML timedtext 响应结构
type transcriptXML struct {
	Texts []struct {
		Value string `xml:",chardata"`
	} `xml:"text"`
}

// Fetch 按语言优先级尝试获取字幕，全部未命中返回空串
func (c *CaptionClient) Fetch(ctx context.Context, videoID string, languages []string) (string, error) {
	var lastErr error
	for _, lang := range languages {
		text, err := c.fetchLang(ctx, videoID, lang)
		if err != nil {
			lastErr = err
			continue
		}
		if text != "" {
			return text, nil
		}
	}
	return "", lastErr
}

func (c *CaptionClient) fetchLang(ctx context.Context, videoID, lang string) (string, error) {
	q := url.Values{}
	q.Set("v", videoID)
	q.Set("lang", lang)

	httpReq, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("create request failed: %w", err)
	}

	res, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	// 404 表示该语言没有字幕轨
	if res.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("timedtext error (status %d)", res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("read body failed: %w", err)
	}
	// 没有字幕轨时返回空响应体
	if len(body) == 0 {
		return "", nil
	}

	var tr transcriptXML
	if err := xml.Unmarshal(body, &tr); err != nil {
		return "", fmt.Errorf("decode transcript failed: %w", err)
	}

	parts := make([]string, 0, len(tr.Texts))
	for _, t := range tr.Texts {
		s := strings.TrimSpace(html.UnescapeString(t.Value))
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " "), nil
}
