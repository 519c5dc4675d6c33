package discovery

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/iWorld-y/motor_radar/app/motor_radar/pkg/errs"
	"github.com/iWorld-y/motor_radar/app/motor_radar/pkg/logger"
	"github.com/iWorld-y/motor_radar/app/motor_radar/pkg/model"
	"github.com/iWorld-y/motor_radar/app/motor_radar/pkg/youtube"
)

// Options 发现阶段的过滤参数
type Options struct {
	MaxResultsPerQuery int
	MaxVideos          int
	PublishedAfter     time.Time
	PublishedBefore    time.Time
	RegionCode         string
}

// Discovery 视频发现阶段
type Discovery struct {
	searcher youtube.VideoSearcher
}

// NewDiscovery 创建发现阶段实例
func NewDiscovery(searcher youtube.VideoSearcher) *Discovery {
	return &Discovery{searcher: searcher}
}

// Discover 对产品的每个查询执行搜索并合并去重
// 单个查询失败只记录日志跳过；全部查询失败或结果为空才算阶段失败
// 去重键为视频 ID，首次出现的元数据保留
func (d *Discovery) Discover(ctx context.Context, product model.Product, opts Options) ([]model.VideoCandidate, error) {
	if len(product.SearchQueries) == 0 {
		return nil, errs.NewStageError(string(model.StageDiscovery), fmt.Errorf("no search queries for %s %s", product.Company, product.Model))
	}

	seen := make(map[string]struct{})
	var merged []model.VideoCandidate
	var failed int
	var lastErr error

	for _, query := range product.SearchQueries {
		req := &youtube.SearchRequest{
			Query:           query,
			MaxResults:      opts.MaxResultsPerQuery,
			PublishedAfter:  opts.PublishedAfter,
			PublishedBefore: opts.PublishedBefore,
			RegionCode:      opts.RegionCode,
		}

		results, err := d.searcher.Search(ctx, req)
		if err != nil {
			failed++
			lastErr = err
			logger.Log.Errorf("搜索查询失败 [%s]: %v", query, err)
			continue
		}

		for _, c := range results {
			if _, ok := seen[c.ID]; ok {
				continue
			}
			seen[c.ID] = struct{}{}
			merged = append(merged, c)
		}
	}

	if failed == len(product.SearchQueries) {
		return nil, errs.NewStageError(string(model.StageDiscovery), fmt.Errorf("all %d search queries failed: %w", failed, lastErr))
	}

	// 标题相关性过滤：标题至少命中一个产品关键词
	keywords := append(strings.Fields(product.Model), strings.Fields(product.Company)...)
	filtered := merged[:0]
	for _, c := range merged {
		if titleMatches(c.Title, keywords) {
			filtered = append(filtered, c)
		}
	}

	if len(filtered) == 0 {
		return nil, errs.NewStageError(string(model.StageDiscovery), fmt.Errorf("no videos found for %s %s", product.Company, product.Model))
	}

	// 按播放量降序，稳定排序保持搜索相关性次序
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Views > filtered[j].Views
	})

	if opts.MaxVideos > 0 && len(filtered) > opts.MaxVideos {
		filtered = filtered[:opts.MaxVideos]
	}

	logger.Log.Infof("发现阶段完成: %d 个候选视频 (%d 个查询失败)", len(filtered), failed)
	return filtered, nil
}

func titleMatches(title string, keywords []string) bool {
	lower := strings.ToLower(title)
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
