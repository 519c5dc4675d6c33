package collector

import (
	"context"
	"sync"

	"github.com/iWorld-y/motor_radar/app/motor_radar/pkg/logger"
	"github.com/iWorld-y/motor_radar/app/motor_radar/pkg/model"
	"github.com/iWorld-y/motor_radar/app/motor_radar/pkg/youtube"
)

// Collector 评论收集阶段
// 单个视频失败降级为空集并标记 Failed，整个阶段从不因此中止
type Collector struct {
	fetcher     youtube.CommentFetcher
	maxComments int
	workers     int
}

// NewCollector 创建评论收集器
func NewCollector(fetcher youtube.CommentFetcher, maxComments, workers int) *Collector {
	if workers <= 0 {
		workers = 1
	}
	return &Collector{fetcher: fetcher, maxComments: maxComments, workers: workers}
}

// Collect 并发收集所有候选视频的评论
func (c *Collector) Collect(ctx context.Context, candidates []model.VideoCandidate) map[string]model.CommentSet {
	results := make(map[string]model.CommentSet, len(candidates))

	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, c.workers)

	for _, candidate := range candidates {
		wg.Add(1)
		go func(candidate model.VideoCandidate) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			set := c.collectOne(ctx, candidate)

			mu.Lock()
			results[candidate.ID] = set
			mu.Unlock()
		}(candidate)
	}

	wg.Wait()
	return results
}

func (c *Collector) collectOne(ctx context.Context, candidate model.VideoCandidate) model.CommentSet {
	comments, err := c.fetcher.TopComments(ctx, candidate.ID, c.maxComments)
	if err != nil {
		logger.Log.Warnf("评论抓取失败 [%s]: %v", candidate.ID, err)
		return model.CommentSet{VideoID: candidate.ID, Failed: true}
	}
	return model.CommentSet{VideoID: candidate.ID, Comments: comments}
}
