package youtube

import (
	"context"
	"time"

	"github.com/iWorld-y/motor_radar/app/motor_radar/pkg/model"
)

// VideoSearcher 定义视频搜索能力
// 实现方负责把厂商响应映射为 VideoCandidate，调用方不感知线格式
type VideoSearcher interface {
	Search(ctx context.Context, req *SearchRequest) ([]model.VideoCandidate, error)
}

// CommentFetcher 定义评论抓取能力
// 视频关闭评论时返回空切片而非错误
type CommentFetcher interface {
	TopComments(ctx context.Context, videoID string, max int) ([]string, error)
}

// SearchRequest 通用视频搜索请求
type SearchRequest struct {
	Query           string
	MaxResults      int
	PublishedAfter  time.Time
	PublishedBefore time.Time
	RegionCode      string
}
