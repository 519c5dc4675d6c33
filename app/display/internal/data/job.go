package data

import (
	"context"
	"fmt"

	"github.com/iWorld-y/motor_radar/app/display/internal/biz"
)

type jobRepo struct {
	data *Data
}

// NewJobRepo 创建任务结果仓储
func NewJobRepo(data *Data) biz.JobRepo {
	return &jobRepo{data: data}
}

var _ biz.JobRepo = (*jobRepo)(nil)

// Results 读取逐视频分析结果，纯内存模式下返回空集
func (r *jobRepo) Results(ctx context.Context, jobID string) ([]biz.VideoResult, error) {
	if r.data.store == nil {
		return []biz.VideoResult{}, nil
	}

	rows, err := r.data.store.GetResults(jobID)
	if err != nil {
		return nil, err
	}

	results := make([]biz.VideoResult, 0, len(rows))
	for _, row := range rows {
		results = append(results, biz.VideoResult{
			VideoID:       row.VideoID,
			Title:         row.VideoTitle,
			Channel:       row.ChannelName,
			URL:           fmt.Sprintf("https://www.youtube.com/watch?v=%s", row.VideoID),
			Sentiment:     row.Sentiment,
			Score:         row.Score,
			Strengths:     row.Strengths,
			Weaknesses:    row.Weaknesses,
			Verdict:       row.Verdict,
			HasTranscript: row.HasTranscript,
		})
	}
	return results, nil
}

// DeleteJob 删除持久化的任务及其级联的结果行
func (r *jobRepo) DeleteJob(ctx context.Context, jobID string) error {
	if r.data.store == nil {
		return nil
	}
	return r.data.store.DeleteJob(jobID)
}
