package report

import (
	"fmt"
	"sort"

	dm "github.com/iWorld-y/motor_radar/app/motor_radar/pkg/model"
)

// Summary 全部分析记录的聚合统计
// 纯函数产物，相同输入得到逐字节相同的统计
type Summary struct {
	Total       int
	BySentiment map[dm.Sentiment]int
	AvgScore    int
	Competitors []string // 出现次数降序，同次数按名称排序
}

// Aggregate 聚合分析记录
func Aggregate(records []dm.AnalysisRecord) Summary {
	s := Summary{
		BySentiment: map[dm.Sentiment]int{
			dm.SentimentPositive: 0,
			dm.SentimentNeutral:  0,
			dm.SentimentNegative: 0,
			dm.SentimentUnknown:  0,
		},
	}

	compCount := make(map[string]int)
	scoreSum := 0
	for _, r := range records {
		s.Total++
		s.BySentiment[r.Sentiment]++
		scoreSum += r.Score
		for _, c := range r.Competitors {
			compCount[c.Name]++
		}
	}
	if s.Total > 0 {
		s.AvgScore = scoreSum / s.Total
	}

	for name := range compCount {
		s.Competitors = append(s.Competitors, name)
	}
	sort.Slice(s.Competitors, func(i, j int) bool {
		if compCount[s.Competitors[i]] != compCount[s.Competitors[j]] {
			return compCount[s.Competitors[i]] > compCount[s.Competitors[j]]
		}
		return s.Competitors[i] < s.Competitors[j]
	})

	return s
}

// Line 统计的单行文本表示，顺序固定
func (s Summary) Line() string {
	return fmt.Sprintf("total=%d positive=%d neutral=%d negative=%d unknown=%d avg_score=%d",
		s.Total,
		s.BySentiment[dm.SentimentPositive],
		s.BySentiment[dm.SentimentNeutral],
		s.BySentiment[dm.SentimentNegative],
		s.BySentiment[dm.SentimentUnknown],
		s.AvgScore)
}
