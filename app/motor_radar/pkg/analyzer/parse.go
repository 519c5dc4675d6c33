package analyzer

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	dm "github.com/iWorld-y/motor_radar/app/motor_radar/pkg/model"
)

// response LLM 返回的结构化结果
type response struct {
	SentimentAnalysis struct {
		OverallSentiment string `json:"overall_sentiment"`
		Score            int    `json:"score"`
	} `json:"sentiment_analysis"`
	KeyStrengths       []string `json:"key_strengths"`
	KeyWeaknesses      []string `json:"key_weaknesses"`
	CompetitorMentions []struct {
		Competitor        string `json:"competitor"`
		ComparisonSummary string `json:"comparison_summary"`
	} `json:"competitor_mentions"`
	FinalVerdict string `json:"final_verdict"`
}

// parseResponse 两阶段解析:
// 先做严格 JSON 解码，失败后走正则启发式兜底
// 返回的 degraded 标记兜底路径或完全失败
func parseResponse(raw string) (response, bool) {
	clean := stripFences(raw)

	// encoding/json 匹配字段名时不区分大小写，模型输出的大小写漂移在这一步已被吸收
	var resp response
	if err := json.Unmarshal([]byte(clean), &resp); err == nil {
		return resp, false
	}

	return extractHeuristic(clean), true
}

// stripFences 去掉 markdown 代码块包装
func stripFences(s string) string {
	clean := strings.TrimSpace(s)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	return strings.TrimSpace(clean)
}

var (
	reSentiment = regexp.MustCompile(`(?i)"overall_sentiment"\s*:\s*"([^"]+)"`)
	reScore     = regexp.MustCompile(`(?i)"score"\s*:\s*(\d+)`)
	reVerdict   = regexp.MustCompile(`(?i)"final_verdict"\s*:\s*"([^"]+)"`)
	reStrengths = regexp.MustCompile(`(?is)"key_strengths"\s*:\s*\[(.*?)\]`)
	reWeakness  = regexp.MustCompile(`(?is)"key_weaknesses"\s*:\s*\[(.*?)\]`)
	reListItem  = regexp.MustCompile(`"([^"]+)"`)
)

// extractHeuristic 从非法 JSON 中尽量抢救字段
func extractHeuristic(s string) response {
	var resp response
	resp.SentimentAnalysis.Score = 50

	if m := reSentiment.FindStringSubmatch(s); m != nil {
		resp.SentimentAnalysis.OverallSentiment = m[1]
	}
	if m := reScore.FindStringSubmatch(s); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			resp.SentimentAnalysis.Score = n
		}
	}
	if m := reVerdict.FindStringSubmatch(s); m != nil {
		resp.FinalVerdict = m[1]
	}
	if m := reStrengths.FindStringSubmatch(s); m != nil {
		resp.KeyStrengths = extractList(m[1])
	}
	if m := reWeakness.FindStringSubmatch(s); m != nil {
		resp.KeyWeaknesses = extractList(m[1])
	}
	return resp
}

func extractList(s string) []string {
	var items []string
	for _, m := range reListItem.FindAllStringSubmatch(s, -1) {
		items = append(items, m[1])
	}
	return items
}

// sentimentAliases 多语言情感词到枚举的映射
// 在分析器边界归一化，下游不再解析自由文本
var sentimentAliases = map[string]dm.Sentiment{
	"positive": dm.SentimentPositive,
	"negative": dm.SentimentNegative,
	"neutral":  dm.SentimentNeutral,
	"mixed":    dm.SentimentNeutral,
	"긍정":       dm.SentimentPositive,
	"긍정적":      dm.SentimentPositive,
	"부정":       dm.SentimentNegative,
	"부정적":      dm.SentimentNegative,
	"중립":       dm.SentimentNeutral,
	"중립적":      dm.SentimentNeutral,
	"正面":       dm.SentimentPositive,
	"积极":       dm.SentimentPositive,
	"负面":       dm.SentimentNegative,
	"消极":       dm.SentimentNegative,
	"中立":       dm.SentimentNeutral,
	"中性":       dm.SentimentNeutral,
}

// NormalizeSentiment 把自由文本情感词归一化为固定枚举
func NormalizeSentiment(raw string) dm.Sentiment {
	token := strings.ToLower(strings.TrimSpace(raw))
	if token == "" {
		return dm.SentimentUnknown
	}
	if s, ok := sentimentAliases[token]; ok {
		return s
	}
	// 容忍 "very positive" / "somewhat negative" 这类修饰
	for alias, s := range sentimentAliases {
		if strings.Contains(token, alias) {
			return s
		}
	}
	return dm.SentimentUnknown
}
