package analyzer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/motor_radar/app/motor_radar/pkg/logger"
	dm "github.com/iWorld-y/motor_radar/app/motor_radar/pkg/model"
)

// Analyzer 单视频内容分析器
// 把标题+简介+评论+字幕拼成一个提示词，请求结构化 JSON 结果
type Analyzer struct {
	chatModel   model.ChatModel
	limiter     *rate.Limiter
	maxComments int
	maxRetries  int
	baseDelay   time.Duration
}

// NewAnalyzer 创建分析器实例
func NewAnalyzer(cm model.ChatModel, limiter *rate.Limiter, maxComments int) *Analyzer {
	if maxComments <= 0 {
		maxComments = 50
	}
	return &Analyzer{
		chatModel:   cm,
		limiter:     limiter,
		maxComments: maxComments,
		maxRetries:  3,
		baseDelay:   2 * time.Second,
	}
}

// Analyze 分析一个视频并返回结构化结论
// 解析失败或重试耗尽时返回带降级标记的默认记录，从不让单个视频中止任务
func (a *Analyzer) Analyze(ctx context.Context, candidate dm.VideoCandidate, comments dm.CommentSet, transcript dm.Transcript) dm.AnalysisRecord {
	record := dm.AnalysisRecord{
		VideoID:   candidate.ID,
		Sentiment: dm.SentimentUnknown,
		Score:     50,
		Provenance: dm.Provenance{
			HasComments:   len(comments.Comments) > 0,
			HasTranscript: transcript.Source != dm.TranscriptNone,
		},
	}

	prompt := a.buildPrompt(candidate, comments, transcript)

	raw, err := a.generate(ctx, prompt)
	if err != nil {
		logger.Log.Errorf("视频分析失败 [%s]: %v", candidate.ID, err)
		record.Provenance.Degraded = true
		return record
	}

	parsed, degraded := parseResponse(raw)
	record.Sentiment = NormalizeSentiment(parsed.SentimentAnalysis.OverallSentiment)
	if parsed.SentimentAnalysis.Score >= 0 && parsed.SentimentAnalysis.Score <= 100 {
		record.Score = parsed.SentimentAnalysis.Score
	}
	record.Strengths = parsed.KeyStrengths
	record.Weaknesses = parsed.KeyWeaknesses
	for _, c := range parsed.CompetitorMentions {
		if c.Competitor != "" {
			record.Competitors = append(record.Competitors, dm.CompetitorMention{
				Name:       c.Competitor,
				Comparison: c.ComparisonSummary,
			})
		}
	}
	record.Verdict = parsed.FinalVerdict
	record.Provenance.Degraded = degraded

	return record
}

// buildPrompt 拼装分析提示词
func (a *Analyzer) buildPrompt(candidate dm.VideoCandidate, comments dm.CommentSet, transcript dm.Transcript) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("以下是一个关于汽车产品的 YouTube 视频资料，请阅读并分析：\n\n标题: %s\n频道: %s\n", candidate.Title, candidate.Channel))
	if candidate.Description != "" {
		sb.WriteString(fmt.Sprintf("简介: %s\n", candidate.Description))
	}

	if len(comments.Comments) > 0 {
		sb.WriteString("\n热门评论:\n")
		top := comments.Comments
		if len(top) > a.maxComments {
			top = top[:a.maxComments]
		}
		for i, c := range top {
			sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, c))
		}
	}

	if transcript.Source != dm.TranscriptNone && transcript.Text != "" {
		sb.WriteString("\n视频字幕:\n")
		sb.WriteString(transcript.Text)
		sb.WriteString("\n")
	}

	sb.WriteString(`
你是一个资深汽车行业分析师。请根据以上资料总结观点，并严格按照以下 JSON 格式返回，不要包含任何 markdown 标记：
{
	"sentiment_analysis": {
		"overall_sentiment": "positive",
		"score": 85
	},
	"key_strengths": ["优点1", "优点2"],
	"key_weaknesses": ["缺点1", "缺点2"],
	"competitor_mentions": [
		{
			"competitor": "竞品名称",
			"comparison_summary": "对比结论"
		}
	],
	"final_verdict": "一段话的最终结论"
}
说明：overall_sentiment 只能取 positive/neutral/negative 三者之一；score 为 0-100 的整数，0 表示极度负面，100 表示极度正面。`)

	return sb.String()
}

// generate 调用 LLM (带重试机制)
func (a *Analyzer) generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error

	for i := 0; i <= a.maxRetries; i++ {
		if a.limiter != nil {
			if err := a.limiter.Wait(ctx); err != nil {
				return "", err
			}
		}

		messages := []*schema.Message{
			{Role: schema.System, Content: "你是一个 JSON 生成器。请只输出 JSON 字符串。"},
			{Role: schema.User, Content: prompt},
		}

		resp, err := a.chatModel.Generate(ctx, messages)
		if err != nil {
			if isTransient(err) {
				lastErr = err
				if i < a.maxRetries {
					select {
					case <-time.After(a.baseDelay * time.Duration(1<<i)):
						continue
					case <-ctx.Done():
						return "", ctx.Err()
					}
				}
				break
			}
			return "", err
		}

		return resp.Content, nil
	}
	return "", fmt.Errorf("llm retries exhausted: %w", lastErr)
}

// isTransient 识别限流/瞬时错误
func isTransient(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "too many requests") ||
		strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "temporarily")
}
