package analyzer

import (
	"testing"

	dm "github.com/iWorld-y/motor_radar/app/motor_radar/pkg/model"
)

func TestParseResponse_StrictJSON(t *testing.T) {
	raw := `{
		"sentiment_analysis": {"overall_sentiment": "positive", "score": 85},
		"key_strengths": ["주행감", "디자인"],
		"key_weaknesses": ["가격"],
		"competitor_mentions": [{"competitor": "쏘렌토", "comparison_summary": "공간은 쏘렌토가 우세"}],
		"final_verdict": "가성비가 좋은 선택"
	}`

	resp, degraded := parseResponse(raw)
	if degraded {
		t.Fatal("parseResponse() degraded = true, want false")
	}
	if resp.SentimentAnalysis.OverallSentiment != "positive" {
		t.Errorf("sentiment = %q", resp.SentimentAnalysis.OverallSentiment)
	}
	if resp.SentimentAnalysis.Score != 85 {
		t.Errorf("score = %d, want 85", resp.SentimentAnalysis.Score)
	}
	if len(resp.KeyStrengths) != 2 || len(resp.KeyWeaknesses) != 1 {
		t.Errorf("strengths/weaknesses = %v / %v", resp.KeyStrengths, resp.KeyWeaknesses)
	}
	if len(resp.CompetitorMentions) != 1 || resp.CompetitorMentions[0].Competitor != "쏘렌토" {
		t.Errorf("competitors = %v", resp.CompetitorMentions)
	}
}

func TestParseResponse_MarkdownFences(t *testing.T) {
	raw := "```json\n{\"sentiment_analysis\": {\"overall_sentiment\": \"negative\", \"score\": 20}, \"final_verdict\": \"별로\"}\n```"

	resp, degraded := parseResponse(raw)
	if degraded {
		t.Fatal("fenced JSON should parse without degradation")
	}
	if resp.SentimentAnalysis.OverallSentiment != "negative" || resp.SentimentAnalysis.Score != 20 {
		t.Errorf("got %+v", resp.SentimentAnalysis)
	}
}

func TestParseResponse_UppercaseKeys(t *testing.T) {
	raw := `{"Sentiment_Analysis": {"overall_sentiment": "neutral", "score": 55}, "Final_Verdict": "평범"}`

	resp, degraded := parseResponse(raw)
	if degraded {
		t.Fatal("case drift should be tolerated without degradation")
	}
	if resp.SentimentAnalysis.OverallSentiment != "neutral" {
		t.Errorf("sentiment = %q", resp.SentimentAnalysis.OverallSentiment)
	}
}

func TestParseResponse_HeuristicFallback(t *testing.T) {
	// 尾部多余逗号使严格解析失败
	raw := `{"sentiment_analysis": {"overall_sentiment": "positive", "score": 70,}, "key_strengths": ["조용함", "연비"], "final_verdict": "추천",}`

	resp, degraded := parseResponse(raw)
	if !degraded {
		t.Fatal("broken JSON must be flagged as degraded")
	}
	if resp.SentimentAnalysis.OverallSentiment != "positive" {
		t.Errorf("sentiment = %q", resp.SentimentAnalysis.OverallSentiment)
	}
	if resp.SentimentAnalysis.Score != 70 {
		t.Errorf("score = %d, want 70", resp.SentimentAnalysis.Score)
	}
	if len(resp.KeyStrengths) != 2 {
		t.Errorf("strengths = %v", resp.KeyStrengths)
	}
	if resp.FinalVerdict != "추천" {
		t.Errorf("verdict = %q", resp.FinalVerdict)
	}
}

func TestParseResponse_Garbage(t *testing.T) {
	resp, degraded := parseResponse("죄송합니다, 분석할 수 없습니다.")
	if !degraded {
		t.Fatal("garbage must be flagged as degraded")
	}
	if resp.SentimentAnalysis.Score != 50 {
		t.Errorf("fallback score = %d, want 50", resp.SentimentAnalysis.Score)
	}
}

func TestNormalizeSentiment(t *testing.T) {
	cases := []struct {
		in   string
		want dm.Sentiment
	}{
		{"positive", dm.SentimentPositive},
		{"Positive", dm.SentimentPositive},
		{"very positive", dm.SentimentPositive},
		{"negative", dm.SentimentNegative},
		{"neutral", dm.SentimentNeutral},
		{"mixed", dm.SentimentNeutral},
		{"긍정적", dm.SentimentPositive},
		{"부정", dm.SentimentNegative},
		{"중립", dm.SentimentNeutral},
		{"正面", dm.SentimentPositive},
		{"消极", dm.SentimentNegative},
		{"", dm.SentimentUnknown},
		{"no idea", dm.SentimentUnknown},
	}

	for _, tc := range cases {
		if got := NormalizeSentiment(tc.in); got != tc.want {
			t.Errorf("NormalizeSentiment(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
