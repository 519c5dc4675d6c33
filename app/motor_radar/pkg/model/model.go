package model

import "time"

// Product 待分析的车型描述
type Product struct {
	Company       string   `json:"company" yaml:"company"`
	Model         string   `json:"model" yaml:"model"`
	SearchQueries []string `json:"search_queries" yaml:"search_queries"`
}

// Identifier 生成用于文件命名的标识符
func (p Product) Identifier() string {
	id := p.Company + "_" + p.Model
	out := make([]rune, 0, len(id))
	for _, r := range id {
		if r == ' ' {
			r = '_'
		}
		out = append(out, r)
	}
	return string(out)
}

// JobStatus 任务生命周期状态
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Terminal 判断是否为终态
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// JobCounters 任务进度计数器，只增不减
type JobCounters struct {
	VideosFound       int `json:"videos_found"`
	CommentsCollected int `json:"comments_collected"`
	VideosTranscribed int `json:"videos_transcribed"`
	VideosAnalyzed    int `json:"videos_analyzed"`
}

// Job 一次流水线运行的状态记录
// 运行期间仅由编排器写入，外部只读轮询
type Job struct {
	ID          string      `json:"id"`
	Product     Product     `json:"product"`
	Status      JobStatus   `json:"status"`
	Counters    JobCounters `json:"counters"`
	Progress    string      `json:"progress"`
	Error       string      `json:"error,omitempty"`
	ReportFile  string      `json:"report_file,omitempty"`
	ExportFile  string      `json:"export_file,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
}

// VideoCandidate 搜索发现的候选视频，创建后不可变
type VideoCandidate struct {
	ID          string    `json:"video_id"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Channel     string    `json:"channel"`
	PublishedAt time.Time `json:"published_at"`
	Views       int64     `json:"views"`
	Description string    `json:"description"`
}

// CommentSet 一个视频的评论集合（按相关性排序）
// Failed 表示抓取失败被降级为空集
type CommentSet struct {
	VideoID  string   `json:"video_id"`
	Comments []string `json:"comments"`
	Failed   bool     `json:"failed,omitempty"`
}

// TranscriptSource 字幕文本的来源
type TranscriptSource string

const (
	TranscriptCaption TranscriptSource = "caption"
	TranscriptWhisper TranscriptSource = "whisper"
	TranscriptNone    TranscriptSource = "none"
)

// Transcript 一个视频的字幕文本
// Source 为 none 表示未获取到字幕，属于正常终态而非错误
type Transcript struct {
	VideoID string           `json:"video_id"`
	Text    string           `json:"text"`
	Source  TranscriptSource `json:"source"`
}

// Sentiment 情感分类的固定枚举
// 在分析器边界归一化，下游消费方不再解析自由文本
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
	SentimentUnknown  Sentiment = "unknown"
)

// CompetitorMention 竞品提及
type CompetitorMention struct {
	Name       string `json:"competitor"`
	Comparison string `json:"comparison_summary"`
}

// Provenance 记录本条分析使用了哪些输入
type Provenance struct {
	HasComments   bool `json:"has_comments"`
	HasTranscript bool `json:"has_transcript"`
	Degraded      bool `json:"degraded"`
}

// AnalysisRecord 单个视频的结构化分析结论，创建后不可变
type AnalysisRecord struct {
	VideoID     string              `json:"video_id"`
	Sentiment   Sentiment           `json:"sentiment"`
	Score       int                 `json:"score"`
	Strengths   []string            `json:"key_strengths"`
	Weaknesses  []string            `json:"key_weaknesses"`
	Competitors []CompetitorMention `json:"competitor_mentions"`
	Verdict     string              `json:"final_verdict"`
	Provenance  Provenance          `json:"provenance"`
}

// Stage 流水线阶段游标
type Stage string

const (
	StageDiscovery     Stage = "discovery"
	StageTranscription Stage = "transcription"
	StageAnalysis      Stage = "analysis"
	StageReports       Stage = "reports"
	StageDone          Stage = "done"
)

// PipelineState 编排器的工作集，仅存活于单次运行期间
type PipelineState struct {
	Job         *Job
	Candidates  []VideoCandidate
	Comments    map[string]CommentSet
	Transcripts map[string]Transcript
	Records     map[string]AnalysisRecord
	Stage       Stage
}

// NewPipelineState 初始化一次运行的工作集
func NewPipelineState(job *Job) *PipelineState {
	return &PipelineState{
		Job:         job,
		Comments:    make(map[string]CommentSet),
		Transcripts: make(map[string]Transcript),
		Records:     make(map[string]AnalysisRecord),
		Stage:       StageDiscovery,
	}
}
