package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/motor_radar/app/motor_radar/pkg/analyzer"
	"github.com/iWorld-y/motor_radar/app/motor_radar/pkg/collector"
	"github.com/iWorld-y/motor_radar/app/motor_radar/pkg/config"
	"github.com/iWorld-y/motor_radar/app/motor_radar/pkg/discovery"
	"github.com/iWorld-y/motor_radar/app/motor_radar/pkg/errs"
	"github.com/iWorld-y/motor_radar/app/motor_radar/pkg/jobs"
	"github.com/iWorld-y/motor_radar/app/motor_radar/pkg/logger"
	dm "github.com/iWorld-y/motor_radar/app/motor_radar/pkg/model"
	"github.com/iWorld-y/motor_radar/app/motor_radar/pkg/report"
	"github.com/iWorld-y/motor_radar/app/motor_radar/pkg/storage"
	"github.com/iWorld-y/motor_radar/app/motor_radar/pkg/transcribe"
	"github.com/iWorld-y/motor_radar/app/motor_radar/pkg/youtube"
)

// Engine 流水线编排器
// 阶段顺序固定: discovery -> transcription -> analysis -> reports
// 任务状态与计数器仅由本编排器写入
type Engine struct {
	cfg         *config.Config
	registry    jobs.Store
	store       *storage.Storage // 可为 nil，仅内存运行
	discovery   *discovery.Discovery
	collector   *collector.Collector
	transcriber *transcribe.Service
	analyzer    *analyzer.Analyzer
	reporter    *report.Generator

	// 序列化对 Job 的全部写入；计数器被状态接口并发读取
	mu sync.Mutex
}

// NewEngine 创建编排器实例，凭证缺失立即失败
func NewEngine(cfg *config.Config, registry jobs.Store, store *storage.Storage) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ctx := context.Background()
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM 初始化失败: %w", err)
	}

	limit := rate.Limit(float64(cfg.Concurrency.RPM) / 60.0)
	limiter := rate.NewLimiter(limit, cfg.Concurrency.QPS)

	ytTimeout := time.Duration(cfg.YouTube.Timeout) * time.Second
	ytClient := youtube.NewClient(cfg.YouTube.APIKey, ytTimeout)

	downloader, err := transcribe.NewYtDlpDownloader(cfg.Transcribe.YtDlpPath, cfg.Transcribe.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("下载器初始化失败: %w", err)
	}
	stt := transcribe.NewWhisperTranscriber(
		cfg.Transcribe.WhisperPath, cfg.Transcribe.WhisperModel,
		cfg.Transcribe.CaptionLanguages[0], cfg.Transcribe.WorkDir)
	captions := transcribe.NewCaptionClient(ytTimeout)

	return NewEngineWithCapabilities(cfg, registry, store, Capabilities{
		ChatModel:      chatModel,
		Searcher:       ytClient,
		CommentFetcher: ytClient,
		Captions:       captions,
		Downloader:     downloader,
		SpeechToText:   stt,
		Limiter:        limiter,
	}), nil
}

// Capabilities 编排器依赖的全部外部能力，测试时可整体替换
type Capabilities struct {
	ChatModel      model.ChatModel
	Searcher       youtube.VideoSearcher
	CommentFetcher youtube.CommentFetcher
	Captions       transcribe.CaptionFetcher
	Downloader     transcribe.AudioDownloader
	SpeechToText   transcribe.SpeechToText
	Limiter        *rate.Limiter
}

// NewEngineWithCapabilities 注入外部能力创建编排器
func NewEngineWithCapabilities(cfg *config.Config, registry jobs.Store, store *storage.Storage, caps Capabilities) *Engine {
	cfg.ApplyDefaults()
	return &Engine{
		cfg:         cfg,
		registry:    registry,
		store:       store,
		discovery:   discovery.NewDiscovery(caps.Searcher),
		collector:   collector.NewCollector(caps.CommentFetcher, cfg.YouTube.MaxCommentsPerVideo, cfg.Concurrency.Workers),
		transcriber: transcribe.NewService(caps.Captions, caps.Downloader, caps.SpeechToText),
		analyzer:    analyzer.NewAnalyzer(caps.ChatModel, caps.Limiter, cfg.YouTube.MaxCommentsPerVideo),
		reporter:    report.NewGenerator(cfg.Output.Dir, cfg.Output.FontPath, caps.ChatModel, caps.Limiter),
	}
}

// RunOptions 单次运行选项
type RunOptions struct {
	SkipTranscription     bool
	MaxVideos             int
	MaxVideosToTranscribe int
	DateFrom              time.Time
	DateTo                time.Time
	RegionCode            string
	UseExistingSubtitles  bool
	ProgressCallback      func(status string, progress int)
}

// NewJob 创建并登记一个待执行任务
func (e *Engine) NewJob(product dm.Product) dm.Job {
	job := dm.Job{
		ID:        uuid.New().String(),
		Product:   product,
		Status:    dm.JobPending,
		Progress:  "queued",
		CreatedAt: time.Now().UTC(),
	}
	e.registry.Put(job)
	e.persist(job)
	return job
}

// ErrJobFinished 对终态任务重复触发执行
var ErrJobFinished = errors.New("job already reached a terminal status")

// Run 执行完整流水线
// 对已完成/已失败的任务调用是显式错误，不会静默重跑
func (e *Engine) Run(ctx context.Context, jobID string, opts RunOptions) error {
	job, ok := e.registry.Get(jobID)
	if !ok {
		return fmt.Errorf("job %s not found", jobID)
	}
	if job.Status.Terminal() {
		return fmt.Errorf("job %s: %w", jobID, ErrJobFinished)
	}

	logger.Log.Infof("开始执行任务 [%s]: %s %s", job.ID, job.Product.Company, job.Product.Model)
	state := dm.NewPipelineState(&job)

	e.mutate(state, func(j *dm.Job) {
		j.Status = dm.JobRunning
		j.Progress = "discovering videos"
	})
	e.report(opts, "discovering", 5)

	for state.Stage != dm.StageDone {
		if err := e.RunStage(ctx, state, opts); err != nil {
			e.fail(state, err)
			return err
		}
	}

	e.complete(state)
	e.report(opts, "completed", 100)
	logger.Log.Infof("任务完成 [%s]: %d 个视频，%d 条分析", job.ID,
		state.Job.Counters.VideosFound, state.Job.Counters.VideosAnalyzed)
	return nil
}

// RunStage 执行游标指向的单个阶段并推进游标
// 配合持久化的 PipelineState 可用于运维排障时的单阶段重放
func (e *Engine) RunStage(ctx context.Context, state *dm.PipelineState, opts RunOptions) error {
	switch state.Stage {
	case dm.StageDiscovery:
		return e.runDiscovery(ctx, state, opts)
	case dm.StageTranscription:
		return e.runTranscription(ctx, state, opts)
	case dm.StageAnalysis:
		return e.runAnalysis(ctx, state, opts)
	case dm.StageReports:
		return e.runReports(ctx, state, opts)
	case dm.StageDone:
		return nil
	default:
		return fmt.Errorf("unknown stage: %s", state.Stage)
	}
}

// runDiscovery 发现候选视频并收集评论
func (e *Engine) runDiscovery(ctx context.Context, state *dm.PipelineState, opts RunOptions) error {
	maxPerQuery := e.cfg.YouTube.MaxSearchResults
	if opts.MaxVideos > 0 && opts.MaxVideos < maxPerQuery {
		maxPerQuery = opts.MaxVideos
	}

	candidates, err := e.discovery.Discover(ctx, state.Job.Product, discovery.Options{
		MaxResultsPerQuery: maxPerQuery,
		MaxVideos:          opts.MaxVideos,
		PublishedAfter:     opts.DateFrom,
		PublishedBefore:    opts.DateTo,
		RegionCode:         opts.RegionCode,
	})
	if err != nil {
		return err
	}

	state.Candidates = candidates
	e.mutate(state, func(j *dm.Job) {
		j.Counters.VideosFound = len(candidates)
		j.Progress = fmt.Sprintf("found %d videos, collecting comments", len(candidates))
	})
	e.report(opts, "collecting comments", 15)

	state.Comments = e.collector.Collect(ctx, candidates)
	total := 0
	for _, set := range state.Comments {
		total += len(set.Comments)
	}
	e.mutate(state, func(j *dm.Job) {
		j.Counters.CommentsCollected = total
		j.Progress = fmt.Sprintf("collected %d comments", total)
	})
	e.report(opts, "comments collected", 25)

	state.Stage = dm.StageTranscription
	return nil
}

// runTranscription 为部分候选获取字幕，失败一律降级
func (e *Engine) runTranscription(ctx context.Context, state *dm.PipelineState, opts RunOptions) error {
	if opts.SkipTranscription {
		for _, c := range state.Candidates {
			state.Transcripts[c.ID] = dm.Transcript{VideoID: c.ID, Source: dm.TranscriptNone}
		}
		state.Stage = dm.StageAnalysis
		return nil
	}

	e.mutate(state, func(j *dm.Job) {
		j.Progress = "transcribing videos"
	})
	e.report(opts, "transcribing", 30)

	state.Transcripts = e.transcriber.Run(ctx, state.Candidates, transcribe.Options{
		UseExistingSubtitles: opts.UseExistingSubtitles,
		CaptionLanguages:     e.cfg.Transcribe.CaptionLanguages,
		MaxVideos:            opts.MaxVideosToTranscribe,
		PerVideoTimeout:      time.Duration(e.cfg.Transcribe.VideoTimeout) * time.Second,
		Workers:              e.cfg.Concurrency.Workers,
		CleanupAudio:         true,
	})

	transcribed := 0
	for _, t := range state.Transcripts {
		if t.Source != dm.TranscriptNone {
			transcribed++
		}
	}
	e.mutate(state, func(j *dm.Job) {
		j.Counters.VideosTranscribed = transcribed
		j.Progress = fmt.Sprintf("transcribed %d videos", transcribed)
	})
	e.report(opts, "transcribed", 55)

	state.Stage = dm.StageAnalysis
	return nil
}

// runAnalysis 并发分析候选视频，计数器随完成度递增
func (e *Engine) runAnalysis(ctx context.Context, state *dm.PipelineState, opts RunOptions) error {
	e.mutate(state, func(j *dm.Job) {
		j.Progress = "analyzing videos"
	})

	total := len(state.Candidates)
	var wg sync.WaitGroup
	var stateMu sync.Mutex
	sem := make(chan struct{}, e.cfg.Concurrency.Workers)

	for _, candidate := range state.Candidates {
		wg.Add(1)
		go func(candidate dm.VideoCandidate) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			record := e.analyzer.Analyze(ctx, candidate,
				state.Comments[candidate.ID], state.Transcripts[candidate.ID])

			// 计数器递增与进度回调按完成顺序串行化
			stateMu.Lock()
			state.Records[candidate.ID] = record
			done := len(state.Records)
			e.mutate(state, func(j *dm.Job) {
				j.Counters.VideosAnalyzed = done
				j.Progress = fmt.Sprintf("analyzed %d/%d videos", done, total)
			})
			e.report(opts, "analyzing", 55+int(float64(done)/float64(total)*35))
			stateMu.Unlock()
		}(candidate)
	}

	wg.Wait()
	state.Stage = dm.StageReports
	return nil
}

// runReports 聚合结果并落盘产物
func (e *Engine) runReports(ctx context.Context, state *dm.PipelineState, opts RunOptions) error {
	e.mutate(state, func(j *dm.Job) {
		j.Progress = "generating reports"
	})
	e.report(opts, "generating reports", 95)

	outputs, err := e.reporter.Generate(ctx, state.Job.Product, state.Candidates, state.Records)
	if err != nil {
		return errs.NewStageError(string(dm.StageReports), err)
	}

	e.mutate(state, func(j *dm.Job) {
		j.ReportFile = outputs.ReportFile
		j.ExportFile = outputs.ExportFile
	})

	if e.store != nil {
		if err := e.store.SaveResults(state.Job.ID, state.Candidates, state.Records); err != nil {
			logger.Log.Errorf("保存分析结果失败 [%s]: %v", state.Job.ID, err)
		}
	}

	state.Stage = dm.StageDone
	return nil
}

// mutate 串行修改任务并同步注册表与持久层
// 任务一旦进入终态即拒绝任何修改
func (e *Engine) mutate(state *dm.PipelineState, fn func(*dm.Job)) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if state.Job.Status.Terminal() {
		return
	}
	fn(state.Job)
	e.registry.Put(*state.Job)
	e.persist(*state.Job)
}

// fail 记录首个不可恢复错误并终止任务
func (e *Engine) fail(state *dm.PipelineState, err error) {
	logger.Log.Errorf("任务失败 [%s]: %v", state.Job.ID, err)
	e.mutate(state, func(j *dm.Job) {
		j.Status = dm.JobFailed
		j.Error = err.Error()
		j.Progress = "failed"
		now := time.Now().UTC()
		j.CompletedAt = &now
	})
}

func (e *Engine) complete(state *dm.PipelineState) {
	e.mutate(state, func(j *dm.Job) {
		j.Status = dm.JobCompleted
		j.Progress = "completed"
		now := time.Now().UTC()
		j.CompletedAt = &now
	})
}

// persist best-effort 持久化快照，失败只记日志
func (e *Engine) persist(job dm.Job) {
	if e.store == nil {
		return
	}
	if err := e.store.SaveJob(job); err != nil {
		logger.Log.Errorf("保存任务快照失败 [%s]: %v", job.ID, err)
	}
}

func (e *Engine) report(opts RunOptions, status string, progress int) {
	if opts.ProgressCallback != nil {
		opts.ProgressCallback(status, progress)
	}
}

// Presets 暴露预置车型配置表
func (e *Engine) Presets() map[string]dm.Product {
	return e.cfg.Presets
}

// OutputDir 产物目录
func (e *Engine) OutputDir() string {
	return e.cfg.Output.Dir
}
