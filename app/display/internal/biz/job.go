package biz

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/motor_radar/app/motor_radar/pkg/engine"
	"github.com/iWorld-y/motor_radar/app/motor_radar/pkg/jobs"
	"github.com/iWorld-y/motor_radar/app/motor_radar/pkg/model"
)

// VideoResult 对外暴露的单视频分析结果
type VideoResult struct {
	VideoID       string `json:"video_id"`
	Title         string `json:"title"`
	Channel       string `json:"channel"`
	URL           string `json:"url"`
	Sentiment     string `json:"sentiment"`
	Score         int    `json:"score"`
	Strengths     string `json:"strengths"`
	Weaknesses    string `json:"weaknesses"`
	Verdict       string `json:"final_verdict"`
	HasTranscript bool   `json:"has_transcript"`
}

// JobRepo 任务结果的持久化访问
type JobRepo interface {
	Results(ctx context.Context, jobID string) ([]VideoResult, error)
	DeleteJob(ctx context.Context, jobID string) error
}

// SubmitOptions 提交任务时可调的运行参数
// 指针字段用于区分"未给出"与显式的零值
type SubmitOptions struct {
	SkipTranscription     *bool  `json:"skip_transcription"`
	MaxVideos             *int   `json:"max_videos"`
	MaxVideosToTranscribe *int   `json:"max_videos_to_transcribe"`
	UseExistingSubtitles  *bool  `json:"use_existing_subtitles"`
	DateFrom              string `json:"date_from"`
	DateTo                string `json:"date_to"`
	RegionCode            string `json:"region_code"`
}

// JobUseCase 任务编排用例
// 提交后在后台 goroutine 中执行流水线，状态通过注册表轮询
type JobUseCase struct {
	eng      *engine.Engine
	registry jobs.Store
	repo     JobRepo
	log      *log.Helper
}

func NewJobUseCase(eng *engine.Engine, registry jobs.Store, repo JobRepo, logger log.Logger) *JobUseCase {
	return &JobUseCase{
		eng:      eng,
		registry: registry,
		repo:     repo,
		log:      log.NewHelper(logger),
	}
}

// SubmitCustom 提交自定义车型分析任务
func (uc *JobUseCase) SubmitCustom(product model.Product, opts SubmitOptions) (model.Job, error) {
	if product.Company == "" || product.Model == "" {
		return model.Job{}, fmt.Errorf("company and model are required")
	}
	if len(product.SearchQueries) == 0 {
		product.SearchQueries = []string{
			product.Company + " " + product.Model,
			product.Model + " 리뷰",
		}
	}
	return uc.submit(product, opts)
}

// SubmitPreset 提交预置车型分析任务
func (uc *JobUseCase) SubmitPreset(name string, opts SubmitOptions) (model.Job, error) {
	product, ok := uc.eng.Presets()[name]
	if !ok {
		return model.Job{}, fmt.Errorf("unknown preset: %s", name)
	}
	return uc.submit(product, opts)
}

func (uc *JobUseCase) submit(product model.Product, opts SubmitOptions) (model.Job, error) {
	runOpts, err := uc.toRunOptions(opts)
	if err != nil {
		return model.Job{}, err
	}

	job := uc.eng.NewJob(product)
	uc.log.Infof("job %s submitted: %s %s", job.ID, product.Company, product.Model)

	go func() {
		// 后台任务脱离请求上下文执行
		if err := uc.eng.Run(context.Background(), job.ID, runOpts); err != nil {
			uc.log.Errorf("job %s finished with error: %v", job.ID, err)
		}
	}()
	return job, nil
}

func (uc *JobUseCase) toRunOptions(opts SubmitOptions) (engine.RunOptions, error) {
	// 未给出的字段取提交默认值：跳过转写，最多 20 个视频，不复用现有字幕
	out := engine.RunOptions{
		SkipTranscription:     true,
		MaxVideos:             20,
		MaxVideosToTranscribe: 20,
		RegionCode:            opts.RegionCode,
	}
	if opts.SkipTranscription != nil {
		out.SkipTranscription = *opts.SkipTranscription
	}
	if opts.MaxVideos != nil {
		out.MaxVideos = *opts.MaxVideos
	}
	if opts.MaxVideosToTranscribe != nil {
		out.MaxVideosToTranscribe = *opts.MaxVideosToTranscribe
	}
	if opts.UseExistingSubtitles != nil {
		out.UseExistingSubtitles = *opts.UseExistingSubtitles
	}
	var err error
	if opts.DateFrom != "" {
		if out.DateFrom, err = time.Parse("2006-01-02", opts.DateFrom); err != nil {
			return out, fmt.Errorf("date_from must be YYYY-MM-DD: %q", opts.DateFrom)
		}
	}
	if opts.DateTo != "" {
		if out.DateTo, err = time.Parse("2006-01-02", opts.DateTo); err != nil {
			return out, fmt.Errorf("date_to must be YYYY-MM-DD: %q", opts.DateTo)
		}
	}
	return out, nil
}

// ListPresets 返回按标识排序的预置车型
func (uc *JobUseCase) ListPresets() map[string]model.Product {
	return uc.eng.Presets()
}

// PresetKeys 预置车型标识的有序列表
func (uc *JobUseCase) PresetKeys() []string {
	presets := uc.eng.Presets()
	keys := make([]string, 0, len(presets))
	for k := range presets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// List 返回按创建时间倒序的全部任务
func (uc *JobUseCase) List() []model.Job {
	return uc.registry.List()
}

// Get 查询单个任务
func (uc *JobUseCase) Get(id string) (model.Job, bool) {
	return uc.registry.Get(id)
}

// Results 查询已完成任务的逐视频分析结果
func (uc *JobUseCase) Results(ctx context.Context, id string) ([]VideoResult, error) {
	job, ok := uc.registry.Get(id)
	if !ok {
		return nil, fmt.Errorf("job %s not found", id)
	}
	if job.Status != model.JobCompleted {
		return nil, fmt.Errorf("job %s is not completed (status: %s)", id, job.Status)
	}
	return uc.repo.Results(ctx, id)
}

// Delete 删除任务；运行中的任务不可删除
func (uc *JobUseCase) Delete(ctx context.Context, id string) error {
	job, ok := uc.registry.Get(id)
	if !ok {
		return fmt.Errorf("job %s not found", id)
	}
	if job.Status == model.JobRunning {
		return fmt.Errorf("job %s is still running", id)
	}
	if err := uc.repo.DeleteJob(ctx, id); err != nil {
		return err
	}
	uc.registry.Delete(id)
	return nil
}

// Artifact 返回任务产物的文件名，用于下载
func (uc *JobUseCase) Artifact(id, kind string) (string, error) {
	job, ok := uc.registry.Get(id)
	if !ok {
		return "", fmt.Errorf("job %s not found", id)
	}
	if job.Status != model.JobCompleted {
		return "", fmt.Errorf("job %s is not completed (status: %s)", id, job.Status)
	}
	switch kind {
	case "report":
		return job.ReportFile, nil
	case "export":
		return job.ExportFile, nil
	default:
		return "", fmt.Errorf("unknown artifact kind: %s", kind)
	}
}

// OutputDir 产物所在目录
func (uc *JobUseCase) OutputDir() string {
	return uc.eng.OutputDir()
}
