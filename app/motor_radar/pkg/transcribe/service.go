package transcribe

import (
	"context"
	"sync"
	"time"

	"github.com/iWorld-y/motor_radar/app/motor_radar/pkg/logger"
	"github.com/iWorld-y/motor_radar/app/motor_radar/pkg/model"
)

// Options 转写阶段参数
type Options struct {
	UseExistingSubtitles bool
	CaptionLanguages     []string
	MaxVideos            int           // 实际执行转写的视频上限，0 表示不限制
	PerVideoTimeout      time.Duration // 单个视频的墙钟上限
	Workers              int
	CleanupAudio         bool
}

// Service 转写阶段
// 每个视频的处理路径: 字幕优先(可选) -> 音频下载 -> 本地转写
// 任何一步失败都降级为 Transcript{Source: none}，从不使任务失败
type Service struct {
	captions   CaptionFetcher
	downloader AudioDownloader
	stt        SpeechToText
}

// NewService 创建转写阶段实例
func NewService(captions CaptionFetcher, downloader AudioDownloader, stt SpeechToText) *Service {
	return &Service{captions: captions, downloader: downloader, stt: stt}
}

// Run 对候选列表执行转写
// 每个候选都会得到一个 Transcript 条目，超出 MaxVideos 的直接记为 none
func (s *Service) Run(ctx context.Context, candidates []model.VideoCandidate, opts Options) map[string]model.Transcript {
	results := make(map[string]model.Transcript, len(candidates))
	for _, c := range candidates {
		results[c.ID] = model.Transcript{VideoID: c.ID, Source: model.TranscriptNone}
	}

	limit := len(candidates)
	if opts.MaxVideos > 0 && opts.MaxVideos < limit {
		limit = opts.MaxVideos
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)

	for _, candidate := range candidates[:limit] {
		wg.Add(1)
		go func(candidate model.VideoCandidate) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			t := s.transcribeOne(ctx, candidate, opts)

			mu.Lock()
			results[candidate.ID] = t
			mu.Unlock()
		}(candidate)
	}

	wg.Wait()
	return results
}

// transcribeOne 单视频状态机:
// NotStarted -> CaptionAttempted -> {CaptionFound | AudioDownloading} -> Transcribing -> {Done | Failed}
func (s *Service) transcribeOne(ctx context.Context, candidate model.VideoCandidate, opts Options) model.Transcript {
	none := model.Transcript{VideoID: candidate.ID, Source: model.TranscriptNone}

	if opts.PerVideoTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.PerVideoTimeout)
		defer cancel()
	}

	// 字幕免费，转写昂贵，能用字幕就不下载音频
	if opts.UseExistingSubtitles && s.captions != nil {
		text, err := s.captions.Fetch(ctx, candidate.ID, opts.CaptionLanguages)
		if err != nil {
			logger.Log.Warnf("字幕获取失败 [%s]: %v", candidate.ID, err)
		} else if text != "" {
			logger.Log.Infof("命中已有字幕 [%s]", candidate.ID)
			return model.Transcript{VideoID: candidate.ID, Text: text, Source: model.TranscriptCaption}
		}
	}

	if s.downloader == nil || s.stt == nil {
		return none
	}

	audioPath, err := s.downloader.Download(ctx, candidate.ID, candidate.URL)
	if err != nil {
		logger.Log.Warnf("音频下载失败 [%s]: %v", candidate.ID, err)
		return none
	}
	if opts.CleanupAudio {
		if d, ok := s.downloader.(*YtDlpDownloader); ok {
			defer d.Cleanup(audioPath)
		}
	}

	text, err := s.stt.Transcribe(ctx, audioPath)
	if err != nil {
		logger.Log.Warnf("转写失败 [%s]: %v", candidate.ID, err)
		return none
	}
	if text == "" {
		return none
	}

	return model.Transcript{VideoID: candidate.ID, Text: text, Source: model.TranscriptWhisper}
}
