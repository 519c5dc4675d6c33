package transcribe

import "context"

// CaptionFetcher 定义已有字幕的获取能力
// 未命中字幕时返回空串而非错误
type CaptionFetcher interface {
	Fetch(ctx context.Context, videoID string, languages []string) (string, error)
}

// AudioDownloader 定义音频下载能力
// 返回本地音频文件路径
type AudioDownloader interface {
	Download(ctx context.Context, videoID, videoURL string) (string, error)
}

// SpeechToText 定义本地语音转写能力
type SpeechToText interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}
