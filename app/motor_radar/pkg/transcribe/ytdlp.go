package transcribe

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// YtDlpDownloader 调用本地 yt-dlp 下载音频轨
type YtDlpDownloader struct {
	binaryPath string
	workDir    string
}

// NewYtDlpDownloader 创建下载器，workDir 不存在时自动创建
func NewYtDlpDownloader(binaryPath, workDir string) (*YtDlpDownloader, error) {
	if binaryPath == "" {
		binaryPath = "yt-dlp"
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create work dir: %w", err)
	}
	return &YtDlpDownloader{binaryPath: binaryPath, workDir: workDir}, nil
}

var _ AudioDownloader = (*YtDlpDownloader)(nil)

// Download 下载并抽取 wav 音频，返回本地文件路径
// 墙钟上限由调用方通过 ctx 控制
func (d *YtDlpDownloader) Download(ctx context.Context, videoID, videoURL string) (string, error) {
	outTmpl := filepath.Join(d.workDir, "%(id)s.%(ext)s")

	cmd := exec.CommandContext(ctx, d.binaryPath,
		"-x",
		"--audio-format", "wav",
		"--audio-quality", "192",
		"-o", outTmpl,
		"--no-warnings",
		"--quiet",
		videoURL,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("yt-dlp failed: %w, stderr: %s", err, stderr.String())
	}

	audioPath := filepath.Join(d.workDir, videoID+".wav")
	if _, err := os.Stat(audioPath); err != nil {
		return "", fmt.Errorf("yt-dlp produced no audio file: %w", err)
	}
	return audioPath, nil
}

// Cleanup 删除下载产物
func (d *YtDlpDownloader) Cleanup(audioPath string) {
	if audioPath != "" {
		_ = os.Remove(audioPath)
	}
}
