package transcribe

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// WhisperTranscriber 调用本地 whisper 命令行做语音转写
type WhisperTranscriber struct {
	binaryPath string
	modelSize  string
	language   string
	outputDir  string
}

// NewWhisperTranscriber 创建转写器
func NewWhisperTranscriber(binaryPath, modelSize, language, outputDir string) *WhisperTranscriber {
	if binaryPath == "" {
		binaryPath = "whisper"
	}
	if modelSize == "" {
		modelSize = "large-v3"
	}
	return &WhisperTranscriber{
		binaryPath: binaryPath,
		modelSize:  modelSize,
		language:   language,
		outputDir:  outputDir,
	}
}

var _ SpeechToText = (*WhisperTranscriber)(nil)

// Transcribe 转写音频文件并返回文本
// whisper 会在 outputDir 下生成与音频同名的 .txt 文件
func (w *WhisperTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	outDir := w.outputDir
	if outDir == "" {
		outDir = filepath.Dir(audioPath)
	}

	args := []string{
		audioPath,
		"--model", w.modelSize,
		"--output_format", "txt",
		"--output_dir", outDir,
		"--fp16", "False",
	}
	if w.language != "" {
		args = append(args, "--language", w.language)
	}

	cmd := exec.CommandContext(ctx, w.binaryPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("whisper failed: %w, stderr: %s", err, stderr.String())
	}

	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	txtPath := filepath.Join(outDir, base+".txt")

	data, err := os.ReadFile(txtPath)
	if err != nil {
		return "", fmt.Errorf("whisper produced no transcript: %w", err)
	}
	defer os.Remove(txtPath)

	return strings.TrimSpace(string(data)), nil
}
