package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/iWorld-y/motor_radar/app/motor_radar/pkg/errs"
	"github.com/iWorld-y/motor_radar/app/motor_radar/pkg/model"
)

// Config 项目配置结构体
type Config struct {
	LLM         LLMConfig                `yaml:"llm"`
	YouTube     YouTubeConfig            `yaml:"youtube"`
	Transcribe  TranscribeConfig         `yaml:"transcribe"`
	Output      OutputConfig             `yaml:"output"`
	Log         LogConfig                `yaml:"log"`
	Concurrency ConcurrencyConfig        `yaml:"concurrency"`
	DB          DBConfig                 `yaml:"db"`
	Presets     map[string]model.Product `yaml:"presets"`
}

// LLMConfig LLM 相关配置
type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

// YouTubeConfig YouTube Data API 相关配置
type YouTubeConfig struct {
	APIKey              string `yaml:"api_key"`
	MaxSearchResults    int    `yaml:"max_search_results"`
	MaxCommentsPerVideo int    `yaml:"max_comments_per_video"`
	RegionCode          string `yaml:"region_code"`
	Timeout             int    `yaml:"timeout"` // 秒
}

// TranscribeConfig 字幕/转写相关配置
type TranscribeConfig struct {
	YtDlpPath        string   `yaml:"ytdlp_path"`
	WhisperPath      string   `yaml:"whisper_path"`
	WhisperModel     string   `yaml:"whisper_model"`
	WorkDir          string   `yaml:"work_dir"`
	CaptionLanguages []string `yaml:"caption_languages"`
	VideoTimeout     int      `yaml:"video_timeout"` // 单个视频的转写墙钟上限，秒
}

// OutputConfig 产物输出配置
type OutputConfig struct {
	Dir      string `yaml:"dir"`
	FontPath string `yaml:"font_path"` // PDF 使用的 UTF-8 TTF 字体，为空时退回内置字体（仅 Latin-1）
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ConcurrencyConfig 并发控制配置
type ConcurrencyConfig struct {
	QPS     int `yaml:"qps"`
	RPM     int `yaml:"rpm"`
	Workers int `yaml:"workers"` // 阶段内单视频操作的并发上限
}

// DBConfig 数据库相关配置
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// LoadConfig 从指定路径加载配置
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults 填充缺省值，API Key 支持环境变量回退
// 供从外部配置结构转换而来的 Config 复用
func (c *Config) ApplyDefaults() {
	if c.YouTube.APIKey == "" {
		c.YouTube.APIKey = os.Getenv("YOUTUBE_API_KEY")
	}
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = os.Getenv("LLM_API_KEY")
	}
	if c.YouTube.MaxSearchResults <= 0 {
		c.YouTube.MaxSearchResults = 50
	}
	if c.YouTube.MaxCommentsPerVideo <= 0 {
		c.YouTube.MaxCommentsPerVideo = 100
	}
	if c.YouTube.Timeout <= 0 {
		c.YouTube.Timeout = 30
	}
	if c.Transcribe.YtDlpPath == "" {
		c.Transcribe.YtDlpPath = "yt-dlp"
	}
	if c.Transcribe.WhisperPath == "" {
		c.Transcribe.WhisperPath = "whisper"
	}
	if c.Transcribe.WhisperModel == "" {
		c.Transcribe.WhisperModel = "large-v3"
	}
	if c.Transcribe.WorkDir == "" {
		c.Transcribe.WorkDir = "downloads"
	}
	if len(c.Transcribe.CaptionLanguages) == 0 {
		c.Transcribe.CaptionLanguages = []string{"ko", "en"}
	}
	if c.Transcribe.VideoTimeout <= 0 {
		c.Transcribe.VideoTimeout = 900
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "output"
	}
	if c.Concurrency.QPS <= 0 {
		c.Concurrency.QPS = 2
	}
	if c.Concurrency.RPM <= 0 {
		c.Concurrency.RPM = 60
	}
	if c.Concurrency.Workers <= 0 {
		c.Concurrency.Workers = 4
	}
	if c.Presets == nil {
		c.Presets = DefaultPresets()
	}
}

// Validate 启动期校验，凭证缺失直接失败
func (c *Config) Validate() error {
	if c.YouTube.APIKey == "" {
		return fmt.Errorf("youtube api key is missing: %w", errs.ErrConfig)
	}
	if c.LLM.APIKey == "" {
		return fmt.Errorf("llm api key is missing: %w", errs.ErrConfig)
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm model is missing: %w", errs.ErrConfig)
	}
	return nil
}

// DefaultPresets 预置车型配置表
// 作为可注入的查表数据，不做任何特殊分支
func DefaultPresets() map[string]model.Product {
	return map[string]model.Product{
		"scenic": {
			Company: "르노",
			Model:   "Scenic E-Tech",
			SearchQueries: []string{
				"르노 세닉 E-Tech",
				"세닉 전기차 시승기",
				"르노 세닉 전기차 리뷰",
				"세닉 충전 속도 장단점",
				"세닉 가격 옵션 사양",
			},
		},
		"koleos": {
			Company: "르노 코리아",
			Model:   "그랑 콜레오스",
			SearchQueries: []string{
				"그랑 콜레오스 르노 코리아",
				"그랑 콜레오스 시승기",
				"르노 코리아 그랑 콜레오스 신차 리뷰",
				"그랑 콜레오스 하이브리드 장단점",
				"그랑 콜레오스 가격 옵션",
			},
		},
		"torres": {
			Company: "KGM",
			Model:   "토레스 하이브리드",
			SearchQueries: []string{
				"토레스 하이브리드 KGM",
				"토레스 하이브리드 시승기",
				"KGM 토레스 하이브리드 리뷰",
				"토레스 하이브리드 장단점",
				"토레스 가격 옵션",
			},
		},
		"sorento": {
			Company: "기아",
			Model:   "쏘렌토",
			SearchQueries: []string{
				"쏘렌토 기아",
				"쏘렌토 시승기",
				"기아 쏘렌토 리뷰",
			},
		},
		"santafe": {
			Company: "현대",
			Model:   "싼타페",
			SearchQueries: []string{
				"싼타페 현대",
				"싼타페 시승기",
				"현대 싼타페 리뷰",
			},
		},
	}
}
