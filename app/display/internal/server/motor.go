package server

import (
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/motor_radar/app/display/internal/conf"
	"github.com/iWorld-y/motor_radar/app/motor_radar/pkg/config"
	"github.com/iWorld-y/motor_radar/app/motor_radar/pkg/engine"
	"github.com/iWorld-y/motor_radar/app/motor_radar/pkg/jobs"
	mrLogger "github.com/iWorld-y/motor_radar/app/motor_radar/pkg/logger"
	"github.com/iWorld-y/motor_radar/app/motor_radar/pkg/storage"
)

// NewJobRegistry 进程内任务注册表
func NewJobRegistry() jobs.Store {
	return jobs.NewMemoryStore()
}

// NewMotorStorage 初始化持久层，未配置数据库时返回 nil（纯内存模式）
func NewMotorStorage(c *conf.Motor, logger log.Logger) (*storage.Storage, func(), error) {
	if c == nil || c.Db == nil || c.Db.Host == "" {
		log.NewHelper(logger).Info("database not configured, running in memory-only mode")
		return nil, func() {}, nil
	}

	store, err := storage.NewStorage(config.DBConfig{
		Host:     c.Db.Host,
		Port:     int(c.Db.Port),
		User:     c.Db.User,
		Password: c.Db.Password,
		Name:     c.Db.Name,
	})
	if err != nil {
		log.NewHelper(logger).Errorf("Failed to init storage: %v", err)
		return nil, nil, err
	}

	cleanup := func() {
		_ = store.Close()
	}
	return store, cleanup, nil
}

// NewMotorEngine 初始化分析引擎
func NewMotorEngine(c *conf.Motor, registry jobs.Store, store *storage.Storage, logger log.Logger) (*engine.Engine, error) {
	if c == nil {
		c = &conf.Motor{}
	}
	// 将 internal/conf.Motor 转换为 pkg/config.Config
	cfg := &config.Config{}
	if c.Llm != nil {
		cfg.LLM = config.LLMConfig{
			BaseURL: c.Llm.BaseUrl,
			APIKey:  c.Llm.ApiKey,
			Model:   c.Llm.Model,
		}
	}
	if c.Youtube != nil {
		cfg.YouTube = config.YouTubeConfig{
			APIKey:              c.Youtube.ApiKey,
			MaxSearchResults:    int(c.Youtube.MaxSearchResults),
			MaxCommentsPerVideo: int(c.Youtube.MaxCommentsPerVideo),
			RegionCode:          c.Youtube.RegionCode,
			Timeout:             int(c.Youtube.Timeout),
		}
	}
	if c.Transcribe != nil {
		cfg.Transcribe = config.TranscribeConfig{
			YtDlpPath:        c.Transcribe.YtdlpPath,
			WhisperPath:      c.Transcribe.WhisperPath,
			WhisperModel:     c.Transcribe.WhisperModel,
			WorkDir:          c.Transcribe.WorkDir,
			CaptionLanguages: c.Transcribe.CaptionLanguages,
			VideoTimeout:     int(c.Transcribe.VideoTimeout),
		}
	}
	if c.Output != nil {
		cfg.Output = config.OutputConfig{Dir: c.Output.Dir, FontPath: c.Output.FontPath}
	}
	if c.Log != nil {
		cfg.Log = config.LogConfig{Level: c.Log.Level, File: c.Log.File}
	}
	if c.Concurrency != nil {
		cfg.Concurrency = config.ConcurrencyConfig{
			QPS:     int(c.Concurrency.Qps),
			RPM:     int(c.Concurrency.Rpm),
			Workers: int(c.Concurrency.Workers),
		}
	}
	cfg.ApplyDefaults()

	// 初始化日志
	if err := mrLogger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		log.NewHelper(logger).Errorf("Failed to init motor_radar logger: %v", err)
		_ = mrLogger.InitLogger("info", "") // 降级处理
	}

	eng, err := engine.NewEngine(cfg, registry, store)
	if err != nil {
		log.NewHelper(logger).Errorf("Failed to init engine: %v", err)
		return nil, err
	}
	return eng, nil
}
