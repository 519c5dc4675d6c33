package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/iWorld-y/motor_radar/app/motor_radar/pkg/config"
	"github.com/iWorld-y/motor_radar/app/motor_radar/pkg/engine"
	"github.com/iWorld-y/motor_radar/app/motor_radar/pkg/jobs"
	"github.com/iWorld-y/motor_radar/app/motor_radar/pkg/logger"
	"github.com/iWorld-y/motor_radar/app/motor_radar/pkg/model"
)

func main() {
	var (
		configPath     = flag.String("config", "config.yaml", "配置文件路径")
		preset         = flag.String("preset", "", "预置车型标识（scenic/koleos/torres/sorento/santafe）")
		company        = flag.String("company", "", "自定义厂商名称")
		carModel       = flag.String("model", "", "自定义车型名称")
		queries        = flag.String("queries", "", "自定义搜索词，逗号分隔")
		maxVideos      = flag.Int("max-videos", 0, "本次分析的视频数量上限")
		maxTranscribe  = flag.Int("max-transcribe", 3, "转写视频数量上限")
		skipTranscribe = flag.Bool("skip-transcription", false, "跳过转写阶段，仅用评论分析")
		useSubtitles   = flag.Bool("use-subtitles", true, "优先使用现成字幕")
		region         = flag.String("region", "KR", "搜索地区代码")
		dateFrom       = flag.String("from", "", "只分析该日期之后发布的视频 (YYYY-MM-DD)")
		dateTo         = flag.String("to", "", "只分析该日期之前发布的视频 (YYYY-MM-DD)")
	)
	flag.Parse()

	// .env 不存在时忽略，正式环境由进程环境注入
	_ = godotenv.Load()

	// 1. 加载配置
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("无法加载配置文件: %v", err)
	}

	// 2. 初始化日志
	if err = logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		log.Fatalf("无法初始化日志: %v", err)
	}

	// 3. 确定分析目标
	product, err := resolveProduct(cfg, *preset, *company, *carModel, *queries)
	if err != nil {
		logger.Log.Fatalf("参数错误: %v", err)
	}

	// 4. 初始化编排器（CLI 单次运行，不接数据库）
	registry := jobs.NewMemoryStore()
	eng, err := engine.NewEngine(cfg, registry, nil)
	if err != nil {
		logger.Log.Fatalf("初始化失败: %v", err)
	}

	opts := engine.RunOptions{
		SkipTranscription:     *skipTranscribe,
		MaxVideos:             *maxVideos,
		MaxVideosToTranscribe: *maxTranscribe,
		RegionCode:            *region,
		UseExistingSubtitles:  *useSubtitles,
		ProgressCallback: func(status string, progress int) {
			logger.Log.Infof("进度 %d%%: %s", progress, status)
		},
	}
	if opts.DateFrom, err = parseDate(*dateFrom); err != nil {
		logger.Log.Fatalf("参数错误: %v", err)
	}
	if opts.DateTo, err = parseDate(*dateTo); err != nil {
		logger.Log.Fatalf("参数错误: %v", err)
	}

	// 5. 执行流水线
	job := eng.NewJob(product)
	if err := eng.Run(context.Background(), job.ID, opts); err != nil {
		logger.Log.Fatalf("分析失败: %v", err)
	}

	final, _ := registry.Get(job.ID)
	logger.Log.Infof("✅ 分析完成: %s/%s", eng.OutputDir(), final.ReportFile)
	logger.Log.Infof("✅ 数据导出: %s/%s", eng.OutputDir(), final.ExportFile)
}

// resolveProduct 从预置表或自定义参数确定分析目标
func resolveProduct(cfg *config.Config, preset, company, carModel, queries string) (model.Product, error) {
	if preset != "" {
		product, ok := cfg.Presets[preset]
		if !ok {
			keys := make([]string, 0, len(cfg.Presets))
			for k := range cfg.Presets {
				keys = append(keys, k)
			}
			return model.Product{}, fmt.Errorf("未知的预置车型 %q，可选: %s", preset, strings.Join(keys, ", "))
		}
		return product, nil
	}

	if company == "" || carModel == "" {
		return model.Product{}, fmt.Errorf("需要 -preset，或同时提供 -company 和 -model")
	}

	product := model.Product{Company: company, Model: carModel}
	for _, q := range strings.Split(queries, ",") {
		if q = strings.TrimSpace(q); q != "" {
			product.SearchQueries = append(product.SearchQueries, q)
		}
	}
	if len(product.SearchQueries) == 0 {
		product.SearchQueries = []string{company + " " + carModel, carModel + " 리뷰"}
	}
	return product, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("日期格式应为 YYYY-MM-DD: %q", s)
	}
	return t, nil
}
