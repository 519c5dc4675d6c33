package service

import (
	nethttp "net/http"
	"path/filepath"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/motor_radar/app/display/internal/biz"
	"github.com/iWorld-y/motor_radar/app/motor_radar/pkg/model"
)

// MotorService 任务管理的 HTTP 接口层
type MotorService struct {
	uc  *biz.JobUseCase
	log *log.Helper
}

func NewMotorService(uc *biz.JobUseCase, logger log.Logger) *MotorService {
	return &MotorService{
		uc:  uc,
		log: log.NewHelper(logger),
	}
}

type submitCustomReq struct {
	Company       string   `json:"company"`
	Model         string   `json:"model"`
	SearchQueries []string `json:"search_queries"`
	biz.SubmitOptions
}

type errorReply struct {
	Error string `json:"error"`
}

type jobReply struct {
	Job model.Job `json:"job"`
}

// SubmitCustom 提交自定义车型的分析任务
func (s *MotorService) SubmitCustom(ctx http.Context) error {
	var req submitCustomReq
	if err := ctx.Bind(&req); err != nil {
		return ctx.Result(nethttp.StatusBadRequest, errorReply{Error: err.Error()})
	}

	job, err := s.uc.SubmitCustom(model.Product{
		Company:       req.Company,
		Model:         req.Model,
		SearchQueries: req.SearchQueries,
	}, req.SubmitOptions)
	if err != nil {
		return ctx.Result(nethttp.StatusBadRequest, errorReply{Error: err.Error()})
	}
	return ctx.Result(nethttp.StatusAccepted, jobReply{Job: job})
}

// SubmitPreset 提交预置车型的分析任务
func (s *MotorService) SubmitPreset(ctx http.Context) error {
	var opts biz.SubmitOptions
	if err := ctx.Bind(&opts); err != nil {
		return ctx.Result(nethttp.StatusBadRequest, errorReply{Error: err.Error()})
	}

	job, err := s.uc.SubmitPreset(ctx.Vars().Get("name"), opts)
	if err != nil {
		return ctx.Result(nethttp.StatusNotFound, errorReply{Error: err.Error()})
	}
	return ctx.Result(nethttp.StatusAccepted, jobReply{Job: job})
}

// ListPresets 列出可用的预置车型
func (s *MotorService) ListPresets(ctx http.Context) error {
	type preset struct {
		Key     string        `json:"key"`
		Product model.Product `json:"product"`
	}
	presets := s.uc.ListPresets()
	list := make([]preset, 0, len(presets))
	for _, key := range s.uc.PresetKeys() {
		list = append(list, preset{Key: key, Product: presets[key]})
	}
	return ctx.Result(nethttp.StatusOK, map[string]any{"presets": list})
}

// ListJobs 列出全部任务（按创建时间倒序）
func (s *MotorService) ListJobs(ctx http.Context) error {
	return ctx.Result(nethttp.StatusOK, map[string]any{"jobs": s.uc.List()})
}

// GetJob 查询单个任务的状态与计数器
func (s *MotorService) GetJob(ctx http.Context) error {
	id := ctx.Vars().Get("id")
	job, ok := s.uc.Get(id)
	if !ok {
		return ctx.Result(nethttp.StatusNotFound, errorReply{Error: "job not found: " + id})
	}
	return ctx.Result(nethttp.StatusOK, jobReply{Job: job})
}

// GetResults 查询已完成任务的逐视频结果
func (s *MotorService) GetResults(ctx http.Context) error {
	results, err := s.uc.Results(ctx, ctx.Vars().Get("id"))
	if err != nil {
		return ctx.Result(nethttp.StatusNotFound, errorReply{Error: err.Error()})
	}
	return ctx.Result(nethttp.StatusOK, map[string]any{"results": results})
}

// DeleteJob 删除任务及其持久化结果
func (s *MotorService) DeleteJob(ctx http.Context) error {
	if err := s.uc.Delete(ctx, ctx.Vars().Get("id")); err != nil {
		return ctx.Result(nethttp.StatusConflict, errorReply{Error: err.Error()})
	}
	return ctx.Result(nethttp.StatusOK, map[string]any{"deleted": true})
}

// DownloadReport 下载 PDF 报告
func (s *MotorService) DownloadReport(ctx http.Context) error {
	return s.download(ctx, "report")
}

// DownloadExport 下载 CSV 导出
func (s *MotorService) DownloadExport(ctx http.Context) error {
	return s.download(ctx, "export")
}

func (s *MotorService) download(ctx http.Context, kind string) error {
	name, err := s.uc.Artifact(ctx.Vars().Get("id"), kind)
	if err != nil {
		return ctx.Result(nethttp.StatusNotFound, errorReply{Error: err.Error()})
	}
	if name == "" {
		return ctx.Result(nethttp.StatusNotFound, errorReply{Error: "artifact not generated"})
	}

	path := filepath.Join(s.uc.OutputDir(), filepath.Base(name))
	w, r := ctx.Response(), ctx.Request()
	w.Header().Set("Content-Disposition", "attachment; filename="+filepath.Base(name))
	nethttp.ServeFile(w, r, path)
	return nil
}
