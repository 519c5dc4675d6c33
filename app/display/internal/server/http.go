package server

import (
	nethttp "net/http"
	"time"

	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/motor_radar/app/display/internal/conf"
	"github.com/iWorld-y/motor_radar/app/display/internal/service"
)

func NewHTTPServer(c *conf.Server, s *service.MotorService) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
		),
	}
	if c.Http.Addr != "" {
		opts = append(opts, http.Address(c.Http.Addr))
	}
	if c.Http.Timeout != "" {
		if d, err := time.ParseDuration(c.Http.Timeout); err == nil {
			opts = append(opts, http.Timeout(d))
		}
	}

	srv := http.NewServer(opts...)

	r := srv.Route("/api/v1")
	r.GET("/presets", s.ListPresets)
	r.POST("/presets/{name}/jobs", s.SubmitPreset)
	r.POST("/jobs", s.SubmitCustom)
	r.GET("/jobs", s.ListJobs)
	r.GET("/jobs/{id}", s.GetJob)
	r.GET("/jobs/{id}/results", s.GetResults)
	r.GET("/jobs/{id}/report", s.DownloadReport)
	r.GET("/jobs/{id}/export", s.DownloadExport)
	r.DELETE("/jobs/{id}", s.DeleteJob)

	srv.HandleFunc("/healthz", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.WriteHeader(nethttp.StatusOK)
		w.Write([]byte("ok"))
	})

	return srv
}
