package server

import (
	"testing"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/motor_radar/app/display/internal/conf"
	"github.com/iWorld-y/motor_radar/app/motor_radar/pkg/errs"
	"github.com/iWorld-y/motor_radar/app/motor_radar/pkg/jobs"
)

// 配置缺段时必须返回配置错误而不是 panic
func TestNewMotorEngine_IncompleteConf(t *testing.T) {
	t.Setenv("YOUTUBE_API_KEY", "")
	t.Setenv("LLM_API_KEY", "")

	registry := jobs.NewMemoryStore()
	cases := map[string]*conf.Motor{
		"nil":         nil,
		"empty":       {},
		"llm missing": {Youtube: &conf.YouTube{ApiKey: "yt-key"}},
	}
	for name, c := range cases {
		_, err := NewMotorEngine(c, registry, nil, log.DefaultLogger)
		require.Error(t, err, name)
		assert.ErrorIs(t, err, errs.ErrConfig, name)
	}
}
