package errs

import (
	"errors"
	"fmt"
)

// 错误分类：
//   - ErrExternalService 外部服务限流/超时等瞬时错误，调用方按退避策略重试
//   - StageError         某个必经阶段完全失败，任务转入 failed
//   - ErrConfig          启动期配置缺失，任何阶段开始前快速失败
var (
	ErrExternalService = errors.New("external service error")
	ErrConfig          = errors.New("configuration error")
)

// StageError 阶段级失败
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError 包装阶段级失败
func NewStageError(stage string, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}

// IsTransient 判断错误是否可按瞬时错误重试
func IsTransient(err error) bool {
	return errors.Is(err, ErrExternalService)
}

// External 将外部服务错误标记为可重试
func External(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrExternalService)...)
}
