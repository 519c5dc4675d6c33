package data

import (
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/motor_radar/app/motor_radar/pkg/storage"
)

// Data 聚合展示服务的数据访问资源
// store 为 nil 表示未配置数据库，历史结果不可查
type Data struct {
	store *storage.Storage
	log   *log.Helper
}

func NewData(store *storage.Storage, logger log.Logger) *Data {
	return &Data{store: store, log: log.NewHelper(logger)}
}
