package server

import (
	"github.com/google/wire"

	"github.com/iWorld-y/motor_radar/app/display/internal/biz"
	"github.com/iWorld-y/motor_radar/app/display/internal/data"
	"github.com/iWorld-y/motor_radar/app/display/internal/service"
)

// ProviderSet 是展示服务的依赖注入 Provider 集合
var ProviderSet = wire.NewSet(
	// Server providers
	NewHTTPServer,
	NewJobRegistry,
	NewMotorStorage,
	NewMotorEngine,

	// Data providers
	data.NewData,
	data.NewJobRepo,

	// UseCase providers
	biz.NewJobUseCase,

	// Service providers
	service.NewMotorService,
)
