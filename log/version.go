package log

import (
	"github.com/BrianOtieno/quantum-computing/core"
	"go.uber.org/zap"
)

const VersionLogTaskName = "version_log"

type VersionLogTaskImpl struct {
	core.DefaultTaskImpl
}

func (v *VersionLogTaskImpl) Task() {
	zap.L().Info("Engine version:" + core.Version)
}
