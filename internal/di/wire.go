//go:build wireinject

package di

import (
	"github.com/google/wire"

	"github.com/kcaldas/condenser/pkg/config"
	"github.com/kcaldas/condenser/pkg/fileops"
)

// ProvideRunner is an injector function - Wire will generate the implementation
func ProvideRunner(cfg config.Config) (*Runner, error) {
	wire.Build(
		provideBus,
		providePublisher,
		provideLogger,
		provideEngine,
		provideWalker,
		fileops.NewFileOpsManager,
		wire.Struct(new(Runner), "*"),
	)
	return nil, nil
}
