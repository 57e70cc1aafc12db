package app

import (
	"bendis/internal/adapters"
	"bendis/internal/ports"
	"bendis/internal/types"
)

type Service struct {
	Manifests    ports.ManifestPort
	Resolver     ports.ResolverPort
	Workspace    ports.WorkspacePort
	Transactions ports.TransactionPort
	RunLock      ports.RunLockPort
	Config       ports.ConfigPort
	Settings     types.Settings
}

func NewService(settings types.Settings) (Service, error) {
	resolver, err := adapters.NewResolverExecAdapter(settings.Resolver, settings.Silent)
	if err != nil {
		return Service{}, err
	}
	return Service{
		Manifests:    adapters.NewManifestFileAdapter(),
		Resolver:     resolver,
		Workspace:    adapters.NewWorkspaceAdapter(),
		Transactions: adapters.NewFileTransactionAdapter(),
		RunLock:      adapters.NewRunLockAdapter(),
		Config:       adapters.NewConfigFileAdapter(),
		Settings:     settings,
	}, nil
}
