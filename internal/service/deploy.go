package service

import (
	"context"

	"fde/internal/deploy"
	"fde/internal/deployconfig"
)

//go:generate mockgen -source=deploy.go -destination=mocks/deploy_mock.go -package=mocks

// DeployService is the thin adapter between the handler layer and
// internal/deploy.Manager, the per-environment state machine of spec §4.6.
type DeployService interface {
	RunSync(ctx context.Context, env *deployconfig.Environment) (deploy.SyncResult, error)
	StartStream(env *deployconfig.Environment) error
	Subscribe(ctx context.Context, envName string, lastEventID uint64, emit func(deploy.Event) error) error
	Status(envName string) deploy.StatusSnapshot
}

type deployService struct {
	*Service
	manager *deploy.Manager
}

func NewDeployService(service *Service, manager *deploy.Manager) DeployService {
	return &deployService{Service: service, manager: manager}
}

func (s *deployService) RunSync(ctx context.Context, env *deployconfig.Environment) (deploy.SyncResult, error) {
	return s.manager.RunSync(ctx, env)
}

func (s *deployService) StartStream(env *deployconfig.Environment) error {
	return s.manager.StartStream(env)
}

func (s *deployService) Subscribe(ctx context.Context, envName string, lastEventID uint64, emit func(deploy.Event) error) error {
	if lastEventID == 0 {
		return s.manager.Subscribe(ctx, envName, 0, emit)
	}
	return s.manager.ResumeOrTerminal(ctx, envName, lastEventID, emit)
}

func (s *deployService) Status(envName string) deploy.StatusSnapshot {
	return s.manager.Status(envName)
}
