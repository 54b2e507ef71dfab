// Package service sits between internal/handler and the domain packages
// (internal/upload, internal/deploy, internal/auth), the same split the
// teacher's handler/service layering follows throughout.
package service

// Service is the common base every concrete service embeds, following the
// teacher's NewXService(service *Service, ...) constructor convention.
// It carries nothing of its own yet; it exists so shared cross-cutting
// fields (tracing, metrics) have one place to land without changing every
// service's constructor signature.
type Service struct{}

func NewService() *Service {
	return &Service{}
}
