// Package handler holds the Gin endpoint functions, one small struct per
// route group, each embedding the shared Handler base the way the
// teacher's internal/handler package does.
package handler

import (
	"fde/pkg/log"
)

// Handler is the common base every concrete handler embeds.
type Handler struct {
	logger *log.Logger
}

func NewHandler(logger *log.Logger) *Handler {
	return &Handler{logger: logger}
}
