package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"fde/internal/deploy"
	"fde/internal/deployconfig"
	"fde/internal/middleware"
	"fde/internal/service/mocks"
	"fde/pkg/log"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func testDeployHandler(t *testing.T, mockSvc *mocks.MockDeployService) (*gin.Engine, *deployconfig.ResolvedConfig) {
	t.Helper()

	cfg := &deployconfig.ResolvedConfig{
		Environments: map[string]*deployconfig.Environment{
			"prod": {Name: "prod", Token: "secret"},
		},
	}

	logger := log.NewLog(viper.New())
	h := NewDeployHandler(NewHandler(logger), cfg, mockSvc)

	r := gin.New()
	r.Use(middleware.AuthTokenMiddleware())
	r.POST("/deploy", h.Deploy)
	r.GET("/deploy/status", h.Status)
	return r, cfg
}

func TestDeployHandlerRunsSyncAndReturnsSuccessBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockDeployService(ctrl)
	mockSvc.EXPECT().RunSync(gomock.Any(), gomock.Any()).Return(deploy.SyncResult{
		Success: true,
		Stdout:  "done\n",
	}, nil)

	r, _ := testDeployHandler(t, mockSvc)

	req := httptest.NewRequest(http.MethodPost, "/deploy", bytes.NewBufferString(`{"env":"prod","stream":false}`))
	req.Header.Set("Authorization", "secret")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"done\n"`)
}

func TestDeployHandlerRejectsUnknownEnvBeforeTouchingService(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockDeployService(ctrl)
	// No calls expected: resolveEnv must reject the request before the
	// handler ever reaches the service layer.

	r, _ := testDeployHandler(t, mockSvc)

	req := httptest.NewRequest(http.MethodPost, "/deploy", bytes.NewBufferString(`{"env":"staging","stream":false}`))
	req.Header.Set("Authorization", "secret")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "unknown environment")
}

func TestDeployHandlerStatusReportsSnapshotFromService(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockDeployService(ctrl)
	mockSvc.EXPECT().Status("prod").Return(deploy.StatusSnapshot{
		Running:       false,
		BufferedCount: 0,
		LastResult: &deploy.LastResult{
			Success:  false,
			ExitCode: 3,
		},
	})

	r, _ := testDeployHandler(t, mockSvc)

	req := httptest.NewRequest(http.MethodGet, "/deploy/status?env=prod", nil)
	req.Header.Set("Authorization", "secret")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"exitCode":3`)
	require.Contains(t, rec.Body.String(), `"success":false`)
}
