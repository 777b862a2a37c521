package app

import (
	"context"
	"fmt"
	"time"
	"typeinspector/internal/shared/util"
)

type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components"`
}

type HealthService struct {
	app *App
}

func NewHealthService(app *App) *HealthService {
	return &HealthService{app: app}
}

func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:     "up",
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]string),
	}

	if s.app.Session == nil {
		status.Status = "degraded"
		status.Components["session"] = "missing"
	} else {
		status.Components["session"] = fmt.Sprintf("ok (%s, %d cached results)", s.app.Session.ID(), s.app.Session.Cache().Len())
	}

	if session, err := s.app.Backend.BeginRead(); err != nil {
		status.Status = "degraded"
		status.Components["type_backend"] = err.Error()
	} else {
		session.Release()
		status.Components["type_backend"] = "ok"
	}

	status.Components["workspace"] = fmt.Sprintf("ok (%d buffers)", len(s.app.Workspace.Buffers()))

	s.app.watchMu.Lock()
	watching := s.app.activeWatcher != nil
	s.app.watchMu.Unlock()
	if watching {
		status.Components["watcher"] = "ok"
	} else {
		status.Components["watcher"] = "stopped"
	}

	status.Components["heap_mb"] = fmt.Sprintf("%d", util.GetHeapAllocMB())
	return status
}
