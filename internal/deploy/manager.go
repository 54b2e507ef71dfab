package deploy

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"fde/internal/deployconfig"
	"fde/pkg/log"
	"fde/pkg/sid"

	"go.uber.org/zap"
)

// SyncResult is the outcome of a non-streamed deploy (spec §4.6.1).
type SyncResult struct {
	Success  bool
	Stdout   string
	Stderr   string
	ExitCode int
}

// ErrGated is returned by RunStream/RunSync when the cooldown/concurrency
// gate of spec §4.6.3 rejects a fresh request.
type ErrGated struct {
	Reason string
}

func (e *ErrGated) Error() string { return e.Reason }

// StatusSnapshot is the response shape of GET /deploy/status (spec §4.6.6).
type StatusSnapshot struct {
	Running       bool
	StartTime     time.Time
	HasStartTime  bool
	BufferedCount int
	LastResult    *LastResult
}

// Manager owns one envState per environment name and picks a Runner based
// on the resolved config's container flag (spec §4.6.7).
type Manager struct {
	mu      sync.Mutex
	envs    map[string]*envState
	cfg     *deployconfig.ResolvedConfig
	runner  Runner
	nowFunc func() time.Time
	sid     *sid.Sid
	logger  *log.Logger
}

func NewManager(cfg *deployconfig.ResolvedConfig, runner Runner, logger *log.Logger) *Manager {
	return &Manager{
		envs:    map[string]*envState{},
		cfg:     cfg,
		runner:  runner,
		nowFunc: time.Now,
		sid:     sid.NewSid(),
		logger:  logger,
	}
}

// runID returns a fresh sortable run identifier for log correlation across
// the lines one deploy produces (spec §9's "deploy-run / trace correlation
// IDs", never used for uploadId, which stays content-derived).
func (m *Manager) runID() string {
	id, err := m.sid.GenString()
	if err != nil {
		return "unknown"
	}
	return id
}

// cooldownFor resolves an environment's configured cooldown, falling back
// to CooldownWindow when CooldownSecs is unset (spec §9 Open Question
// resolution: cooldown is configurable per environment).
func cooldownFor(env *deployconfig.Environment) time.Duration {
	if env.CooldownSecs > 0 {
		return time.Duration(env.CooldownSecs) * time.Second
	}
	return CooldownWindow
}

func (m *Manager) stateFor(envName string) *envState {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.envs[envName]
	if !ok {
		s = newEnvState()
		m.envs[envName] = s
	}
	return s
}

// RunSync executes the deploy command to completion and returns its full
// output, the non-streamed branch of spec §4.6.1. It does not touch the
// running/cooldown gate — the state machine guards only streamed runs.
func (m *Manager) RunSync(ctx context.Context, env *deployconfig.Environment) (SyncResult, error) {
	prepared := prepareCommand(env, m.cfg)
	runID := m.runID()
	if m.logger != nil {
		m.logger.Info("deploy started", zap.String("env", env.Name), zap.String("runId", runID), zap.Bool("stream", false))
	}

	var stdout, stderr strings.Builder
	var mu sync.Mutex
	onLine := func(stream, line string) {
		mu.Lock()
		defer mu.Unlock()
		if stream == "stdout" {
			stdout.WriteString(line)
		} else {
			stderr.WriteString(line)
		}
	}

	exitCode, err := m.runner.Run(ctx, prepared.Command, prepared.Cwd, onLine)
	if err != nil {
		if m.logger != nil {
			m.logger.Error("deploy failed", zap.String("env", env.Name), zap.String("runId", runID), zap.Error(err))
		}
		return SyncResult{}, err
	}
	if m.logger != nil {
		m.logger.Info("deploy finished", zap.String("env", env.Name), zap.String("runId", runID), zap.Int("exitCode", exitCode))
	}

	return SyncResult{
		Success:  exitCode == 0,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
	}, nil
}

// StartStream begins a fresh streamed deploy under the cooldown/concurrency
// gate (spec §4.6.2/§4.6.3). On success it returns immediately; the
// subprocess runs in its own goroutine, and events land in the buffer as
// they're produced. Callers drain with Subscribe.
func (m *Manager) StartStream(env *deployconfig.Environment) error {
	s := m.stateFor(env.Name)

	s.mu.Lock()
	ok, reason := s.canStart(m.nowFunc(), cooldownFor(env))
	if !ok {
		s.mu.Unlock()
		return &ErrGated{Reason: reason}
	}
	s.start(m.nowFunc())
	s.mu.Unlock()

	go m.runStreamed(env, s)
	return nil
}

func (m *Manager) runStreamed(env *deployconfig.Environment, s *envState) {
	prepared := prepareCommand(env, m.cfg)
	runID := m.runID()
	if m.logger != nil {
		m.logger.Info("deploy started", zap.String("env", env.Name), zap.String("runId", runID), zap.Bool("stream", true))
	}

	onLine := func(stream, line string) {
		data, _ := json.Marshal(OutputData{Type: stream, Data: line})
		s.mu.Lock()
		s.append(EventOutput, data)
		s.mu.Unlock()
	}

	exitCode, err := m.runner.Run(context.Background(), prepared.Command, prepared.Cwd, onLine)

	now := m.nowFunc()
	s.mu.Lock()
	startTime := s.startTime
	if err != nil {
		data, _ := json.Marshal(ErrorData{Error: err.Error()})
		terminal := s.append(EventError, data)
		s.finish(LastResult{Success: false, StartTime: startTime, EndTime: now, ExitCode: -1, TerminalID: terminal.ID})
		s.mu.Unlock()
		if m.logger != nil {
			m.logger.Error("deploy failed", zap.String("env", env.Name), zap.String("runId", runID), zap.Error(err))
		}
		return
	}

	var terminal Event
	if exitCode == 0 {
		data, _ := json.Marshal(DoneData{Success: true, ExitCode: 0})
		terminal = s.append(EventDone, data)
	} else {
		data, _ := json.Marshal(ErrorData{ExitCode: exitCode})
		terminal = s.append(EventError, data)
	}
	s.finish(LastResult{Success: exitCode == 0, StartTime: startTime, EndTime: now, ExitCode: exitCode, TerminalID: terminal.ID})
	s.mu.Unlock()
	if m.logger != nil {
		m.logger.Info("deploy finished", zap.String("env", env.Name), zap.String("runId", runID), zap.Int("exitCode", exitCode))
	}
}

// Subscribe drives an SSE response for env, starting just after lastID
// (0 for a fresh stream that just called StartStream). It blocks, calling
// emit for every event in order, until the deploy this subscriber is
// watching finishes — matching both the fresh-stream and resume paths of
// spec §4.6.2/§4.6.4. A fresh caller should pass the lastID of 0.
func (m *Manager) Subscribe(ctx context.Context, envName string, lastID uint64, emit func(Event) error) error {
	s := m.stateFor(envName)

	for {
		s.mu.Lock()
		pending := s.eventsAfter(lastID)
		running := s.running
		notify := s.notify
		lastResult := s.lastResult
		s.mu.Unlock()

		for _, ev := range pending {
			if err := emit(ev); err != nil {
				return err
			}
			lastID = ev.ID
		}

		if !running {
			// Buffer drained and the deploy isn't running: if it ended
			// without ever emitting a terminal event the caller observed
			// (e.g. a resume landed after a later deploy's start() cleared
			// the previous run's buffer), synthesise one from lastResult
			// (spec §4.6.4).
			if len(pending) == 0 && lastResult != nil {
				return emitSynthesizedResult(lastResult, emit)
			}
			return nil
		}

		select {
		case <-notify:
			continue
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func emitSynthesizedResult(result *LastResult, emit func(Event) error) error {
	if result.Success {
		data, _ := json.Marshal(DoneData{Success: true, ExitCode: result.ExitCode})
		return emit(Event{ID: result.TerminalID, Event: EventDone, Data: data})
	}
	data, _ := json.Marshal(ErrorData{ExitCode: result.ExitCode})
	return emit(Event{ID: result.TerminalID, Event: EventError, Data: data})
}

// ResumeOrTerminal handles Last-Event-ID resumption (spec §4.6.4): if the
// deploy is still running, it's identical to a live subscribe starting
// after lastID; if it already ended, it synthesises exactly one terminal
// event (or a "no deployment in progress" error if there's no lastResult
// at all).
func (m *Manager) ResumeOrTerminal(ctx context.Context, envName string, lastID uint64, emit func(Event) error) error {
	s := m.stateFor(envName)

	s.mu.Lock()
	running := s.running
	lastResult := s.lastResult
	s.mu.Unlock()

	if !running {
		if lastResult == nil {
			data, _ := json.Marshal(ErrorData{Error: "No deployment in progress"})
			return emit(Event{ID: 0, Event: EventError, Data: data})
		}
		return emitSynthesizedResult(lastResult, emit)
	}

	return m.Subscribe(ctx, envName, lastID, emit)
}

// Status implements GET /deploy/status (spec §4.6.6).
func (m *Manager) Status(envName string) StatusSnapshot {
	s := m.stateFor(envName)
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := StatusSnapshot{
		Running:       s.running,
		BufferedCount: len(s.outputBuffer),
		LastResult:    s.lastResult,
	}
	if s.running {
		snap.StartTime = s.startTime
		snap.HasStartTime = true
	}
	return snap
}
