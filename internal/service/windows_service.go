//go:build windows

package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sys/windows/svc"
	"golang.org/x/sys/windows/svc/debug"
	"golang.org/x/sys/windows/svc/eventlog"
	"golang.org/x/sys/windows/svc/mgr"
)

const (
	ServiceName        = "TeamsMeetingBridge"
	ServiceDescription = "Microsoft device-code sign-in and Teams meeting scheduling backend"

	// Startup pings Postgres and Redis, so give the SCM a generous hint.
	startWaitHint = 30 * time.Second
	stopWaitHint  = 20 * time.Second

	eventID            = 1
	exitStartFailed    = 1
	exitUnexpectedStop = 2
)

// bridgeHandler adapts Application to the service control manager.
type bridgeHandler struct {
	app  *Application
	elog debug.Log
}

func (h *bridgeHandler) Execute(args []string, r <-chan svc.ChangeRequest, changes chan<- svc.Status) (bool, uint32) {
	changes <- svc.Status{State: svc.StartPending, WaitHint: uint32(startWaitHint.Milliseconds())}

	startCtx, cancel := context.WithTimeout(context.Background(), startWaitHint)
	err := h.app.Start(startCtx)
	cancel()
	if err != nil {
		h.elog.Error(eventID, fmt.Sprintf("bridge failed to start: %v", err))
		return true, exitStartFailed
	}

	changes <- svc.Status{State: svc.Running, Accepts: svc.AcceptStop | svc.AcceptShutdown}
	h.elog.Info(eventID, "bridge running")

	for c := range r {
		switch c.Cmd {
		case svc.Interrogate:
			changes <- c.CurrentStatus
		case svc.Stop, svc.Shutdown:
			changes <- svc.Status{State: svc.StopPending, WaitHint: uint32(stopWaitHint.Milliseconds())}

			stopCtx, cancel := context.WithTimeout(context.Background(), stopWaitHint)
			err := h.app.Stop(stopCtx)
			cancel()
			if err != nil {
				h.elog.Warning(eventID, fmt.Sprintf("bridge stopped with errors: %v", err))
			}
			return false, 0
		default:
			h.elog.Warning(eventID, fmt.Sprintf("ignoring control request %d", c.Cmd))
		}
	}

	return true, exitUnexpectedStop
}

// RunService hands control to the SCM, or to the console emulator when isDebug is set.
func RunService(isDebug bool, app *Application) error {
	var (
		elog debug.Log
		err  error
	)
	run := svc.Run
	if isDebug {
		elog = debug.New(ServiceName)
		run = debug.Run
	} else if elog, err = eventlog.Open(ServiceName); err != nil {
		return fmt.Errorf("failed to open event log: %w", err)
	}
	defer elog.Close()

	if err := run(ServiceName, &bridgeHandler{app: app, elog: elog}); err != nil {
		elog.Error(eventID, fmt.Sprintf("service failed: %v", err))
		return err
	}
	return nil
}

// withService opens the installed bridge service for a single SCM operation.
func withService(fn func(*mgr.Service) error) error {
	m, err := mgr.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to service manager: %w", err)
	}
	defer m.Disconnect()

	s, err := m.OpenService(ServiceName)
	if err != nil {
		return fmt.Errorf("service %s is not installed: %w", ServiceName, err)
	}
	defer s.Close()

	return fn(s)
}

// InstallService registers the bridge with delayed auto-start so the
// network and local database services come up first.
func InstallService(exePath string) error {
	m, err := mgr.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to service manager: %w", err)
	}
	defer m.Disconnect()

	if s, err := m.OpenService(ServiceName); err == nil {
		s.Close()
		return fmt.Errorf("service %s already exists", ServiceName)
	}

	s, err := m.CreateService(ServiceName, exePath, mgr.Config{
		DisplayName:      DisplayName,
		Description:      ServiceDescription,
		StartType:        mgr.StartAutomatic,
		DelayedAutoStart: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	defer s.Close()

	if err := eventlog.InstallAsEventCreate(ServiceName, eventlog.Error|eventlog.Warning|eventlog.Info); err != nil {
		fmt.Printf("Warning: event log source not registered: %v\n", err)
	}

	// Back off between restarts so a down database is not hammered
	actions := []mgr.RecoveryAction{
		{Type: mgr.ServiceRestart, Delay: 10 * time.Second},
		{Type: mgr.ServiceRestart, Delay: 30 * time.Second},
		{Type: mgr.ServiceRestart, Delay: 2 * time.Minute},
	}
	if err := s.SetRecoveryActions(actions, uint32((24 * time.Hour).Seconds())); err != nil {
		fmt.Printf("Warning: recovery actions not set: %v\n", err)
	}

	return nil
}

func UninstallService() error {
	return withService(func(s *mgr.Service) error {
		_ = eventlog.Remove(ServiceName)
		return s.Delete()
	})
}

func StartService() error {
	return withService(func(s *mgr.Service) error {
		return s.Start()
	})
}

// StopService asks the SCM to stop the bridge; it does not wait for StopPending to clear.
func StopService() error {
	return withService(func(s *mgr.Service) error {
		_, err := s.Control(svc.Stop)
		return err
	})
}

func IsWindowsService() (bool, error) {
	return svc.IsWindowsService()
}
