//go:build !windows

package service

import "context"

// RunService runs the bridge in the foreground until SIGINT/SIGTERM.
// isDebug only matters under the Windows service manager.
func RunService(isDebug bool, app *Application) error {
	return app.Run(context.Background())
}

func InstallService(exePath string) error { return ErrServiceUnsupported }

func UninstallService() error { return ErrServiceUnsupported }

func StartService() error { return ErrServiceUnsupported }

func StopService() error { return ErrServiceUnsupported }

// IsWindowsService is always false here.
func IsWindowsService() (bool, error) {
	return false, nil
}
