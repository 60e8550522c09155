package service

import "errors"

// DisplayName is shown in the console banner and the Windows service manager
const DisplayName = "Teams Meeting Bridge"

// Version is set during build via ldflags
var Version = "dev"

// ErrServiceUnsupported is returned by the service-manager commands outside Windows.
var ErrServiceUnsupported = errors.New("service: the Windows service manager is not available on this platform")
