package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"teams-meeting-bridge/internal/config"
	"teams-meeting-bridge/internal/service"
)

func main() {
	install := flag.Bool("install", false, "Register the bridge as a Windows service and start it")
	uninstall := flag.Bool("uninstall", false, "Stop and remove the Windows service")
	start := flag.Bool("start", false, "Start the installed service")
	stop := flag.Bool("stop", false, "Stop the installed service")
	debug := flag.Bool("debug", false, "Run in the console with development logging at debug level")
	version := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *version {
		fmt.Printf("%s %s\n", service.DisplayName, service.Version)
		return
	}

	exePath, err := os.Executable()
	if err != nil {
		log.Fatal(err)
	}
	// config.yaml and .env are looked up next to the binary; the SCM starts us in System32
	if err := os.Chdir(filepath.Dir(exePath)); err != nil {
		log.Printf("Warning: staying in %s: %v", mustGetwd(), err)
	}

	switch {
	case *install:
		must(service.InstallService(exePath), "install")
		fmt.Printf("%s installed\n", service.DisplayName)
		if err := service.StartService(); err != nil {
			log.Printf("Warning: installed but not started: %v", err)
			return
		}
		fmt.Println("Service started")
	case *uninstall:
		if err := service.StopService(); err != nil && !errors.Is(err, service.ErrServiceUnsupported) {
			log.Printf("Warning: stop before uninstall failed: %v", err)
		}
		must(service.UninstallService(), "uninstall")
		fmt.Printf("%s uninstalled\n", service.DisplayName)
	case *start:
		must(service.StartService(), "start")
		fmt.Println("Service started")
	case *stop:
		must(service.StopService(), "stop")
		fmt.Println("Service stop requested")
	default:
		runBridge(*debug)
	}
}

func runBridge(debug bool) {
	isService, err := service.IsWindowsService()
	if err != nil {
		log.Printf("Warning: could not detect service manager: %v", err)
	}
	app := service.NewApplication()

	if isService {
		must(service.RunService(false, app), "run")
		return
	}

	if debug {
		// Picked up by the viper env overrides when the graph loads config
		os.Setenv("APP_ENV", "development")
		os.Setenv("LOGGING_LEVEL", "debug")
	}
	printBanner(debug)

	must(service.RunService(debug, app), "run")
}

func printBanner(debug bool) {
	fmt.Printf("%s %s\n", service.DisplayName, service.Version)

	cfg, err := config.NewConfig()
	if err != nil {
		// the application reports the same error with more context on start
		fmt.Printf("Config not loaded: %v\n\n", err)
		return
	}
	fmt.Printf("Environment: %s, log level: %s\n", cfg.App.Env, cfg.Logging.Level)
	fmt.Printf("Health check: http://localhost:%d/health\n", cfg.App.Port)
	if debug {
		fmt.Println("Debug mode: Windows service events are echoed to the console")
	}
	fmt.Println("Press Ctrl+C to stop.")
	fmt.Println()
}

func must(err error, action string) {
	if err != nil {
		log.Fatalf("Failed to %s %s: %v", action, service.DisplayName, err)
	}
}

func mustGetwd() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}
