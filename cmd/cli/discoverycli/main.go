package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/antigravity-tools/gateway-discovery/pkg/discovery"
	"github.com/antigravity-tools/gateway-discovery/pkg/logging"

	"github.com/fatih/color"
	flags "github.com/jessevdk/go-flags"
)

type flagOptions struct {
	ProcessName string `long:"process-name" description:"executable name of the gateway process"`
	Config      string `long:"config" description:"path to a YAML configuration file"`
	Attempts    int    `long:"attempts" description:"number of discovery attempts" default:"3"`
	BaseDelayMs int    `long:"base-delay-ms" description:"base retry delay in milliseconds" default:"500"`
	NoAmbient   bool   `long:"no-ambient" description:"disable the ambient discovery fallback"`
	ShowToken   bool   `long:"show-token" description:"print the CSRF token instead of masking it"`
	LogLevel    string `long:"log-level" description:"log level (debug, info, warn, error)" default:"warn"`
}

func logPrefix(module string) string {
	return fmt.Sprintf("module: %s , ", module)
}

func main() {
	var opts flagOptions
	var argv []string = os.Args[1:]
	var parser = flags.NewParser(&opts, flags.HelpFlag)
	var err error
	_, err = parser.ParseArgs(argv)
	if err != nil {
		fmt.Printf("Command line flags parsing failed: %v", err)
		os.Exit(1)
	}

	config := discovery.DefaultConfig(opts.ProcessName)
	config.Attempts = opts.Attempts
	config.BaseDelay = time.Duration(opts.BaseDelayMs) * time.Millisecond

	logLevel := opts.LogLevel
	if opts.Config != "" {
		configFile, err := discovery.LoadConfigFromFile(opts.Config)
		if err != nil {
			fmt.Printf("Failed to load configuration: %v\n", err)
			os.Exit(1)
		}
		config = configFile.Discovery
		if configFile.LogLevel != "" {
			logLevel = configFile.LogLevel
		}
	}

	if config.ProcessName == "" {
		fmt.Println("Process name is required (--process-name or --config)")
		os.Exit(1)
	}

	if err := discovery.ValidateConfig(config); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	zapLogger, err := logging.NewZapLogger(logLevel)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(
		logPrefix("gateway-discovery"), logging.LogFuncs{
			Debugf: zapLogger.Debugf,
			Infof:  zapLogger.Infof,
			Warnf:  zapLogger.Warnf,
			Errorf: zapLogger.Errorf,
		})

	finder := discovery.NewFinder(config, logger)

	ctx := context.Background()

	endpoint := finder.Discover(ctx)
	if endpoint == nil && !opts.NoAmbient {
		endpoint = finder.DiscoverAmbient(ctx)
	}

	if endpoint == nil {
		color.Yellow("gateway not found")
		os.Exit(1)
	}

	token := endpoint.Token
	if !opts.ShowToken {
		token = maskToken(token)
	}

	color.Green("gateway found")
	fmt.Printf("host:  %s\n", endpoint.Host)
	fmt.Printf("port:  %d\n", endpoint.Port)
	fmt.Printf("token: %s\n", token)
}

func maskToken(token string) string {
	if len(token) <= 4 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + strings.Repeat("*", len(token)-4)
}
