// ABOUTME: Entry point for the agent-gateway chat server
// ABOUTME: Wires store, tools, router, agents, and orchestrator behind the HTTP gateway

package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"
	"golang.org/x/sync/errgroup"

	"github.com/helperhub/agent-gateway/internal/agents"
	"github.com/helperhub/agent-gateway/internal/auth"
	"github.com/helperhub/agent-gateway/internal/collab"
	"github.com/helperhub/agent-gateway/internal/config"
	"github.com/helperhub/agent-gateway/internal/gateway"
	"github.com/helperhub/agent-gateway/internal/orchestrator"
	"github.com/helperhub/agent-gateway/internal/router"
	"github.com/helperhub/agent-gateway/internal/store"
	"github.com/helperhub/agent-gateway/internal/toolset"
	"github.com/helperhub/agent-gateway/internal/tools"
)

// version is overridden at build time via ldflags.
var version = "dev"

const banner = `
                         _                      _
  __ _  __ _  ___ _ __ | |_       __ _  __ _ | |_ ___
 / _' |/ _' |/ _ \ '_ \| __|____ / _' |/ _' || __/ _ \
| (_| | (_| |  __/ | | | ||_____| (_| | (_| || || (_) |
 \__,_|\__, |\___|_| |_|\__|     \__, |\__,_| \__\___/
       |___/                     |___/
`

// getConfigPath returns the path to the gateway config file.
// Priority: HELPERHUB_CONFIG env var > XDG_CONFIG_HOME/helperhub/gateway.yaml > ~/.config/helperhub/gateway.yaml
func getConfigPath() string {
	if envPath := os.Getenv("HELPERHUB_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "gateway.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "helperhub", "gateway.yaml")
}

// getDataPath returns the path to the data directory.
// Priority: XDG_DATA_HOME/helperhub > ~/.local/share/helperhub
func getDataPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data" // fallback
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "helperhub")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: agent-gateway <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve                Start the gateway server")
		fmt.Println("  init                 Create a config file with a fresh JWT secret")
		fmt.Println("  token --user USER    Mint a development JWT for a user id")
		fmt.Println("  health               Check gateway health")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit()
	case "token":
		err = runToken()
	case "health":
		err = runHealth(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("Config:   %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:     %s\n", cfg.Server.HTTPAddr)
	green.Print("    ▶ ")
	fmt.Printf("Database: %s\n", cfg.Database.Path)
	fmt.Println()

	logger.Info("starting agent-gateway",
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
	)

	s, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer s.Close()

	registry := tools.NewRegistry(tools.RegistryConfig{
		Logger:     logger,
		Timeout:    cfg.Agents.ToolTimeout,
		MaxRetries: cfg.Agents.ToolRetries,
	})
	clients := toolset.Clients{
		Tasks:   collab.NewTasksClient(cfg.Collaborators.TasksURL),
		Search:  collab.NewSearchClient(cfg.Collaborators.SearchURL),
		Profile: collab.NewProfileClient(cfg.Collaborators.ProfileURL),
	}
	if err := toolset.RegisterAll(registry, clients); err != nil {
		return fmt.Errorf("registering tools: %w", err)
	}

	orch, err := orchestrator.New(orchestrator.Config{
		Store: s,
		Router: router.New(router.Config{
			ConfidenceThreshold: cfg.Agents.ConfidenceThreshold,
			Logger:              logger,
		}),
		Agents:        agents.NewSet(logger),
		Registry:      registry,
		Logger:        logger,
		LoopLimit:     cfg.Agents.LoopLimit,
		HistoryWindow: cfg.Agents.HistoryWindow,
	})
	if err != nil {
		return fmt.Errorf("creating orchestrator: %w", err)
	}

	gw, err := gateway.New(gateway.Config{
		Addr:         cfg.Server.HTTPAddr,
		Orchestrator: orch,
		Store:        s,
		Verifier:     auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret)),
		Logger:       logger,
		DedupeTTL:    cfg.Agents.DedupeTTL,
	})
	if err != nil {
		return fmt.Errorf("creating gateway: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(gw.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return gw.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(&colorHandler{level: level})
}

// colorHandler provides colorized log output with thread-safe writes.
type colorHandler struct {
	mu    sync.Mutex
	level slog.Level
	attrs []slog.Attr
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var buf strings.Builder
	buf.WriteString(color.HiBlackString(r.Time.Format("15:04:05") + " "))

	switch r.Level {
	case slog.LevelDebug:
		buf.WriteString(color.MagentaString("DBG "))
	case slog.LevelInfo:
		buf.WriteString(color.CyanString("INF "))
	case slog.LevelWarn:
		buf.WriteString(color.YellowString("WRN "))
	case slog.LevelError:
		buf.WriteString(color.New(color.FgRed, color.Bold).Sprint("ERR "))
	default:
		buf.WriteString("??? ")
	}

	buf.WriteString(r.Message)

	for _, a := range h.attrs {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
	}
	r.Attrs(func(a slog.Attr) bool {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
		return true
	})

	buf.WriteString("\n")
	fmt.Print(buf.String())
	return nil
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	newAttrs = append(newAttrs, attrs...)
	return &colorHandler{level: h.level, attrs: newAttrs}
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	return h
}

// runInit writes a starter config with a freshly generated JWT secret.
func runInit() error {
	configPath := getConfigPath()
	dataPath := getDataPath()
	dbPath := filepath.Join(dataPath, "gateway.db")

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config already exists: %s", configPath)
	}

	secretBytes := make([]byte, 32)
	if _, err := rand.Read(secretBytes); err != nil {
		return fmt.Errorf("generating JWT secret: %w", err)
	}
	jwtSecret := base64.StdEncoding.EncodeToString(secretBytes)

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.MkdirAll(dataPath, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	configContent := fmt.Sprintf(`# agent-gateway configuration
# Generated by agent-gateway init

server:
  http_addr: "localhost:8080"

database:
  path: "%s"

auth:
  jwt_secret: "%s"

collaborators:
  tasks_url: "http://localhost:8081"
  search_url: "http://localhost:8082"
  profile_url: "http://localhost:8083"

agents:
  loop_limit: 8
  history_window: 20
  tool_timeout: "15s"
  tool_retries: 2
  confidence_threshold: 0.3
  dedupe_ttl: "30s"

logging:
  level: "info"
  format: "text"
`, dbPath, jwtSecret)

	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	green := color.New(color.FgGreen)
	green.Printf("  ✓ Created config: %s\n", configPath)
	fmt.Println()
	fmt.Println("To start the server:")
	fmt.Println("  agent-gateway serve")
	return nil
}

// runToken mints a development JWT signed with the configured secret.
func runToken() error {
	var userID string
	args := os.Args[2:]
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--user" || arg == "-u":
			if i+1 >= len(args) {
				return fmt.Errorf("--user requires a value")
			}
			userID = args[i+1]
			i++
		case strings.HasPrefix(arg, "--user="):
			userID = strings.TrimPrefix(arg, "--user=")
		default:
			return fmt.Errorf("unexpected argument: %s", arg)
		}
	}
	if userID == "" {
		return fmt.Errorf("--user flag is required")
	}

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	verifier := auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret))
	token, err := verifier.Generate(userID, 30*24*time.Hour)
	if err != nil {
		return fmt.Errorf("generating token: %w", err)
	}

	cyan := color.New(color.FgCyan)
	cyan.Printf("  Token for %s (valid 30 days):\n", userID)
	fmt.Println(token)
	return nil
}

func runHealth(ctx context.Context) error {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	url := fmt.Sprintf("http://%s/healthz", cfg.Server.HTTPAddr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}
