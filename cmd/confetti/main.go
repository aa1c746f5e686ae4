package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"

	"chosenoffset.com/confetti/internal/audio"
	"chosenoffset.com/confetti/internal/confetti"
	"chosenoffset.com/confetti/internal/particle"
	"chosenoffset.com/confetti/internal/render"
	ebitenrender "chosenoffset.com/confetti/internal/render/ebiten"
	"chosenoffset.com/confetti/internal/render/terminal"
	"chosenoffset.com/confetti/internal/simulation"
)

type options struct {
	configPath string
	backend    string
	sound      bool
	envPath    string
	logPath    string
}

func main() {
	opts, err := parseOptions(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	if err := run(opts); err != nil {
		log.Fatal(err)
	}
}

// parseOptions reads flags. The .env file is loaded first so its values can
// supply flag defaults through CONFETTI_CONFIG and CONFETTI_BACKEND.
func parseOptions(args []string) (options, error) {
	fs := flag.NewFlagSet("confetti", flag.ContinueOnError)

	var opts options
	fs.StringVar(&opts.envPath, "env", ".env", "dotenv file with CONFETTI_* defaults")
	envPath := peekEnvPath(args, ".env")
	if err := loadDotEnv(envPath); err != nil {
		return opts, fmt.Errorf("failed to load %s: %w", envPath, err)
	}

	fs.StringVar(&opts.configPath, "config", envOr("CONFETTI_CONFIG", "confetti.yaml"), "JSON or YAML config file")
	fs.StringVar(&opts.backend, "backend", os.Getenv("CONFETTI_BACKEND"), "render backend: ebiten or terminal (overrides config)")
	fs.BoolVar(&opts.sound, "sound", false, "play a chirp on every burst (overrides config)")
	fs.StringVar(&opts.logPath, "log", "", "log file; the terminal backend discards logs without one")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	return opts, nil
}

// peekEnvPath finds -env before the full parse so the file can seed defaults.
func peekEnvPath(args []string, def string) string {
	for i, a := range args {
		switch {
		case a == "-env" || a == "--env":
			if i+1 < len(args) {
				return args[i+1]
			}
		case len(a) > 5 && a[:5] == "-env=":
			return a[5:]
		case len(a) > 6 && a[:6] == "--env=":
			return a[6:]
		}
	}
	return def
}

// loadDotEnv loads environment variables from a .env file.
// A missing file is silently ignored.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func loadConfig(opts options) (*simulation.Config, error) {
	cfg, err := simulation.LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.backend != "" {
		cfg.Backend = opts.backend
	}
	if opts.sound {
		cfg.Audio.Enabled = true
	}
	// Flags may have introduced bad values.
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(opts options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	closeLog, err := setupLogging(cfg.Backend, opts.logPath)
	if err != nil {
		return err
	}
	defer closeLog()

	var (
		renderer render.Renderer
		inputMgr render.InputManager
		engine   render.Engine
	)
	switch cfg.Backend {
	case simulation.BackendTerminal:
		input := terminal.NewInputManager()
		renderer = terminal.NewRenderer()
		inputMgr = input
		engine = terminal.NewEngine(input)
	default:
		renderer = ebitenrender.NewRenderer()
		inputMgr = ebitenrender.NewInputManager()
		engine = ebitenrender.NewEngine()
	}

	sys, err := particle.NewSystem(cfg.ParticlePhysics(), nil)
	if err != nil {
		return err
	}

	var player *audio.Player
	if cfg.Audio.Enabled {
		player, err = audio.NewPlayer(cfg.Audio)
		if err != nil {
			log.Printf("Warning: Running without sound: %v", err)
			player = nil
		}
		defer player.Close()
	}

	game := confetti.NewGame(cfg, sys, renderer, inputMgr, player)
	defer game.Close()

	// Set up the window
	engine.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	engine.SetWindowTitle(cfg.Window.Title)
	engine.SetWindowResizable(cfg.Window.Resizable)

	log.Printf("Starting confetti (%s backend)...", cfg.Backend)
	return engine.RunGame(game)
}

// setupLogging keeps log output off the terminal while tcell owns it.
func setupLogging(backend, path string) (func(), error) {
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		log.SetOutput(f)
		return func() {
			log.SetOutput(os.Stderr)
			f.Close()
		}, nil
	}
	if backend == simulation.BackendTerminal {
		log.SetOutput(io.Discard)
		return func() { log.SetOutput(os.Stderr) }, nil
	}
	return func() {}, nil
}
