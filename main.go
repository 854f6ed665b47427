package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/urfave/cli/v2"

	"github.com/wxveio/wxve-chat/app"
	"github.com/wxveio/wxve-chat/chat"
	"github.com/wxveio/wxve-chat/client"
	"github.com/wxveio/wxve-chat/config"
	"github.com/wxveio/wxve-chat/logger"
)

var version = "dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "xve: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "xve",
		Usage:   "Chat with Xve, the wxve.io market analysis assistant",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "endpoint",
				Usage: "chat service URL (overrides XVE_ENDPOINT)",
			},
			&cli.StringFlag{
				Name:  "profile",
				Usage: "named profile for state isolation (~/.xve/profiles/<name>)",
			},
			&cli.StringFlag{
				Name:  "theme",
				Usage: "color theme (" + strings.Join(config.Themes, ", ") + ")",
			},
			&cli.StringFlag{
				Name:  "idle-timeout",
				Usage: "abort a reply after this long without data, e.g. 90s",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "log to this file instead of <profile>/logs/xve.log",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "disable ANSI colors",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "log at debug level",
			},
		},
		Action: runTUI,
		Commands: []*cli.Command{
			{
				Name:      "ask",
				Usage:     "Send one message and print the reply",
				ArgsUsage: "[message...]",
				Action:    runAsk,
			},
		},
	}
}

// env is the resolved startup state shared by every command.
type env struct {
	cfg        config.Config
	profileDir string
	client     *client.Client
	closeLog   func()
}

// setup resolves config in precedence order: file, environment, flags.
func setup(c *cli.Context) (*env, error) {
	dir, err := config.ProfileDir(c.String("profile"))
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, cli.Exit(err.Error(), 2)
	}
	if c.IsSet("endpoint") {
		cfg.Endpoint = c.String("endpoint")
	}
	if c.IsSet("theme") {
		cfg.Theme = c.String("theme")
	}
	if c.IsSet("idle-timeout") {
		cfg.IdleTimeout = c.String("idle-timeout")
	}
	if c.IsSet("log-file") {
		cfg.LogFile = c.String("log-file")
	}
	if err := cfg.Validate(); err != nil {
		return nil, cli.Exit(err.Error(), 2)
	}
	idle, err := cfg.IdleTimeoutDuration()
	if err != nil {
		return nil, cli.Exit(err.Error(), 2)
	}

	if c.Bool("no-color") {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	logger.Configure(c.Bool("verbose"))
	logPath := cfg.LogFile
	if logPath == "" {
		logPath = logger.DefaultPath(dir)
	}
	closeLog := func() {}
	if closer, err := logger.SetupFile(logPath); err != nil {
		// The terminal belongs to the UI; without a file, stay silent.
		logger.Discard()
	} else {
		closeLog = func() { closer.Close() }
	}

	cl := client.New(cfg.Endpoint)
	cl.IdleTimeout = idle

	logger.Named("main").WithFields(logger.Fields{
		"version":  version,
		"endpoint": cfg.Endpoint,
		"profile":  dir,
		"config":   cfg.Source,
	}).Info("starting")

	return &env{cfg: cfg, profileDir: dir, client: cl, closeLog: closeLog}, nil
}

func runTUI(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.closeLog()

	m := app.New(app.Options{
		Client:     e.client,
		Config:     e.cfg,
		ProfileDir: e.profileDir,
		Version:    version,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	go func() {
		p.Send(app.ProgramReady{Program: p})
	}()

	if _, err := p.Run(); err != nil {
		logger.Named("main").WithError(err).Error("program exited")
		return err
	}
	return nil
}

func runAsk(c *cli.Context) error {
	text := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(text) == "" {
		data, err := io.ReadAll(c.App.Reader)
		if err != nil {
			return err
		}
		text = string(data)
	}
	if strings.TrimSpace(text) == "" {
		return cli.Exit("nothing to send", 2)
	}

	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.closeLog()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()

	out := c.App.Writer
	session := chat.NewSession()
	tw := &deltaWriter{w: out}
	session.OnChange(tw.observe)

	reply, err := session.Run(ctx, chat.HTTPTransport{Client: e.client}, text)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	if tw.wrote {
		fmt.Fprintln(out)
	}
	if reply.Failed {
		return cli.Exit(reply.Content, 1)
	}
	return nil
}

// deltaWriter writes each new piece of the in-flight reply as it arrives.
type deltaWriter struct {
	w       io.Writer
	printed int
	wrote   bool
}

func (d *deltaWriter) observe(s chat.Snapshot) {
	if !s.Loading {
		d.printed = 0
		return
	}
	if len(s.Text) > d.printed {
		io.WriteString(d.w, s.Text[d.printed:])
		d.printed = len(s.Text)
		d.wrote = true
	}
}
