package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ayusman/handmouse/internal/app"
	"github.com/ayusman/handmouse/internal/capture"
	"github.com/ayusman/handmouse/internal/config"
	"github.com/ayusman/handmouse/internal/detector"
	"github.com/ayusman/handmouse/internal/dispatch"
	"github.com/ayusman/handmouse/internal/input"
	"github.com/ayusman/handmouse/internal/logging"
	"github.com/ayusman/handmouse/internal/plugin"
	"github.com/ayusman/handmouse/internal/server"
	"github.com/ayusman/handmouse/internal/store"
	"github.com/ayusman/handmouse/internal/tray"
)

const version = "dev"

type options struct {
	configPath string
	dominant   string
	cameraID   int
	addr       string
	tray       bool
	verbose    bool
	logDir     string
	dataDir    string
	script     string
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "handmouse",
		Short: "Control the mouse with hand gestures",
		Long: `handmouse reads webcam frames, classifies hand gestures and turns them
into cursor moves, clicks, drags, scrolling, brightness and volume changes.`,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, st, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			defer st.Close()
			return run(cmd.Context(), cfg, st, opts)
		},
	}

	f := cmd.PersistentFlags()
	f.StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file")
	f.StringVar(&opts.dominant, "dominant", "", "dominant hand: Left or Right")
	f.IntVar(&opts.cameraID, "camera", 0, "camera device index")
	f.StringVar(&opts.addr, "addr", "", "status server address, empty string disables it")
	f.BoolVar(&opts.tray, "tray", false, "show the system tray menu")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	f.StringVar(&opts.logDir, "log-dir", "", "also write logs to this directory")
	f.StringVar(&opts.dataDir, "data-dir", "", "settings database and plugin directory")
	f.StringVar(&opts.script, "mediapipe-script", "", "path to mediapipe_service.py")

	cmd.AddCommand(newConfigCmd(&opts))
	return cmd
}

func newConfigCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, st, err := loadConfig(cmd, *opts)
			if err != nil {
				return err
			}
			defer st.Close()

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(cfg)
		},
	}
}

// loadConfig layers the file, persisted settings and flags, in that order.
func loadConfig(cmd *cobra.Command, opts options) (config.Config, *store.Store, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return cfg, nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		cfg.DataDir = opts.dataDir
	}

	st, err := store.Open(cfg.DataDir)
	if err != nil {
		return cfg, nil, fmt.Errorf("open settings store: %w", err)
	}

	settings, err := st.Settings().List()
	if err != nil {
		st.Close()
		return cfg, nil, fmt.Errorf("read settings: %w", err)
	}
	for _, s := range settings {
		if err := cfg.Apply(s.Key, s.Value); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "ignoring stored setting %s: %v\n", s.Key, err)
		}
	}

	if flags.Changed("dominant") {
		if err := cfg.Apply(config.KeyDominantHand, opts.dominant); err != nil {
			st.Close()
			return cfg, nil, err
		}
	}
	if flags.Changed("camera") {
		cfg.CameraID = opts.cameraID
	}
	if flags.Changed("addr") {
		cfg.ListenAddr = opts.addr
	}
	if flags.Changed("tray") {
		cfg.Tray = opts.tray
	}
	if flags.Changed("log-dir") {
		cfg.LogDir = opts.logDir
	}
	if opts.verbose {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		st.Close()
		return cfg, nil, err
	}
	return cfg, st, nil
}

func run(ctx context.Context, cfg config.Config, st *store.Store, opts options) error {
	log, err := logging.New(cfg.LogLevel, cfg.LogDir)
	if err != nil {
		return err
	}

	plugins := plugin.NewManager(cfg.ResolvedPluginDir(), log)
	if err := plugins.Discover(); err != nil {
		log.WithError(err).Warn("plugin discovery failed")
	}
	executor := plugin.NewExecutor(plugin.DefaultTimeout, log)

	detCfg := detector.DefaultConfig()
	detCfg.Script = opts.script
	det, err := detector.NewMediaPipeDetector(detCfg, log)
	if err != nil {
		return fmt.Errorf("landmark detector: %w", err)
	}

	cam := capture.NewCamera(capture.Config{
		DeviceID: cfg.CameraID,
		FPS:      cfg.FPS,
		Mirror:   cfg.Mirror,
	}, log)
	sink := input.NewRobotSink(input.NewPluginBrightness(ctx, plugins, executor), log)

	a := app.New(cfg, cam, det, sink, log)
	log.WithFields(logrus.Fields{
		"run":      a.RunID(),
		"dominant": cfg.DominantHand,
		"camera":   cfg.CameraID,
		"plugins":  len(plugins.List()),
	}).Info("handmouse starting")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.ListenAddr != "" {
		events := server.NewEventsHandler(log)
		a.OnEvent(events.Publish)
		srv := server.New(server.Config{
			Controller: a,
			Store:      st,
			Events:     events,
			Log:        log,
		})
		go func() {
			if err := srv.ListenAndServe(ctx, cfg.ListenAddr); err != nil {
				log.WithError(err).Error("status server failed")
			}
		}()
	}

	if !cfg.Tray {
		return a.Run(ctx)
	}

	t := newTray(a, st, log, cancel)
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Run(ctx)
		t.Quit()
	}()
	t.Run()
	cancel()
	return <-errCh
}

func newTray(a *app.App, st *store.Store, log logrus.FieldLogger, quit func()) *tray.Tray {
	t := tray.New(a.IsEnabled(), a.Config().DominantHand)
	t.OnToggle(a.SetEnabled)
	t.OnQuit(quit)
	t.OnSwapHands(func() {
		next := otherHand(a.Config().DominantHand)
		if err := a.SetDominantHand(next); err != nil {
			log.WithError(err).Error("swap hands")
			return
		}
		if err := st.Settings().Set(config.KeyDominantHand, next); err != nil {
			log.WithError(err).Error("persist dominant hand")
		}
		t.SetDominant(next)
	})
	a.OnEvent(func(e dispatch.Event) {
		if e.Type == dispatch.EventGesture {
			t.SetLastGesture(e.Gesture.String())
		}
	})
	return t
}

func otherHand(hand string) string {
	if hand == detector.Left {
		return detector.Right
	}
	return detector.Left
}
