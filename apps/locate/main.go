package main

import (
	"image"
	"image/color"
	"io"
	"os"
	"time"

	"gioui.org/app"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"github.com/joho/godotenv"
	"github.com/olablt/gio-locate/geolocation"
	"github.com/olablt/gio-locate/internal/config"
	"github.com/olablt/gio-locate/internal/logging"
	"github.com/olablt/gio-locate/internal/uiloop"
	"github.com/olablt/gio-locate/locate"
	"github.com/olablt/gio-locate/mapview"
	"github.com/olablt/gio-locate/tiles"
	"github.com/olablt/gio-locate/tiles/worker"
)

// bannerTTL is how long a notification stays on screen.
const bannerTTL = 5 * time.Second

type ui struct {
	theme  *material.Theme
	mv     *mapview.MapView
	ctrl   *locate.Controller
	locate widget.Clickable
	follow widget.Clickable

	banner      string
	bannerUntil time.Time
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func main() {
	envErr := godotenv.Load()

	configDir := getEnv("GIO_LOCATE_CONFIG_DIR", ".")
	cfgErr := config.Load(configDir)
	if cfgErr != nil {
		config.Defaults()
	}

	var logFile io.Writer
	if path := config.GetString("logFile"); path != "" {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err == nil {
			defer f.Close()
			logFile = f
		}
	}
	log := logging.Setup(getEnv("GIO_LOCATE_LOG_LEVEL", config.GetString("logLevel")), os.Stdout, logFile)
	if envErr != nil {
		log.Debug().Msg("no .env file found, using environment variables")
	}
	if cfgErr != nil {
		log.Warn().Err(cfgErr).Str("dir", configDir).Msg("using default configuration")
	}

	opts, err := config.Locate()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid locate options")
	}
	sim, err := config.Simulator()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid simulator settings")
	}
	tc := config.Tiles()

	var provider tiles.TileProvider = tiles.NewLocalTileProvider()
	if !tc.Offline {
		provider = tiles.NewFallbackProvider(tiles.NewOSMTileProvider(tc.URL, tc.UserAgent, log), provider)
	}
	pool := worker.NewPool(tc.Workers, tc.Queue, log)
	tm := tiles.NewManager(provider, pool, tc.CacheSize, log)

	refresh := make(chan struct{}, 1)
	mv := mapview.New(tm, refresh, log)
	mv.Theme = material.NewTheme()

	go func() {
		w := new(app.Window)
		w.Option(app.Title("Locate"), app.Size(unit.Dp(800), unit.Dp(600)))
		go func() {
			for range refresh {
				w.Invalidate()
			}
		}()

		loop := uiloop.New(w.Invalidate)

		var src geolocation.Source = &geolocation.Simulator{
			Route:    sim.Route,
			Speed:    sim.Speed,
			Interval: sim.Interval,
			Accuracy: sim.Accuracy,
		}
		if sim.Denied {
			src = geolocation.Denied{}
		}
		geo := geolocation.New(src, loop.Post,
			geolocation.WithLogger(logging.Sampled(log)),
			geolocation.WithProjection(mv.Projection()),
			geolocation.WithTrackingOptions(opts.LocateOptions))

		u := &ui{theme: mv.Theme, mv: mv}
		opts.Logger = log
		opts.Notify = func(msg string) {
			u.banner, u.bannerUntil = msg, time.Now().Add(bannerTTL)
			w.Invalidate()
		}
		u.ctrl = locate.New(mv, geo, opts)
		config.Watch(func(s locate.Strings) {
			loop.Post(func() { u.ctrl.SetStrings(s) })
		})

		if err := u.run(w, loop); err != nil {
			log.Error().Err(err).Msg("window closed")
		}
		geo.Close()
		pool.Shutdown()
		os.Exit(0)
	}()
	app.Main()
}

func (u *ui) run(w *app.Window, loop *uiloop.Queue) error {
	var ops op.Ops
	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			return e.Err
		case app.FrameEvent:
			loop.Drain()
			gtx := app.NewContext(&ops, e)
			u.layout(gtx)
			e.Frame(gtx.Ops)
		}
	}
}

func (u *ui) layout(gtx layout.Context) layout.Dimensions {
	if u.locate.Clicked(gtx) {
		if u.ctrl.State() == locate.Disabled {
			u.ctrl.Start()
		} else {
			u.ctrl.Stop()
		}
	}
	if u.follow.Clicked(gtx) {
		if u.ctrl.Following() {
			u.ctrl.StopFollow()
		} else {
			u.ctrl.StartFollow()
		}
	}

	return layout.Stack{}.Layout(gtx,
		layout.Expanded(u.mv.Layout),
		layout.Stacked(func(gtx layout.Context) layout.Dimensions {
			return layout.UniformInset(unit.Dp(8)).Layout(gtx, u.controls)
		}),
	)
}

func (u *ui) controls(gtx layout.Context) layout.Dimensions {
	locateLabel := "Locate"
	if u.ctrl.State() != locate.Disabled {
		locateLabel = "Stop"
	}
	followLabel := "Follow"
	if u.ctrl.Following() {
		followLabel = "Unfollow"
	}

	children := []layout.FlexChild{
		layout.Rigid(material.Button(u.theme, &u.locate, locateLabel).Layout),
		layout.Rigid(layout.Spacer{Height: unit.Dp(4)}.Layout),
		layout.Rigid(material.Button(u.theme, &u.follow, followLabel).Layout),
		layout.Rigid(layout.Spacer{Height: unit.Dp(4)}.Layout),
		layout.Rigid(u.stateLabel),
	}
	if u.banner != "" && gtx.Now.Before(u.bannerUntil) {
		children = append(children,
			layout.Rigid(layout.Spacer{Height: unit.Dp(4)}.Layout),
			layout.Rigid(u.bannerBox))
		gtx.Execute(op.InvalidateCmd{At: u.bannerUntil})
	}
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx, children...)
}

func (u *ui) stateLabel(gtx layout.Context) layout.Dimensions {
	return withBackground(gtx, color.NRGBA{R: 255, G: 255, B: 255, A: 220},
		material.Body2(u.theme, u.ctrl.State().String()).Layout)
}

func (u *ui) bannerBox(gtx layout.Context) layout.Dimensions {
	l := material.Body2(u.theme, u.banner)
	l.Color = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	return withBackground(gtx, color.NRGBA{R: 180, G: 40, B: 40, A: 230}, l.Layout)
}

func withBackground(gtx layout.Context, bg color.NRGBA, w layout.Widget) layout.Dimensions {
	macro := op.Record(gtx.Ops)
	dims := layout.UniformInset(unit.Dp(4)).Layout(gtx, w)
	call := macro.Stop()

	rr := gtx.Dp(unit.Dp(4))
	paint.FillShape(gtx.Ops, bg, clip.UniformRRect(image.Rectangle{Max: dims.Size}, rr).Op(gtx.Ops))
	call.Add(gtx.Ops)
	return dims
}
