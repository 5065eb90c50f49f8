// Package config loads gio_locate.cfg.json through viper.
package config

import (
	"fmt"
	"reflect"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/olablt/gio-locate/geolocation"
	"github.com/olablt/gio-locate/locate"
	"github.com/spf13/viper"
)

// FileName is looked up in the directory passed to Load.
const FileName = "gio_locate.cfg.json"

// TilesConfig holds the tile source settings.
type TilesConfig struct {
	URL       string `json:"url" mapstructure:"url"`
	UserAgent string `json:"userAgent" mapstructure:"userAgent"`
	CacheSize int    `json:"cacheSize" mapstructure:"cacheSize"`
	Workers   int    `json:"workers" mapstructure:"workers"`
	Queue     int    `json:"queue" mapstructure:"queue"`
	Offline   bool   `json:"offline" mapstructure:"offline"`
}

// SimulatorConfig describes the simulated position source.
type SimulatorConfig struct {
	Route    []geolocation.Waypoint `json:"route" mapstructure:"route"`
	Speed    float64                `json:"speed" mapstructure:"speed"`
	Interval time.Duration          `json:"interval" mapstructure:"interval"`
	Accuracy float64                `json:"accuracy" mapstructure:"accuracy"`
	Denied   bool                   `json:"denied" mapstructure:"denied"`
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logFile", "")

	d := locate.DefaultOptions()
	viper.SetDefault("locate.drawCircle", d.DrawCircle)
	viper.SetDefault("locate.follow", d.Follow)
	viper.SetDefault("locate.stopFollowingOnDrag", d.StopFollowingOnDrag)
	viper.SetDefault("locate.remainActive", d.RemainActive)
	viper.SetDefault("locate.keepCurrentZoomLevel", d.KeepCurrentZoomLevel)
	viper.SetDefault("locate.showPopup", d.ShowPopup)
	viper.SetDefault("locate.metric", d.Metric)
	viper.SetDefault("locate.strings.metersUnit", d.Strings.MetersUnit)
	viper.SetDefault("locate.strings.feetUnit", d.Strings.FeetUnit)
	viper.SetDefault("locate.strings.popup", d.Strings.Popup)
	viper.SetDefault("locate.locateOptions.maximumAge", d.LocateOptions.MaximumAge.String())
	viper.SetDefault("locate.locateOptions.enableHighAccuracy", d.LocateOptions.EnableHighAccuracy)
	viper.SetDefault("locate.locateOptions.timeout", d.LocateOptions.Timeout.String())
	viper.SetDefault("locate.locateOptions.maxZoom", d.LocateOptions.MaxZoom)

	viper.SetDefault("tiles.url", "https://tile.openstreetmap.org/%d/%d/%d.png")
	viper.SetDefault("tiles.userAgent", "gio-locate/1.0")
	viper.SetDefault("tiles.cacheSize", 256)
	viper.SetDefault("tiles.workers", 4)
	viper.SetDefault("tiles.queue", 64)
	viper.SetDefault("tiles.offline", false)

	viper.SetDefault("simulator.route", []map[string]any{
		{"lat": 54.687157, "lng": 25.279652},
		{"lat": 54.689500, "lng": 25.286000},
		{"lat": 54.685800, "lng": 25.290500},
	})
	viper.SetDefault("simulator.speed", 12.0)
	viper.SetDefault("simulator.interval", "1s")
	viper.SetDefault("simulator.accuracy", 15.0)
	viper.SetDefault("simulator.denied", false)
}

// Load sets the defaults and reads FileName from configDir.
func Load(configDir string) error {
	setDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// Defaults makes the defaults visible without a config file.
func Defaults() {
	setDefaults()
}

var durationType = reflect.TypeOf(time.Duration(0))

// millisToDuration reads bare numbers as milliseconds, the unit the tracking
// options are written in. Strings like "2s" are left to the next hook.
func millisToDuration(from, to reflect.Type, data any) (any, error) {
	if to != durationType || from == durationType {
		return data, nil
	}
	switch from.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		ms := reflect.ValueOf(data).Convert(reflect.TypeOf(float64(0))).Float()
		return time.Duration(ms * float64(time.Millisecond)), nil
	}
	return data, nil
}

func decodeHooks() viper.DecoderConfigOption {
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.DecodeHookFuncType(millisToDuration),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
}

// duration reads key like the decode hooks do: numbers are milliseconds.
func duration(key string) (time.Duration, error) {
	var d time.Duration
	if err := viper.UnmarshalKey(key, &d, decodeHooks()); err != nil {
		return 0, fmt.Errorf("decoding %s: %w", key, err)
	}
	return d, nil
}

// Locate returns the locate control options. Keys missing from the file keep
// the values of locate.DefaultOptions.
func Locate() (locate.Options, error) {
	opts := locate.DefaultOptions()
	if err := viper.UnmarshalKey("locate", &opts, decodeHooks()); err != nil {
		return opts, fmt.Errorf("decoding locate options: %w", err)
	}
	return opts, nil
}

func Tiles() TilesConfig {
	return TilesConfig{
		URL:       viper.GetString("tiles.url"),
		UserAgent: viper.GetString("tiles.userAgent"),
		CacheSize: viper.GetInt("tiles.cacheSize"),
		Workers:   viper.GetInt("tiles.workers"),
		Queue:     viper.GetInt("tiles.queue"),
		Offline:   viper.GetBool("tiles.offline"),
	}
}

func Simulator() (SimulatorConfig, error) {
	c := SimulatorConfig{
		Speed:    viper.GetFloat64("simulator.speed"),
		Accuracy: viper.GetFloat64("simulator.accuracy"),
		Denied:   viper.GetBool("simulator.denied"),
	}
	var err error
	if c.Interval, err = duration("simulator.interval"); err != nil {
		return c, err
	}
	if err := viper.UnmarshalKey("simulator.route", &c.Route); err != nil {
		return c, fmt.Errorf("decoding simulator route: %w", err)
	}
	return c, nil
}

// Watch calls fn with the locate strings each time the config file changes.
// fn runs on the watcher goroutine.
func Watch(fn func(locate.Strings)) {
	viper.OnConfigChange(stringsChanged(fn))
	viper.WatchConfig()
}

func stringsChanged(fn func(locate.Strings)) func(fsnotify.Event) {
	return func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		var s locate.Strings
		if err := viper.UnmarshalKey("locate.strings", &s); err != nil {
			return
		}
		fn(s)
	}
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}
