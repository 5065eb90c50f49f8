package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/olablt/gio-locate/geolocation"
	"github.com/olablt/gio-locate/locate"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, cfg string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0644))
	return path
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	writeConfig(t, dir, `{
		"logLevel": "debug",
		"locate": {
			"follow": false,
			"showPopup": true,
			"metric": false,
			"strings": { "popup": "Within {distance} {unit}" },
			"locateOptions": { "maxZoom": 15, "timeout": "30s" }
		},
		"tiles": { "offline": true, "workers": 2 }
	}`)

	require.NoError(t, Load(dir))
	assert.Equal(t, "debug", GetString("logLevel"))

	opts, err := Locate()
	require.NoError(t, err)
	assert.False(t, opts.Follow)
	assert.True(t, opts.ShowPopup)
	assert.False(t, opts.Metric)
	assert.True(t, opts.DrawCircle)
	assert.True(t, opts.RemainActive)
	assert.Equal(t, "Within {distance} {unit}", opts.Strings.Popup)
	assert.Equal(t, "meters", opts.Strings.MetersUnit)
	assert.Equal(t, 15, opts.LocateOptions.MaxZoom)
	assert.Equal(t, 30*time.Second, opts.LocateOptions.Timeout)
	assert.Equal(t, 2*time.Second, opts.LocateOptions.MaximumAge)
	assert.NotNil(t, opts.Style)

	tc := Tiles()
	assert.True(t, tc.Offline)
	assert.Equal(t, 2, tc.Workers)
	assert.Equal(t, 256, tc.CacheSize)
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	writeConfig(t, dir, `{}`)
	require.NoError(t, Load(dir))

	assert.Equal(t, "info", GetString("logLevel"))

	opts, err := Locate()
	require.NoError(t, err)
	want := locate.DefaultOptions()
	assert.Equal(t, want.Strings, opts.Strings)
	assert.Equal(t, want.LocateOptions, opts.LocateOptions)
	assert.Equal(t, want.Follow, opts.Follow)
	assert.Equal(t, want.StopFollowingOnDrag, opts.StopFollowingOnDrag)
	assert.Equal(t, want.KeepCurrentZoomLevel, opts.KeepCurrentZoomLevel)

	tc := Tiles()
	assert.Equal(t, "https://tile.openstreetmap.org/%d/%d/%d.png", tc.URL)
	assert.Equal(t, 4, tc.Workers)
	assert.False(t, tc.Offline)

	sim, err := Simulator()
	require.NoError(t, err)
	require.Len(t, sim.Route, 3)
	assert.Equal(t, geolocation.Waypoint{Lat: 54.687157, Lng: 25.279652}, sim.Route[0])
	assert.Equal(t, time.Second, sim.Interval)
	assert.Equal(t, 12.0, sim.Speed)
	assert.False(t, sim.Denied)
}

func TestLoad_SimulatorRoute(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	writeConfig(t, dir, `{"simulator": {"route": [{"lat": 1, "lng": 2}], "interval": "250ms"}}`)
	require.NoError(t, Load(dir))

	sim, err := Simulator()
	require.NoError(t, err)
	assert.Equal(t, []geolocation.Waypoint{{Lat: 1, Lng: 2}}, sim.Route)
	assert.Equal(t, 250*time.Millisecond, sim.Interval)
	assert.Equal(t, 15.0, sim.Accuracy)
}

func TestLocate_NumericDurationsAreMilliseconds(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	writeConfig(t, dir, `{"locate": {"locateOptions": {"maximumAge": 2000, "timeout": 10000}}}`)
	require.NoError(t, Load(dir))

	opts, err := Locate()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, opts.LocateOptions.MaximumAge)
	assert.Equal(t, 10*time.Second, opts.LocateOptions.Timeout)
}

func TestSimulator_NumericIntervalIsMilliseconds(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	writeConfig(t, dir, `{"simulator": {"interval": 500}}`)
	require.NoError(t, Load(dir))

	sim, err := Simulator()
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, sim.Interval)
}

func TestMillisToDuration(t *testing.T) {
	d := reflect.TypeOf(time.Duration(0))

	got, err := millisToDuration(reflect.TypeOf(float64(0)), d, 1.5)
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Microsecond, got)

	got, err = millisToDuration(reflect.TypeOf(""), d, "3s")
	require.NoError(t, err)
	assert.Equal(t, "3s", got)

	got, err = millisToDuration(d, d, time.Second)
	require.NoError(t, err)
	assert.Equal(t, time.Second, got)

	got, err = millisToDuration(reflect.TypeOf(0), reflect.TypeOf(0), 7)
	require.NoError(t, err)
	assert.Equal(t, 7, got)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load("/nonexistent/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestDefaults_WithoutFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	Defaults()
	opts, err := Locate()
	require.NoError(t, err)
	assert.Equal(t, locate.DefaultOptions().LocateOptions, opts.LocateOptions)
}

func TestStringsChanged(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	path := writeConfig(t, dir, `{}`)
	require.NoError(t, Load(dir))

	var got []locate.Strings
	handle := stringsChanged(func(s locate.Strings) { got = append(got, s) })

	writeConfig(t, dir, `{"locate": {"strings": {"feetUnit": "ft"}}}`)
	require.NoError(t, viper.ReadInConfig())
	handle(fsnotify.Event{Name: path, Op: fsnotify.Write})
	handle(fsnotify.Event{Name: path, Op: fsnotify.Chmod})

	require.Len(t, got, 1)
	assert.Equal(t, "ft", got[0].FeetUnit)
}
