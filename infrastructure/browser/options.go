package browser

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Options configures how a launcher starts its browser process
type Options struct {
	// Browser is chromium, firefox or webkit; drivers without a choice ignore it
	Browser  string
	Headless bool
	SlowMo   time.Duration

	ActionTimeout     time.Duration
	NavigationTimeout time.Duration

	ChromeDriverPath string
	ChromeBinaryPath string
	SeleniumPort     int

	Logger *logrus.Entry
}

func (o Options) logger() *logrus.Entry {
	if o.Logger != nil {
		return o.Logger
	}
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}

func (o Options) actionTimeout() time.Duration {
	if o.ActionTimeout > 0 {
		return o.ActionTimeout
	}
	return 5 * time.Second
}

func (o Options) navigationTimeout() time.Duration {
	if o.NavigationTimeout > 0 {
		return o.NavigationTimeout
	}
	return 30 * time.Second
}

// chromeArgs are shared by every chromium based driver
var chromeArgs = []string{
	"--disable-popup-blocking",
	"--disable-blink-features=AutomationControlled",
	"--disable-dev-shm-usage",
	"--no-sandbox",
	"--disable-setuid-sandbox",
	"--disable-infobars",
	"--disable-notifications",
}

func millis(d time.Duration) float64 {
	return float64(d / time.Millisecond)
}
