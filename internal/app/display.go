package app

import (
	"errors"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/orientation_node/internal/config"
	"github.com/relabs-tech/orientation_node/internal/telemetry"
)

const (
	displayWidth  = 128
	displayHeight = 64
)

// displayData holds the latest report for the display loop.
type displayData struct {
	mu     sync.RWMutex
	report telemetry.Report
	have   bool
}

func (d *displayData) update(r telemetry.Report) {
	d.mu.Lock()
	d.report = r
	d.have = true
	d.mu.Unlock()
}

func (d *displayData) snapshot() (telemetry.Report, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.report, d.have
}

func RunDisplay() error {
	cfg := config.Get()
	if cfg.MQTTBroker == "" {
		return errors.New("display: MQTT_BROKER is not set")
	}

	// Initialize periph
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	// Open I2C bus
	bus, err := i2creg.Open(cfg.DisplayI2CBus)
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	log.Println("display: SSD1306 initialized")

	if err := dev.Draw(dev.Bounds(), renderSplash(), image.Point{}); err != nil {
		log.Printf("display: error showing splash: %v", err)
	}

	client, err := telemetry.Connect(cfg.MQTTBroker, cfg.MQTTClientIDDisplay)
	if err != nil {
		return fmt.Errorf("display: %w", err)
	}
	defer client.Disconnect(250)
	log.Printf("display: connected to MQTT broker at %s", cfg.MQTTBroker)

	data := &displayData{}
	if err := telemetry.Subscribe(client, cfg.TopicOrientation, data.update); err != nil {
		return fmt.Errorf("display: %w", err)
	}

	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	log.Println("display: starting update loop")

	for range ticker.C {
		r, have := data.snapshot()
		if err := dev.Draw(dev.Bounds(), renderReport(r, have), image.Point{}); err != nil {
			log.Printf("display: error updating display: %v", err)
		}
	}

	return nil
}

// newCanvas returns a blank frame and a drawer writing white text on it.
func newCanvas() (*image1bit.VerticalLSB, *font.Drawer) {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, displayWidth, displayHeight))
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	return img, drawer
}

func drawLine(d *font.Drawer, x, y int, s string) {
	d.Dot = fixed.P(x, y)
	d.DrawString(s)
}

func renderReport(r telemetry.Report, have bool) *image1bit.VerticalLSB {
	img, drawer := newCanvas()

	if !have {
		drawLine(drawer, 0, 26, "Orientation")
		drawLine(drawer, 0, 39, "Waiting...")
		return img
	}

	drawLine(drawer, 0, 13, r.Label)
	drawLine(drawer, 0, 30, fmt.Sprintf("R: %6.1f", r.Pose.Roll))
	drawLine(drawer, 0, 43, fmt.Sprintf("P: %6.1f", r.Pose.Pitch))
	drawLine(drawer, 0, 60, fmt.Sprintf("t: %d ms", r.Millis))
	return img
}

func renderSplash() *image1bit.VerticalLSB {
	img, drawer := newCanvas()
	drawLine(drawer, 10, 26, "Orientation")
	drawLine(drawer, 30, 43, "node")
	return img
}
