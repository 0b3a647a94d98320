// lighttest ramps the configured rig through a test pattern once, so a
// new setup can be checked without a music source.
package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	"lightbeat/config"
	"lightbeat/light"
	"lightbeat/palette"
)

// stdoutActuator prints every write; stands in for a real bulb.
type stdoutActuator struct {
	name string
}

func (s *stdoutActuator) ID() string { return s.name }

func (s *stdoutActuator) SetPower(on bool) error {
	fmt.Printf("%-12s power      %v\n", s.name, on)
	return nil
}

func (s *stdoutActuator) SetBrightness(percent int) error {
	fmt.Printf("%-12s brightness %d\n", s.name, percent)
	return nil
}

func (s *stdoutActuator) SetColor(c light.RGB) error {
	fmt.Printf("%-12s color      #%02x%02x%02x\n", s.name, c[0], c[1], c[2])
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	mode, err := palette.ParseMode(cfg.Interpolation)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	low, _ := palette.ParseHex(cfg.GradientLow)
	high, _ := palette.ParseHex(cfg.GradientHigh)

	trans := light.NewTransitioner(cfg.CommandDelay(), palette.Interpolator(mode))

	var wg sync.WaitGroup
	for _, ac := range cfg.Actuators {
		a := &stdoutActuator{name: ac.ID}
		a.SetPower(true)

		wg.Add(2)
		go func() {
			defer wg.Done()
			trans.Brightness(a, 0, 100, 2*time.Second)
		}()
		go func() {
			defer wg.Done()
			trans.Color(a, low, high, 2*time.Second)
		}()
	}
	wg.Wait()
	fmt.Println("done")
}
