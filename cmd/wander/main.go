// wander: terminal walkabout demo
// By default it runs a local scene with the autopilot tracing its
// figure-8 and prints a live readout line. With -interactive the
// terminal switches to raw mode and W/S/A/D drive the character.
// With -server it drives a running stride server over the observer
// feed instead of a local scene.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/strideworks/go-stride/pkg/character"
	"github.com/strideworks/go-stride/pkg/feed"
	"github.com/strideworks/go-stride/pkg/protocol"
	"github.com/strideworks/go-stride/pkg/scene"
)

const (
	tickInterval = 33 * time.Millisecond
	movePulse    = 250 * time.Millisecond
)

// driver abstracts where wander's commands go: a local scene or a
// running stride server.
type driver interface {
	send(forward, turn float64, stop bool) error
	engagePilot(engaged bool) error
	reset() error
}

type localDriver struct {
	sc *scene.Scene
}

func (d *localDriver) send(forward, turn float64, stop bool) error {
	d.sc.SetInput(character.Input{Forward: forward, Turn: turn, Stop: stop})
	return nil
}

func (d *localDriver) engagePilot(engaged bool) error {
	d.sc.EngagePilot(engaged)
	return nil
}

func (d *localDriver) reset() error {
	d.sc.Reset()
	return nil
}

type remoteDriver struct {
	client *feed.Client
}

func (d *remoteDriver) send(forward, turn float64, stop bool) error {
	return d.client.SendInput(forward, turn, stop)
}

func (d *remoteDriver) engagePilot(engaged bool) error {
	return d.client.SendPilot(engaged)
}

func (d *remoteDriver) reset() error {
	return d.client.SendReset()
}

type console struct {
	drv         driver
	interactive bool

	mu           sync.Mutex
	forward      float64
	turn         float64
	stop         bool
	forwardUntil time.Time
	turnUntil    time.Time
	stopUntil    time.Time
	pilot        bool
	latest       protocol.FrameData
	hasFrame     bool
	statusWidth  int
}

func main() {
	server := flag.String("server", "", "Drive a running stride server at this URL instead of a local scene")
	interactive := flag.Bool("interactive", false, "Raw-mode W/S/A/D driving (requires a TTY)")
	duration := flag.Duration("duration", 0, "Stop after this long (0 = run until interrupted)")
	flag.Parse()

	fmt.Println()
	fmt.Println("🚶 Stride Wander")
	if *server != "" {
		fmt.Printf("   Server: %s\n", *server)
	} else if *interactive {
		fmt.Println("   Scene:  local, manual drive")
	} else {
		fmt.Println("   Scene:  local, figure-8 autopilot")
	}
	fmt.Println()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if *duration > 0 {
		var timeoutCancel context.CancelFunc
		ctx, timeoutCancel = context.WithTimeout(ctx, *duration)
		defer timeoutCancel()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	con := &console{interactive: *interactive}

	if *server != "" {
		client := feed.NewClient(*server)
		client.OnFrame(con.observe)
		client.OnState(func(st protocol.SceneState) {
			con.mu.Lock()
			con.pilot = st.Pilot
			con.mu.Unlock()
		})
		if err := client.Connect(); err != nil {
			log.Fatalf("Failed to connect: %v", err)
		}
		defer client.Close()
		fmt.Println("✅ Connected")
		con.drv = &remoteDriver{client: client}
	} else {
		cfg := scene.DefaultConfig()
		cfg.Pilot = !*interactive
		sc := scene.New(cfg)
		sc.AddListener(con.observe)
		go sc.Run(ctx)
		con.pilot = cfg.Pilot
		con.drv = &localDriver{sc: sc}
	}

	var err error
	if *interactive {
		fmt.Println("   W/S: drive  A/D: turn  Space: stop  P: pilot  R: reset  X: clear  Q: quit")
		err = con.run(ctx)
	} else {
		con.watch(ctx)
	}
	if err != nil {
		log.Fatalf("Console error: %v", err)
	}
	fmt.Println("👋 Goodbye!")
}

func (c *console) observe(f protocol.FrameData) {
	c.mu.Lock()
	c.latest = f
	c.hasFrame = true
	c.mu.Unlock()
}

// watch prints the readout line until the context ends.
func (c *console) watch(ctx context.Context) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			fmt.Println()
			return
		case <-ticker.C:
			c.renderStatusLine()
		}
	}
}

func (c *console) run(ctx context.Context) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return fmt.Errorf("interactive mode needs a TTY on stdin")
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("set terminal raw mode: %w", err)
	}
	defer func() {
		term.Restore(fd, oldState)
		fmt.Print("\r\n")
	}()

	c.renderStatusLine()

	go c.tickLoop(ctx)

	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		b, err := reader.ReadByte()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read console input: %w", err)
		}
		if quit := c.handleKey(b); quit {
			return nil
		}
	}
}

// tickLoop expires movement pulses and streams the current axes to
// the driver at a steady rate.
func (c *console) tickLoop(ctx context.Context) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			forward, turn, stop := c.takeInput()
			if err := c.drv.send(forward, turn, stop); err != nil {
				return
			}
			c.renderStatusLine()
		}
	}
}

func (c *console) handleKey(b byte) bool {
	switch b {
	case 'q', 'Q', 3: // Ctrl-C arrives as a byte in raw mode
		return true
	case 'w', 'W':
		c.pulseDrive(1)
	case 's', 'S':
		c.pulseDrive(-1)
	case 'a', 'A':
		c.pulseTurn(-1)
	case 'd', 'D':
		c.pulseTurn(1)
	case ' ':
		c.pulseStop()
	case 'p', 'P':
		c.togglePilot()
	case 'r', 'R':
		c.drv.reset()
	case 'x', 'X':
		c.clearInput()
	}
	c.renderStatusLine()
	return false
}

func (c *console) pulseDrive(dir float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.forward = dir
	c.forwardUntil = time.Now().Add(movePulse)
}

func (c *console) pulseTurn(dir float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turn = dir
	c.turnUntil = time.Now().Add(movePulse)
}

func (c *console) pulseStop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stop = true
	c.stopUntil = time.Now().Add(movePulse)
	c.forward = 0
	c.forwardUntil = time.Time{}
	c.turn = 0
	c.turnUntil = time.Time{}
}

func (c *console) togglePilot() {
	c.mu.Lock()
	engaged := !c.pilot
	c.pilot = engaged
	c.mu.Unlock()
	c.drv.engagePilot(engaged)
}

func (c *console) clearInput() {
	c.mu.Lock()
	c.forward = 0
	c.turn = 0
	c.stop = false
	c.forwardUntil = time.Time{}
	c.turnUntil = time.Time{}
	c.stopUntil = time.Time{}
	c.mu.Unlock()
}

// takeInput returns the current axes after expiring finished pulses.
func (c *console) takeInput() (float64, float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if !c.forwardUntil.IsZero() && !now.Before(c.forwardUntil) {
		c.forward = 0
		c.forwardUntil = time.Time{}
	}
	if !c.turnUntil.IsZero() && !now.Before(c.turnUntil) {
		c.turn = 0
		c.turnUntil = time.Time{}
	}
	if !c.stopUntil.IsZero() && !now.Before(c.stopUntil) {
		c.stop = false
		c.stopUntil = time.Time{}
	}
	return c.forward, c.turn, c.stop
}

func (c *console) renderStatusLine() {
	c.mu.Lock()
	forward := c.forward
	turn := c.turn
	pilot := c.pilot
	f := c.latest
	has := c.hasFrame
	width := c.statusWidth
	interactive := c.interactive
	c.mu.Unlock()

	var line string
	switch {
	case has && interactive:
		line = fmt.Sprintf(
			"[FWD:%+.0f TRN:%+.0f PIL:%s | t:%7.2f spd:%6.1f dir:%+7.1f lean:%+6.2f | x:%7.1f y:%7.1f yaw:%+7.1f]",
			forward, turn, boolLabel(pilot),
			f.T, f.Speed, f.Direction, f.Lean, f.X, f.Y, f.Yaw,
		)
	case has:
		line = fmt.Sprintf(
			"[PIL:%s | t:%7.2f spd:%6.1f dir:%+7.1f lean:%+6.2f | x:%7.1f y:%7.1f yaw:%+7.1f]",
			boolLabel(pilot),
			f.T, f.Speed, f.Direction, f.Lean, f.X, f.Y, f.Yaw,
		)
	default:
		line = fmt.Sprintf("[PIL:%s | waiting for frames]", boolLabel(pilot))
	}

	padding := ""
	if width > len(line) {
		padding = strings.Repeat(" ", width-len(line))
	}
	fmt.Printf("\r%s%s", line, padding)

	c.mu.Lock()
	if len(line) > c.statusWidth {
		c.statusWidth = len(line)
	}
	c.mu.Unlock()
}

func boolLabel(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
