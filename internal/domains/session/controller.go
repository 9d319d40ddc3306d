package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/looplab/fsm"

	"github.com/xpanvictor/liveslides/internal/domains/preferences"
	"github.com/xpanvictor/liveslides/internal/domains/presentation"
	"github.com/xpanvictor/liveslides/internal/domains/slides"
	"github.com/xpanvictor/liveslides/pkg/Logger"
	"github.com/xpanvictor/liveslides/pkg/metrics"
	"github.com/xpanvictor/liveslides/pkg/realtime"
)

// Options configure the realtime connection.
type Options struct {
	RealtimeURL        string
	TranscriptionModel string
	Tuning             slides.Tuning
}

type Dependencies struct {
	Dialer      realtime.Dialer
	Microphone  Microphone
	Preferences PreferencesSource
	Viewer      Viewer
	Notifier    Notifier
	Metrics     *metrics.Metrics
	Logger      *Logger.Logger
}

// Controller owns one recording session at a time. Every callback (server events,
// timer ticks, HTTP commands) runs under mu, so session state is only ever touched
// by one goroutine at a time. mu is never held across dialing or sending.
type Controller struct {
	deps Dependencies
	opts Options
	now  func() time.Time

	mu      sync.Mutex
	machine *fsm.FSM
	status  string
	engine  *slides.Engine
	acc     *slides.Accumulator
	prefs   preferences.Preferences

	gen         uint64
	channel     realtime.Channel
	capture     Capture
	cancel      context.CancelFunc
	done        chan struct{}
	retune      chan time.Duration
	requestedAt time.Time
}

func NewController(deps Dependencies, opts Options, initial preferences.Preferences) *Controller {
	if deps.Logger == nil {
		deps.Logger = Logger.Nop()
	}
	c := &Controller{
		deps:   deps,
		opts:   opts,
		now:    time.Now,
		status: StatusDisconnected,
		engine: slides.NewEngine(opts.Tuning, initial.SystemPrompt),
		acc:    slides.NewAccumulator(),
		prefs:  initial,
	}
	c.machine = fsm.NewFSM(
		StateDisconnected,
		fsm.Events{
			{Name: evStart, Src: []string{StateDisconnected}, Dst: StateConnecting},
			{Name: evOpen, Src: []string{StateConnecting}, Dst: StateConnected},
			{Name: evFail, Src: []string{StateConnecting}, Dst: StateDisconnected},
			{Name: evStop, Src: []string{StateConnecting, StateConnected}, Dst: StateDisconnected},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				c.deps.Metrics.Transition(e.Dst)
				c.deps.Logger.Infof("session %s -> %s (%s)", e.Src, e.Dst, e.Event)
			},
		},
	)
	return c
}

// Start acquires the microphone, opens the realtime channel and begins the
// synthesis timer.
func (c *Controller) Start(ctx context.Context) error {
	prefs, err := c.deps.Preferences.Get(ctx)
	if err != nil {
		c.deps.Logger.Warnf("using cached preferences: %v", err)
		c.mu.Lock()
		prefs = c.prefs
		c.mu.Unlock()
	}

	c.mu.Lock()
	if err := c.machine.Event(context.Background(), evStart); err != nil {
		c.mu.Unlock()
		return ErrAlreadyRunning
	}
	c.prefs = prefs
	c.gen++
	gen := c.gen
	c.engine.Reset()
	c.engine.SetTemplate(prefs.SystemPrompt)
	c.acc.Reset()
	c.requestedAt = time.Time{}
	c.setStatus(StatusConnecting)
	c.publish()
	c.mu.Unlock()

	if !prefs.HasAPIKey() {
		return c.failStart(gen, ErrNoAPIKey, nil, nil)
	}

	capture, err := c.deps.Microphone.Acquire(ctx)
	if err != nil {
		return c.failStart(gen, err, nil, nil)
	}
	ch, err := c.deps.Dialer.Dial(ctx, realtime.DialOptions{
		URL:    c.opts.RealtimeURL,
		Model:  prefs.Model,
		APIKey: prefs.APIKey,
	})
	if err != nil {
		return c.failStart(gen, err, capture, nil)
	}
	if err := ch.Send(ctx, realtime.SessionUpdate(c.opts.TranscriptionModel)); err != nil {
		return c.failStart(gen, err, capture, ch)
	}

	c.mu.Lock()
	if c.gen != gen || !c.machine.Is(StateConnecting) {
		c.mu.Unlock()
		c.release(capture, ch)
		return ErrStopped
	}
	_ = c.machine.Event(context.Background(), evOpen)
	runCtx, cancel := context.WithCancel(context.Background())
	c.channel, c.capture, c.cancel = ch, capture, cancel
	c.done = make(chan struct{})
	c.retune = make(chan time.Duration, 1)
	interval := c.engine.Tuning().Interval
	c.setStatus(StatusConnected)
	c.openViewer()
	c.publish()
	go c.run(runCtx, gen, ch, capture, interval, c.retune, c.done)
	c.mu.Unlock()
	return nil
}

// openViewer stands in for opening the presentation window. With nothing attached
// the session continues and the user is told where to find it. Caller holds mu.
func (c *Controller) openViewer() {
	if c.deps.Viewer.Attached() == 0 {
		c.deps.Notifier.Notify(Notification{
			Title: "Presentation window",
			Body:  "No presentation window is open. Open /presentation to follow along.",
			Color: ColorWarning,
		})
		return
	}
	c.deps.Viewer.Push(presentation.ThemeUpdate(c.prefs.Theme))
	if idx := c.engine.State().Current(); idx >= 0 {
		c.deps.Viewer.Push(presentation.GotoUpdate(idx))
	}
}

func (c *Controller) failStart(gen uint64, cause error, capture Capture, ch realtime.Channel) error {
	if err := c.release(capture, ch); err != nil {
		c.deps.Logger.Warnf("cleanup after failed start: %v", err)
	}

	c.mu.Lock()
	if c.gen == gen && c.machine.Is(StateConnecting) {
		_ = c.machine.Event(context.Background(), evFail)
		c.setStatus(StatusFailed)
		c.publish()
	}
	c.mu.Unlock()

	c.deps.Logger.Errorf("session start failed: %v", cause)
	c.deps.Notifier.Notify(Notification{Title: "Failed", Body: cause.Error(), Color: ColorDanger})
	return fmt.Errorf("start session: %w", cause)
}

// Stop ends the session. It is safe to call at any time and more than once.
func (c *Controller) Stop(ctx context.Context) error {
	return c.stop(ctx, 0, false)
}

// stop tears the session down if gen is current (0 matches any). fromLoop is set
// when called by the run goroutine, which must not wait for itself.
func (c *Controller) stop(ctx context.Context, gen uint64, fromLoop bool) error {
	c.mu.Lock()
	if (gen != 0 && gen != c.gen) || !c.machine.Can(evStop) {
		c.mu.Unlock()
		return nil
	}
	_ = c.machine.Event(context.Background(), evStop)
	c.gen++
	ch, capture, cancel, done := c.channel, c.capture, c.cancel, c.done
	c.channel, c.capture, c.cancel, c.done, c.retune = nil, nil, nil, nil, nil
	c.setStatus(StatusDisconnected)
	c.publish()
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	err := c.release(capture, ch)
	if done != nil && !fromLoop {
		select {
		case <-done:
		case <-ctx.Done():
			errs := []error{err, fmt.Errorf("waiting for session loop: %w", ctx.Err())}
			err = errors.Join(errs...)
		}
	}
	if err != nil {
		c.deps.Logger.Warnf("session teardown: %v", err)
	}
	return err
}

// release frees the microphone and the channel. Both are attempted regardless of
// the other's outcome.
func (c *Controller) release(capture Capture, ch realtime.Channel) error {
	var errs []error
	if capture != nil {
		if err := capture.Close(); err != nil {
			errs = append(errs, fmt.Errorf("release microphone: %w", err))
		}
	}
	if ch != nil {
		if err := ch.Close(); err != nil && !errors.Is(err, realtime.ErrChannelClosed) {
			errs = append(errs, fmt.Errorf("close channel: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (c *Controller) run(ctx context.Context, gen uint64, ch realtime.Channel, capture Capture,
	interval time.Duration, retune <-chan time.Duration, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	events := ch.Events()
	frames := capture.Frames()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-events:
			if !ok {
				if ctx.Err() == nil {
					c.channelEnded(ctx, gen, ch.Err())
				}
				return
			}
			c.handleEvent(gen, ev)

		case pcm, ok := <-frames:
			if !ok {
				if ctx.Err() != nil {
					return
				}
				c.deps.Notifier.Notify(Notification{Title: "Microphone", Body: "Microphone stream ended.", Color: ColorWarning})
				_ = c.stop(ctx, gen, true)
				return
			}
			if err := ch.Send(ctx, realtime.AppendAudio(pcm)); err != nil && ctx.Err() == nil {
				c.deps.Logger.Debugf("append audio: %v", err)
			}

		case d := <-retune:
			ticker.Reset(d)

		case <-ticker.C:
			if err := c.analyze(ctx, gen); err != nil {
				c.deps.Logger.Debugf("timer analysis skipped: %v", err)
			}
		}
	}
}

func (c *Controller) channelEnded(ctx context.Context, gen uint64, cause error) {
	if cause != nil && !errors.Is(cause, realtime.ErrChannelClosed) {
		c.deps.Logger.Errorf("realtime channel error: %v", cause)
		c.deps.Notifier.Notify(Notification{Title: "Error", Body: "Data channel error", Color: ColorDanger})
	}
	_ = c.stop(ctx, gen, true)
}

// Analyze runs the synthesis checks now and sends an analysis request if they pass.
func (c *Controller) Analyze(ctx context.Context) error {
	return c.analyze(ctx, 0)
}

func (c *Controller) analyze(ctx context.Context, gen uint64) error {
	c.mu.Lock()
	if !c.machine.Is(StateConnected) || (gen != 0 && gen != c.gen) {
		c.mu.Unlock()
		return ErrNotRecording
	}
	prompt, err := c.engine.PrepareAnalysis(c.now())
	if err != nil {
		c.mu.Unlock()
		switch {
		case errors.Is(err, slides.ErrInsufficientContent):
			c.deps.Metrics.AnalysisRequest("insufficient")
		case errors.Is(err, slides.ErrThrottled):
			c.deps.Metrics.AnalysisRequest("throttled")
		}
		return err
	}
	ch := c.channel
	c.requestedAt = c.now()
	c.mu.Unlock()

	if err := ch.Send(ctx, realtime.AnalysisRequest(prompt)); err != nil {
		c.deps.Metrics.AnalysisRequest("error")
		return fmt.Errorf("send analysis request: %w", err)
	}
	c.deps.Metrics.AnalysisRequest("sent")
	c.deps.Logger.Debugf("analysis request sent (%d prompt bytes)", len(prompt))
	return nil
}

func (c *Controller) handleEvent(gen uint64, ev realtime.ServerEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen || !c.machine.Is(StateConnected) {
		return
	}
	c.deps.Metrics.Event(ev.Kind.String())

	switch ev.Kind {
	case realtime.EventSessionCreated, realtime.EventSessionUpdated:
		c.deps.Logger.Debugf("realtime %s", ev.Type)

	case realtime.EventTranscriptionCompleted:
		if c.engine.AddTranscript(ev.Transcript) {
			st := c.engine.State()
			c.deps.Metrics.SessionSize(st.Len(), len(st.Transcript()))
			c.publish()
		}

	case realtime.EventResponseCreated, realtime.EventResponseDone,
		realtime.EventOutputItemAdded, realtime.EventOutputItemDone,
		realtime.EventContentPartAdded, realtime.EventContentPartDone,
		realtime.EventTextDelta:
		if _, _, err := c.acc.Apply(ev); err != nil {
			c.deps.Metrics.AccumulatorError(ev.Type)
			c.deps.Logger.Warnf("skipping %s: %v", ev.Type, err)
		}

	case realtime.EventTextDone:
		text, done, err := c.acc.Apply(ev)
		if err != nil {
			c.deps.Metrics.AccumulatorError(ev.Type)
			c.deps.Logger.Warnf("skipping %s: %v", ev.Type, err)
			return
		}
		if done {
			c.applyReply(text)
		}

	case realtime.EventError:
		msg := "Unknown error"
		if ev.Error != nil && ev.Error.Message != "" {
			msg = ev.Error.Message
		}
		c.deps.Logger.Errorf("realtime API error: %s", msg)
		c.deps.Notifier.Notify(Notification{Title: "Error", Body: msg, Color: ColorDanger})

	case realtime.EventUnknown:
		c.deps.Logger.Debugf("ignoring realtime event %q", ev.Type)

	default:
		c.deps.Logger.Debugf("unhandled realtime event kind %s", ev.Kind)
	}
}

// applyReply folds a final response text into the slide state. Caller holds mu.
func (c *Controller) applyReply(text string) {
	var latency time.Duration
	if !c.requestedAt.IsZero() {
		latency = c.now().Sub(c.requestedAt)
		c.requestedAt = time.Time{}
	}

	out, err := c.engine.ApplyReply(text, c.now())
	switch {
	case err == nil && out.Kind == slides.OutcomeSlide:
		c.deps.Metrics.Reply("slide", latency)
		st := c.engine.State()
		c.deps.Metrics.SessionSize(st.Len(), len(st.Transcript()))
		c.deps.Viewer.Push(presentation.SlideUpdate(out.Slide, out.Index))
		c.deps.Notifier.Notify(Notification{
			Title:   "Slide Created",
			Body:    fmt.Sprintf("%q", out.Slide.Title),
			Color:   ColorSuccess,
			Timeout: 2000,
		})
		c.deps.Logger.Infof("slide %d created (%s parse, cursor %d): %s", out.Index+1, out.Source, out.Cursor, out.Slide.Title)
		c.publish()

	case err == nil:
		c.deps.Metrics.Reply(out.Kind.String(), latency)
		c.deps.Logger.Debugf("reply %s", out.Kind)

	case errors.Is(err, slides.ErrThrottled):
		c.deps.Metrics.Reply("throttled", latency)
		c.deps.Logger.Infof("dropping slide reply: %v", err)

	case errors.Is(err, slides.ErrNoJSON):
		c.deps.Metrics.Reply("no_json", latency)
		c.deps.Logger.Warnf("reply without JSON: %q", truncate(text, 200))
		c.deps.Notifier.Notify(Notification{Title: "Invalid Response", Body: "AI did not return valid JSON.", Color: ColorWarning})

	default:
		c.deps.Metrics.Reply("malformed", latency)
		c.deps.Logger.Warnf("malformed reply: %v", err)
		c.deps.Notifier.Notify(Notification{
			Title: "Invalid Response",
			Body:  "AI returned malformed JSON. Check system prompt.",
			Color: ColorWarning,
		})
	}
}

// Navigate moves the current slide by delta within bounds.
func (c *Controller) Navigate(delta int) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx, moved := c.engine.State().Navigate(delta)
	if moved {
		c.deps.Viewer.Push(presentation.GotoUpdate(idx))
		c.publish()
	}
	return idx, moved
}

// PreferencesChanged applies saved preferences to the running session.
func (c *Controller) PreferencesChanged(p preferences.Preferences) {
	c.mu.Lock()
	defer c.mu.Unlock()
	themeChanged := p.Theme != c.prefs.Theme
	c.prefs = p
	c.engine.SetTemplate(p.SystemPrompt)
	if themeChanged {
		c.deps.Viewer.Push(presentation.ThemeUpdate(p.Theme))
	}
	c.publish()
}

// SetTuning replaces the trigger policy, resetting the running timer if needed.
func (c *Controller) SetTuning(t slides.Tuning) {
	c.mu.Lock()
	defer c.mu.Unlock()
	old := c.engine.Tuning()
	c.engine.SetTuning(t)
	if c.retune != nil && t.Interval > 0 && t.Interval != old.Interval {
		select {
		case c.retune <- t.Interval:
		default:
		}
	}
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// Slides returns a copy of the current slide list.
func (c *Controller) Slides() []slides.Slide {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.State().Slides()
}

// Deck is the current presentation with the user's fallback and theme.
func (c *Controller) Deck() presentation.Deck {
	c.mu.Lock()
	defer c.mu.Unlock()
	return presentation.Deck{
		Slides:          c.engine.State().Slides(),
		FallbackTitle:   c.prefs.InitialTitle,
		FallbackContent: c.prefs.InitialContent,
		Theme:           c.prefs.Theme,
	}
}

// CurrentSlide returns the slide at the navigation position.
func (c *Controller) CurrentSlide() (*slides.Slide, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.engine.State()
	idx := st.Current()
	if idx < 0 {
		return nil, idx
	}
	s := st.Slides()[idx]
	return &s, idx
}

func (c *Controller) snapshot() Snapshot {
	st := c.engine.State()
	n, idx := st.Len(), st.Current()
	return Snapshot{
		State:            c.machine.Current(),
		Status:           c.status,
		Recording:        c.machine.Is(StateConnected),
		SlideCount:       n,
		CurrentIndex:     idx,
		CanRecord:        c.prefs.HasAPIKey(),
		CanExport:        n > 0,
		CanPrev:          idx > 0,
		CanNext:          idx >= 0 && idx < n-1,
		TranscriptLength: len(st.Transcript()),
		Cursor:           st.Cursor(),
		Viewers:          c.deps.Viewer.Attached(),
		Theme:            c.prefs.Theme,
	}
}

func (c *Controller) setStatus(s string) { c.status = s }

func (c *Controller) publish() { c.deps.Notifier.Publish(c.snapshot()) }

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
