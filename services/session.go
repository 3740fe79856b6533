package services

import (
	"errors"
	"strings"
	"sync"
	"time"

	"sabhahub/logging"
	"sabhahub/models"
	"sabhahub/storage"
)

type SessionState int

const (
	StateIdle SessionState = iota
	StateRunning
	StatePaused
	StateStopped
)

func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

var (
	ErrNoActiveSession = errors.New("no active session")
	ErrNotRunning      = errors.New("session is not running")
	ErrNotPaused       = errors.New("session is not paused")
	// ErrFinalizePending blocks new sessions until the failed persist of the
	// previous one is retried. Nothing is silently dropped.
	ErrFinalizePending = errors.New("previous session finalize is pending, retry stop first")
)

// Broadcaster pushes live events to connected presentation clients.
type Broadcaster interface {
	Broadcast(eventType string, data map[string]interface{})
}

// StartRequest describes the session to begin. AllottedSeconds is what the
// member's party was budgeted (recorded, not enforced); CountdownSeconds,
// when positive, makes the timer count down and auto-finalize at zero.
type StartRequest struct {
	ActivityType     string
	Member           MemberSnapshot
	BillID           *uint
	BillName         string
	Chairperson      string
	AllottedSeconds  int
	CountdownSeconds int
}

// DebateContext is the activity the chamber is currently in. While set, an
// inbound seat selection starts a session bound to it.
type DebateContext struct {
	ActivityType     string
	Bill             *BillSnapshot
	Chairperson      string
	CountdownSeconds int
}

type session struct {
	activityType string
	member       MemberSnapshot
	billID       *uint
	billName     string
	chairperson  string
	allotted     int
	countdown    int
	elapsed      int
	startTime    time.Time
}

// Engine is the speaking-session state machine: Idle -> Running -> Paused ->
// Stopped, one active session for the chamber floor. All transitions are
// serialized on one mutex so force-finalize-then-start is atomic.
type Engine struct {
	mu          sync.Mutex
	store       storage.ActivityStorage
	broadcaster Broadcaster
	lookup      *Lookup
	// zeroHour is the fixed countdown applied to Zero Hour sessions that
	// arrive without one.
	zeroHour int

	state           SessionState
	current         *session
	finalizePending bool
	lastLogID       uint
	debateCtx       *DebateContext

	stopTicker chan struct{}
	tickerOnce sync.Once
}

func NewEngine(store storage.ActivityStorage, broadcaster Broadcaster, lookup *Lookup, zeroHourSeconds int) *Engine {
	return &Engine{
		store:       store,
		broadcaster: broadcaster,
		lookup:      lookup,
		zeroHour:    zeroHourSeconds,
		state:       StateIdle,
		stopTicker:  make(chan struct{}),
	}
}

// Run starts the 1-second tick loop. Call Close to stop it.
func (e *Engine) Run() {
	e.tickerOnce.Do(func() {
		go func() {
			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					e.Tick()
				case <-e.stopTicker:
					return
				}
			}
		}()
	})
}

func (e *Engine) Close() {
	close(e.stopTicker)
}

// SetContext binds subsequent seat selections to an activity. Passing nil
// makes selections display-only again.
func (e *Engine) SetContext(ctx *DebateContext) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.debateCtx = ctx
}

func (e *Engine) Context() *DebateContext {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.debateCtx
}

// HandleSeatSelected is the subscriber for seat signals. A selection while a
// session is active force-finalizes it before the new one starts; the old
// session's elapsed time is logged, never lost.
func (e *Engine) HandleSeatSelected(seatNo int) {
	e.mu.Lock()
	ctx := e.debateCtx
	e.mu.Unlock()
	if ctx == nil {
		return
	}

	member, err := e.lookup.ResolveSeat(seatNo)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logging.Log.Errorf("Seat %d lookup failed: %v", seatNo, err)
			return
		}
		logging.Log.Warnf("Seat %d has no directory entry, starting as vacant", seatNo)
		member = VacantSnapshot(seatNo)
	}

	req := StartRequest{
		ActivityType:     ctx.ActivityType,
		Member:           member,
		Chairperson:      ctx.Chairperson,
		CountdownSeconds: ctx.CountdownSeconds,
		AllottedSeconds:  ctx.CountdownSeconds,
	}
	if ctx.Bill != nil {
		id := ctx.Bill.ID
		req.BillID = &id
		req.BillName = ctx.Bill.Name
		req.AllottedSeconds = partyAllotment(ctx.Bill, member.Party)
	}

	if err := e.Start(req); err != nil {
		logging.Log.Errorf("Failed to start session for seat %d: %v", seatNo, err)
	}
}

// Start begins a new session, force-finalizing any Running or Paused one
// first. Refused while a failed finalize is pending.
func (e *Engine) Start(req StartRequest) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.finalizePending {
		return ErrFinalizePending
	}
	if e.state == StateRunning || e.state == StatePaused {
		if err := e.finalizeLocked(); err != nil {
			return err
		}
	}

	// Zero Hour speeches run against the fixed chamber countdown unless the
	// caller set one explicitly.
	if req.ActivityType == models.ActivityZeroHour && req.CountdownSeconds == 0 && e.zeroHour > 0 {
		req.CountdownSeconds = e.zeroHour
		if req.AllottedSeconds == 0 {
			req.AllottedSeconds = e.zeroHour
		}
	}

	e.current = &session{
		activityType: req.ActivityType,
		member:       req.Member,
		billID:       req.BillID,
		billName:     req.BillName,
		chairperson:  req.Chairperson,
		allotted:     req.AllottedSeconds,
		countdown:    req.CountdownSeconds,
		startTime:    time.Now(),
	}
	e.state = StateRunning
	logging.Log.Infof("Session started: %s seat %d (%s, %s)",
		req.ActivityType, req.Member.SeatNo, req.Member.Name, req.Member.Party)
	e.broadcastLocked()
	return nil
}

// Pause freezes the elapsed value. Resumable.
func (e *Engine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateRunning {
		return ErrNotRunning
	}
	e.state = StatePaused
	e.broadcastLocked()
	return nil
}

// Resume continues a paused session. The paused interval is not counted.
// A session frozen by a failed finalize cannot resume; its pending persist
// must be retried through Stop first.
func (e *Engine) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.finalizePending {
		return ErrFinalizePending
	}
	if e.state != StatePaused {
		return ErrNotPaused
	}
	e.state = StateRunning
	e.broadcastLocked()
	return nil
}

// Stop finalizes the active session: transitions to Stopped and durably logs
// it. Stopping with nothing active is a no-op, so re-finalizing an already
// stopped session cannot produce duplicate entries. Stop also serves as the
// retry path after a failed persist.
func (e *Engine) Stop() (uint, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return e.lastLogID, nil
	}
	if err := e.finalizeLocked(); err != nil {
		return 0, err
	}
	return e.lastLogID, nil
}

// Reset returns the machine to Idle. Discarding without logging is only
// allowed when nothing ever ran; an active session is finalized first.
func (e *Engine) Reset() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		e.state = StateIdle
		return nil
	}
	return e.finalizeLocked()
}

// Tick advances the timer by one whole second. Driven by Run's ticker;
// exposed so transition logic is testable without waiting on wall time.
func (e *Engine) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateRunning {
		return
	}

	e.current.elapsed++
	if e.current.countdown > 0 && e.current.elapsed >= e.current.countdown {
		e.current.elapsed = e.current.countdown
		if err := e.finalizeLocked(); err != nil {
			logging.Log.Errorf("Countdown finalize failed, operator retry required: %v", err)
		}
		return
	}
	e.broadcastLocked()
}

// SessionSnapshot is the externally visible state of the machine.
type SessionSnapshot struct {
	State            string  `json:"state"`
	ActivityType     string  `json:"activity_type,omitempty"`
	SeatNo           int     `json:"seat_no,omitempty"`
	MemberName       string  `json:"member_name,omitempty"`
	Party            string  `json:"party,omitempty"`
	BillID           *uint   `json:"bill_id,omitempty"`
	BillName         string  `json:"bill_name,omitempty"`
	Chairperson      string  `json:"chairperson,omitempty"`
	ElapsedSeconds   int     `json:"elapsed_seconds"`
	AllottedSeconds  int     `json:"allotted_seconds"`
	RemainingSeconds *int    `json:"remaining_seconds,omitempty"`
	StartTime        *string `json:"start_time,omitempty"`
	FinalizePending  bool    `json:"finalize_pending,omitempty"`
}

func (e *Engine) Snapshot() SessionSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() SessionSnapshot {
	snap := SessionSnapshot{State: e.state.String(), FinalizePending: e.finalizePending}
	if e.current == nil {
		return snap
	}
	s := e.current
	snap.ActivityType = s.activityType
	snap.SeatNo = s.member.SeatNo
	snap.MemberName = s.member.Name
	snap.Party = s.member.Party
	snap.BillID = s.billID
	snap.BillName = s.billName
	snap.Chairperson = s.chairperson
	snap.ElapsedSeconds = s.elapsed
	snap.AllottedSeconds = s.allotted
	if s.countdown > 0 {
		remaining := s.countdown - s.elapsed
		if remaining < 0 {
			remaining = 0
		}
		snap.RemainingSeconds = &remaining
	}
	started := s.startTime.Format(time.RFC3339)
	snap.StartTime = &started
	return snap
}

// finalizeLocked persists the active session. On storage failure the timer
// state is kept (frozen as Paused) so the finalize can be retried; the
// machine refuses new sessions until it succeeds.
func (e *Engine) finalizeLocked() error {
	s := e.current
	end := time.Now()
	entry := &models.ActivityLog{
		ActivityType:    s.activityType,
		MemberName:      s.member.Name,
		Chairperson:     s.chairperson,
		StartTime:       s.startTime,
		EndTime:         &end,
		DurationSeconds: s.elapsed,
		AllottedSeconds: s.allotted,
		SpokenSeconds:   s.elapsed,
		BillName:        s.billName,
		BillID:          s.billID,
		Party:           s.member.Party,
		SeatNo:          s.member.SeatNo,
	}

	id, err := e.store.Append(entry)
	if err != nil {
		e.finalizePending = true
		if e.state == StateRunning {
			e.state = StatePaused
		}
		logging.Log.Errorf("Session finalize failed for seat %d: %v", s.member.SeatNo, err)
		return err
	}

	e.lastLogID = id
	e.finalizePending = false
	e.state = StateIdle
	e.current = nil
	logging.Log.Infof("Session finalized: %s seat %d, %ds spoken (log %d)",
		s.activityType, s.member.SeatNo, s.elapsed, id)

	if e.broadcaster != nil {
		e.broadcaster.Broadcast("timer_sync", map[string]interface{}{
			"state":           StateStopped.String(),
			"seat_no":         s.member.SeatNo,
			"member_name":     s.member.Name,
			"activity_type":   s.activityType,
			"elapsed_seconds": s.elapsed,
			"log_id":          id,
		})
	}
	return nil
}

func (e *Engine) broadcastLocked() {
	if e.broadcaster == nil {
		return
	}
	snap := e.snapshotLocked()
	data := map[string]interface{}{
		"state":            snap.State,
		"seat_no":          snap.SeatNo,
		"member_name":      snap.MemberName,
		"party":            snap.Party,
		"activity_type":    snap.ActivityType,
		"elapsed_seconds":  snap.ElapsedSeconds,
		"allotted_seconds": snap.AllottedSeconds,
	}
	if snap.RemainingSeconds != nil {
		data["remaining_seconds"] = *snap.RemainingSeconds
	}
	e.broadcaster.Broadcast("timer_sync", data)
}

// partyAllotment finds the budgeted seconds for a party on a bill,
// case-insensitively; unallocated parties fall back to the Others budget.
func partyAllotment(bill *BillSnapshot, party string) int {
	needle := strings.ToLower(strings.TrimSpace(party))
	for _, alloc := range bill.Allocations {
		if strings.ToLower(strings.TrimSpace(alloc.Party)) == needle {
			return alloc.AllottedSeconds()
		}
	}
	return (bill.Others.Hours*60 + bill.Others.Minutes) * 60
}
