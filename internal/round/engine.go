// Package round runs quiz rounds: pool selection, the answer state machine
// and persistence of the round in flight.
package round

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/vocabdrill/internal/generator"
	"github.com/verte-zerg/vocabdrill/internal/ledger"
	"github.com/verte-zerg/vocabdrill/internal/model"
	"github.com/verte-zerg/vocabdrill/internal/store"
)

// Phase is the engine state.
type Phase int

const (
	Idle Phase = iota
	InProgress
	AwaitingIgnoreDecision
	Complete
)

func (p Phase) String() string {
	switch p {
	case InProgress:
		return "in-progress"
	case AwaitingIgnoreDecision:
		return "awaiting-decision"
	case Complete:
		return "complete"
	default:
		return "idle"
	}
}

type recorder interface {
	InsertRound(ctx context.Context, rec model.RoundRecord) error
}

// Options holds optional collaborators. Zero values pick defaults.
type Options struct {
	// History receives a record for every completed round.
	History   recorder
	Generator *generator.Generator
	Logger    *slog.Logger
	Now       func() time.Time
}

// StartResult describes a freshly started round.
type StartResult struct {
	Requested int
	Size      int
	// Truncated is set when the pool was smaller than requested.
	Truncated bool
	Drill     bool
}

// Result describes the effect of one answer intent.
type Result struct {
	Entry    model.WordEntry
	Correct  bool
	Complete bool
}

// Progress is the position inside the current round.
type Progress struct {
	Position int
	Total    int
	Percent  int
}

// Engine owns one round and the ledger/counter it updates. It is not safe
// for concurrent use.
type Engine struct {
	kv      kv
	persist Persistence
	history recorder
	gen     *generator.Generator
	log     *slog.Logger
	now     func() time.Time

	ledger  *ledger.Ledger
	counter ledger.Counter
	phase   Phase
	round   model.RoundState
	summary *model.Summary
}

// New loads the ledger, the counters and any saved round from kv.
func New(ctx context.Context, kv kv, opts Options) (*Engine, error) {
	e := &Engine{
		kv:      kv,
		history: opts.History,
		gen:     opts.Generator,
		log:     opts.Logger,
		now:     opts.Now,
	}
	if e.gen == nil {
		e.gen = generator.New()
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	if e.now == nil {
		e.now = func() time.Time { return time.Now().UTC() }
	}
	e.persist = NewPersistence(kv, e.log)

	var err error
	if e.ledger, err = ledger.Load(ctx, kv, e.log); err != nil {
		return nil, err
	}
	if e.counter, err = ledger.LoadCounter(ctx, kv, e.log); err != nil {
		return nil, err
	}
	saved, err := e.persist.Load(ctx)
	if err != nil {
		return nil, err
	}
	if saved != nil {
		e.round = *saved
		e.phase = phaseOf(e.round)
		e.log.Info("round restored", "id", e.round.ID, "position", e.round.Position, "size", len(e.round.Words), "drill", e.round.Drill)
	}
	return e, nil
}

// Pool returns the eligible catalog entries that pass filter.
func (e *Engine) Pool(catalog []model.WordEntry, filter model.Filter) []model.WordEntry {
	return SelectPool(catalog, e.ledger, filter)
}

// Start draws a new round of up to requested words from pool, replacing any
// round in flight. A non-positive request takes the whole pool.
func (e *Engine) Start(ctx context.Context, pool []model.WordEntry, requested int, filter model.Filter) (StartResult, error) {
	if len(pool) == 0 {
		return StartResult{}, ErrEmptyPool
	}
	res := StartResult{Requested: requested, Size: requested}
	if requested <= 0 || requested > len(pool) {
		res.Size = len(pool)
		res.Truncated = requested > len(pool)
	}
	t := e.begin(model.RoundState{
		ID:        uuid.NewString(),
		Filter:    filter.String(),
		StartedAt: e.now(),
		Words:     e.gen.Shuffle(pool)[:res.Size],
	})
	if err := e.commit(ctx, t); err != nil {
		return StartResult{}, fmt.Errorf("start round: %w", err)
	}
	e.log.Info("round started", "id", e.round.ID, "size", res.Size, "requested", requested, "truncated", res.Truncated, "filter", e.round.Filter)
	return res, nil
}

// StartDrill replays the wrong list of the current or last round, in order.
func (e *Engine) StartDrill(ctx context.Context) (StartResult, error) {
	if len(e.round.Wrong) == 0 {
		return StartResult{}, ErrNoWrongWords
	}
	words := make([]model.WordEntry, len(e.round.Wrong))
	copy(words, e.round.Wrong)
	t := e.begin(model.RoundState{
		ID:        uuid.NewString(),
		Filter:    e.round.Filter,
		StartedAt: e.now(),
		Words:     words,
		Drill:     true,
	})
	if err := e.commit(ctx, t); err != nil {
		return StartResult{}, fmt.Errorf("start drill: %w", err)
	}
	e.log.Info("drill started", "id", e.round.ID, "size", len(words))
	return StartResult{Requested: len(words), Size: len(words), Drill: true}, nil
}

// Current returns the question at the current position.
func (e *Engine) Current() (model.WordEntry, bool) {
	if e.phase != InProgress && e.phase != AwaitingIgnoreDecision {
		return model.WordEntry{}, false
	}
	return e.round.Words[e.round.Position], true
}

// Submit checks raw against the current word. Comparison ignores case and
// surrounding whitespace. A wrong answer leaves the position in place until
// Continue, Ignore or Skip.
func (e *Engine) Submit(ctx context.Context, raw string) (Result, error) {
	switch e.phase {
	case InProgress:
	case AwaitingIgnoreDecision:
		return Result{}, ErrAwaitingDecision
	default:
		return Result{}, ErrNoActiveRound
	}
	t := e.begin(cloneRound(e.round))
	entry := t.round.Words[t.round.Position]
	res := Result{Entry: entry, Correct: normalize(raw) == normalize(entry.Word)}
	if res.Correct {
		t.markMastered(entry.Word)
		if t.round.Drill {
			t.round.Wrong = removeWord(t.round.Wrong, entry.Word)
		} else {
			t.seen()
			t.correct()
		}
		t.round.Correct++
		t.advance()
	} else {
		t.recordWrong(entry)
		pending := entry
		t.round.Pending = &pending
		t.round.Awaiting = true
	}
	if err := e.commit(ctx, t); err != nil {
		return Result{}, fmt.Errorf("submit answer: %w", err)
	}
	e.log.Debug("answer submitted", "word", entry.Word, "correct", res.Correct)
	res.Complete = e.phase == Complete
	return res, nil
}

// Continue accepts a wrong answer as recorded and moves on.
func (e *Engine) Continue(ctx context.Context) (Result, error) {
	switch e.phase {
	case AwaitingIgnoreDecision:
	case InProgress:
		return Result{}, ErrNotAwaiting
	default:
		return Result{}, ErrNoActiveRound
	}
	t := e.begin(cloneRound(e.round))
	res := Result{Entry: *t.round.Pending}
	t.advance()
	if err := e.commit(ctx, t); err != nil {
		return Result{}, fmt.Errorf("continue: %w", err)
	}
	res.Complete = e.phase == Complete
	return res, nil
}

// Ignore turns the pending wrong answer into an accepted one: the word is
// ignored from now on, its mistake is taken back off the wrong list and,
// outside drills, it counts as correct.
func (e *Engine) Ignore(ctx context.Context) (Result, error) {
	if e.phase != AwaitingIgnoreDecision || e.round.Pending == nil {
		return Result{}, ErrNoIgnorePending
	}
	t := e.begin(cloneRound(e.round))
	entry := *t.round.Pending
	t.markIgnored(entry.Word)
	t.round.Wrong = removeFirst(t.round.Wrong, entry.Word)
	if !t.round.Drill {
		t.correct()
	}
	t.round.Correct++
	t.advance()
	if err := e.commit(ctx, t); err != nil {
		return Result{}, fmt.Errorf("ignore: %w", err)
	}
	e.log.Debug("answer ignored", "word", entry.Word)
	return Result{Entry: entry, Correct: true, Complete: e.phase == Complete}, nil
}

// Skip records the current word as wrong and moves on, overriding a pending
// decision. Outside drills a skip right after a wrong answer records the
// word a second time.
func (e *Engine) Skip(ctx context.Context) (Result, error) {
	if e.phase != InProgress && e.phase != AwaitingIgnoreDecision {
		return Result{}, ErrNoActiveRound
	}
	t := e.begin(cloneRound(e.round))
	entry := t.round.Words[t.round.Position]
	t.recordWrong(entry)
	t.advance()
	if err := e.commit(ctx, t); err != nil {
		return Result{}, fmt.Errorf("skip: %w", err)
	}
	return Result{Entry: entry, Complete: e.phase == Complete}, nil
}

// Abandon discards the round without bookkeeping. Counters and marks
// already applied stay.
func (e *Engine) Abandon(ctx context.Context) error {
	if err := e.persist.Clear(ctx); err != nil {
		return fmt.Errorf("abandon round: %w", err)
	}
	if e.phase != Idle {
		e.log.Info("round abandoned", "id", e.round.ID, "position", e.round.Position)
	}
	e.phase = Idle
	e.round = model.RoundState{}
	e.summary = nil
	return nil
}

// ResetAll clears mastered and ignored words, the counters and the round.
func (e *Engine) ResetAll(ctx context.Context) error {
	l := e.ledger.Clone()
	l.Reset()
	c := e.counter
	c.Reset()
	var b store.Batch
	if err := l.Stage(&b); err != nil {
		return err
	}
	if err := c.Stage(&b); err != nil {
		return err
	}
	e.persist.StageClear(&b)
	if err := e.kv.Apply(ctx, b); err != nil {
		return fmt.Errorf("reset progress: %w", err)
	}
	e.ledger = l
	e.counter = c
	e.phase = Idle
	e.round = model.RoundState{}
	e.summary = nil
	e.log.Info("progress reset")
	return nil
}

// Phase returns the engine state.
func (e *Engine) Phase() Phase {
	return e.phase
}

// Drill reports whether the current round replays wrong words.
func (e *Engine) Drill() bool {
	return e.round.Drill
}

// Pending returns the wrong answer awaiting an ignore/continue decision.
func (e *Engine) Pending() (model.WordEntry, bool) {
	if e.round.Pending == nil {
		return model.WordEntry{}, false
	}
	return *e.round.Pending, true
}

// Wrong returns a copy of the wrong list. It survives completion so that a
// drill can follow.
func (e *Engine) Wrong() []model.WordEntry {
	out := make([]model.WordEntry, len(e.round.Wrong))
	copy(out, e.round.Wrong)
	return out
}

// State returns a copy of the round snapshot.
func (e *Engine) State() model.RoundState {
	return cloneRound(e.round)
}

// Summary returns the report of the round that just completed.
func (e *Engine) Summary() (model.Summary, bool) {
	if e.phase != Complete || e.summary == nil {
		return model.Summary{}, false
	}
	return *e.summary, true
}

// Counters returns the lifetime totals.
func (e *Engine) Counters() model.Progress {
	return e.counter.Progress()
}

// Cumulative returns the lifetime view for a catalog of catalogSize words.
func (e *Engine) Cumulative(catalogSize int) model.Cumulative {
	p := e.counter.Progress()
	mastered, ignored := e.ledger.Counts()
	return model.Cumulative{
		Seen:        p.TotalSeen,
		Correct:     p.TotalCorrect,
		Mastered:    mastered,
		Ignored:     ignored,
		CatalogSize: catalogSize,
	}
}

// Progress returns the position in the current round.
func (e *Engine) Progress() Progress {
	p := Progress{Position: e.round.Position, Total: len(e.round.Words)}
	if p.Total > 0 {
		p.Percent = int(math.Round(float64(p.Position) / float64(p.Total) * 100))
	}
	return p
}

// IsMastered reports whether word is mastered.
func (e *Engine) IsMastered(word string) bool {
	return e.ledger.IsMastered(word)
}

// IsIgnored reports whether word is ignored.
func (e *Engine) IsIgnored(word string) bool {
	return e.ledger.IsIgnored(word)
}

// txn collects the next state of one intent. The engine adopts it only
// after the store accepted every write.
type txn struct {
	round        model.RoundState
	ledger       *ledger.Ledger
	counter      ledger.Counter
	ledgerDirty  bool
	counterDirty bool
}

func (e *Engine) begin(st model.RoundState) *txn {
	return &txn{round: st, ledger: e.ledger, counter: e.counter}
}

func (t *txn) markMastered(word string) {
	if t.ledger.IsMastered(word) {
		return
	}
	t.ownLedger()
	t.ledger.MarkMastered(word)
}

func (t *txn) markIgnored(word string) {
	if t.ledger.IsIgnored(word) {
		return
	}
	t.ownLedger()
	t.ledger.MarkIgnored(word)
}

func (t *txn) ownLedger() {
	if !t.ledgerDirty {
		t.ledger = t.ledger.Clone()
		t.ledgerDirty = true
	}
}

func (t *txn) seen() {
	t.counter.RecordSeen()
	t.counterDirty = true
}

func (t *txn) correct() {
	t.counter.RecordCorrect()
	t.counterDirty = true
}

// recordWrong appends entry to the wrong list. Drills keep one entry per word
// and leave the counters alone.
func (t *txn) recordWrong(entry model.WordEntry) {
	if t.round.Drill {
		if !containsWord(t.round.Wrong, entry.Word) {
			t.round.Wrong = append(t.round.Wrong, entry)
		}
		return
	}
	t.round.Wrong = append(t.round.Wrong, entry)
	t.seen()
}

func (t *txn) advance() {
	t.round.Position++
	t.round.Awaiting = false
	t.round.Pending = nil
}

func (e *Engine) commit(ctx context.Context, t *txn) error {
	complete := t.round.Position >= len(t.round.Words)
	var b store.Batch
	if t.ledgerDirty {
		if err := t.ledger.Stage(&b); err != nil {
			return err
		}
	}
	if t.counterDirty {
		if err := t.counter.Stage(&b); err != nil {
			return err
		}
	}
	if complete {
		e.persist.StageClear(&b)
	} else if err := e.persist.Stage(&b, t.round); err != nil {
		return err
	}
	if err := e.kv.Apply(ctx, b); err != nil {
		return err
	}

	e.ledger = t.ledger
	e.counter = t.counter
	e.round = t.round
	e.summary = nil
	if !complete {
		e.phase = phaseOf(e.round)
		return nil
	}
	e.phase = Complete
	e.summary = e.buildSummary()
	e.log.Info("round complete", "id", e.round.ID, "size", len(e.round.Words), "correct", e.round.Correct, "wrong", len(e.round.Wrong), "drill", e.round.Drill)
	e.recordHistory(ctx)
	return nil
}

func (e *Engine) buildSummary() *model.Summary {
	p := e.counter.Progress()
	s := &model.Summary{
		Drill:             e.round.Drill,
		WrongCount:        len(e.round.Wrong),
		WrongEntries:      e.Wrong(),
		CumulativeSeen:    p.TotalSeen,
		CumulativeCorrect: p.TotalCorrect,
	}
	if e.round.Drill {
		s.RemainingWrongCount = len(e.round.Wrong)
	}
	return s
}

// recordHistory appends the finished round to history. Failures are logged.
func (e *Engine) recordHistory(ctx context.Context) {
	if e.history == nil {
		return
	}
	ended := e.now()
	mode := model.ModeNormal
	if e.round.Drill {
		mode = model.ModeDrill
	}
	size := len(e.round.Words)
	rec := model.RoundRecord{
		ID:         e.round.ID,
		Mode:       mode,
		Filter:     e.round.Filter,
		Size:       size,
		Correct:    e.round.Correct,
		Wrong:      size - e.round.Correct,
		StartedAt:  e.round.StartedAt,
		EndedAt:    ended,
		DurationMs: ended.Sub(e.round.StartedAt).Milliseconds(),
	}
	if err := e.history.InsertRound(ctx, rec); err != nil {
		e.log.Warn("failed to record round history", "id", rec.ID, "error", err)
	}
}

func phaseOf(st model.RoundState) Phase {
	if st.Awaiting {
		return AwaitingIgnoreDecision
	}
	return InProgress
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func cloneRound(st model.RoundState) model.RoundState {
	if st.Wrong != nil {
		st.Wrong = append([]model.WordEntry(nil), st.Wrong...)
	}
	if st.Pending != nil {
		p := *st.Pending
		st.Pending = &p
	}
	return st
}

func containsWord(list []model.WordEntry, word string) bool {
	for _, e := range list {
		if e.Word == word {
			return true
		}
	}
	return false
}

// removeFirst drops the earliest entry keyed by word. Only one recorded
// mistake is taken back even when the list holds the word more than once.
func removeFirst(list []model.WordEntry, word string) []model.WordEntry {
	for i, e := range list {
		if e.Word == word {
			out := make([]model.WordEntry, 0, len(list)-1)
			out = append(out, list[:i]...)
			out = append(out, list[i+1:]...)
			if len(out) == 0 {
				return nil
			}
			return out
		}
	}
	return list
}

// removeWord drops every entry keyed by word.
func removeWord(list []model.WordEntry, word string) []model.WordEntry {
	var out []model.WordEntry
	for _, e := range list {
		if e.Word != word {
			out = append(out, e)
		}
	}
	return out
}
