package round

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/verte-zerg/vocabdrill/internal/model"
	"github.com/verte-zerg/vocabdrill/internal/store"
)

// KeyRound stores the in-flight round snapshot.
const KeyRound = "active_round"

type kv interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Apply(ctx context.Context, b store.Batch) error
}

// Persistence saves and restores the in-flight round.
type Persistence struct {
	kv  kv
	log *slog.Logger
}

// NewPersistence wraps a key/value store.
func NewPersistence(kv kv, log *slog.Logger) Persistence {
	if log == nil {
		log = slog.Default()
	}
	return Persistence{kv: kv, log: log}
}

// Load returns the saved round, or nil when there is none. A snapshot that
// does not decode or describes an impossible state counts as absent.
func (p Persistence) Load(ctx context.Context) (*model.RoundState, error) {
	raw, ok, err := p.kv.Get(ctx, KeyRound)
	if err != nil {
		return nil, fmt.Errorf("load round: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var st model.RoundState
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		p.log.Warn("discarding malformed round snapshot", "error", err)
		return nil, nil
	}
	if err := validate(st); err != nil {
		p.log.Warn("discarding malformed round snapshot", "error", err)
		return nil, nil
	}
	if len(st.Wrong) == 0 {
		st.Wrong = nil
	}
	return &st, nil
}

func validate(st model.RoundState) error {
	switch {
	case len(st.Words) == 0:
		return errors.New("round has no words")
	case st.Position < 0 || st.Position >= len(st.Words):
		return fmt.Errorf("position %d out of range [0,%d)", st.Position, len(st.Words))
	case st.Awaiting != (st.Pending != nil):
		return errors.New("pending entry does not match decision flag")
	case st.Correct < 0:
		return errors.New("negative correct count")
	}
	return nil
}

// Stage queues a write of st.
func (p Persistence) Stage(b *store.Batch, st model.RoundState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode round: %w", err)
	}
	b.Set(KeyRound, string(data))
	return nil
}

// StageClear queues removal of the snapshot.
func (p Persistence) StageClear(b *store.Batch) {
	b.Remove(KeyRound)
}

// Save writes st.
func (p Persistence) Save(ctx context.Context, st model.RoundState) error {
	var b store.Batch
	if err := p.Stage(&b, st); err != nil {
		return err
	}
	return p.kv.Apply(ctx, b)
}

// Clear removes the snapshot.
func (p Persistence) Clear(ctx context.Context) error {
	var b store.Batch
	p.StageClear(&b)
	return p.kv.Apply(ctx, b)
}
