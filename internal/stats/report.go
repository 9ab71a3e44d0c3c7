package stats

import (
	"context"
	"io"

	"github.com/verte-zerg/vocabdrill/internal/model"
)

type roundLister interface {
	ListRounds(ctx context.Context, cfg model.StatsConfig) ([]model.RoundRecord, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Cumulative  model.Cumulative
	Rounds      []model.RoundRecord
	CurveWindow int
}

// BuildReport loads the round history selected by cfg.
func BuildReport(ctx context.Context, st roundLister, cfg model.StatsConfig, cumulative model.Cumulative) (Report, error) {
	rounds, err := st.ListRounds(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(rounds) > cfg.Last {
		rounds = rounds[len(rounds)-cfg.Last:]
	}
	return Report{Cumulative: cumulative, Rounds: rounds, CurveWindow: cfg.CurveWindow}, nil
}

// Render prints the cumulative block, the history table and the curve.
func (r Report) Render(w io.Writer, width int) error {
	if err := RenderCumulative(w, r.Cumulative); err != nil {
		return err
	}
	if err := RenderHistory(w, r.Rounds, width); err != nil {
		return err
	}
	return RenderCurve(w, r.Rounds, r.CurveWindow, width)
}
