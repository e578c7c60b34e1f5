// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package oracle

import (
	"math"
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/oraclenet/builtin/oracle/rounds"
	"github.com/vechain/oraclenet/thor"
	"github.com/vechain/oraclenet/xenv"
)

// Submit records a report of oracle for the in-flight round of a feed.
// The round is finalized once it holds MinOracles reports.
// It returns the finalized state, or nil while the quorum is not reached.
func (o *Oracle) Submit(env *xenv.Environment, id FeedID, value *big.Int, reportedTS uint64, oracle thor.Address) (*FeedState, error) {
	if err := env.RequireAuth(oracle); err != nil {
		return nil, err
	}
	cfg, err := o.feedService.Config(id)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, errUnknownFeed
	}
	isOracle, err := o.feedService.IsOracle(id, oracle)
	if err != nil {
		return nil, err
	}
	if !isOracle {
		return nil, errNotOracle
	}

	now := env.BlockContext().Time
	if reportedTS > saturatingAdd(now, cfg.HeartbeatSeconds) {
		return nil, errTimestampSkew
	}

	round, err := o.roundService.Get(id)
	if err != nil {
		return nil, err
	}
	if round == nil {
		st, err := o.feedState(id)
		if err != nil {
			return nil, err
		}
		round = &rounds.Round{RoundID: st.LatestRoundID + 1}
	}
	if round.HasReported(oracle) {
		return nil, errDuplicate
	}
	round.Reports = append(round.Reports, rounds.Report{Oracle: oracle, Value: new(big.Int).Set(value)})

	logger.Debug("report accepted", "feed", id, "oracle", oracle, "round", round.RoundID, "reports", len(round.Reports))

	if uint64(len(round.Reports)) < uint64(cfg.MinOracles) {
		if err := o.roundService.Set(id, round); err != nil {
			return nil, errors.WithMessage(err, "save round")
		}
		return nil, nil
	}
	return o.finalize(env, id, cfg, round, reportedTS)
}

func (o *Oracle) finalize(env *xenv.Environment, id FeedID, cfg *FeedConfig, round *rounds.Round, reportedTS uint64) (*FeedState, error) {
	st, err := o.feedState(id)
	if err != nil {
		return nil, err
	}
	agg := round.Aggregate()

	st.LatestRoundID++
	st.LatestValue = agg
	st.LatestTimestamp = reportedTS
	st.LatestUpdatedAtLedger = env.BlockContext().Time
	if err := o.feedService.SetState(id, st); err != nil {
		return nil, errors.WithMessage(err, "save feed state")
	}
	o.roundService.Delete(id)

	for _, rep := range round.Reports {
		if err := o.creditReward(rep.Oracle, cfg.RewardPerSubmission); err != nil {
			return nil, err
		}
	}

	metricRoundFinalized().AddWithLabel(1, map[string]string{"feed": string(id)})
	logger.Info("feed updated", "feed", id, "value", agg, "round", st.LatestRoundID, "reports", len(round.Reports))

	if err := o.emit(env, EventFeedUpdated, FeedTopic(id), &FeedUpdated{
		FeedID:    id,
		Value:     new(big.Int).Set(agg),
		RoundID:   st.LatestRoundID,
		Timestamp: reportedTS,
	}); err != nil {
		return nil, err
	}
	return st, nil
}

// feedState returns the stored state of a configured feed, zeroed if missing.
func (o *Oracle) feedState(id FeedID) (*FeedState, error) {
	st, err := o.feedService.State(id)
	if err != nil {
		return nil, err
	}
	if st == nil {
		st = &FeedState{LatestValue: new(big.Int)}
	}
	return st, nil
}

// creditReward adds a non-positive reward as nothing.
func (o *Oracle) creditReward(oracle thor.Address, reward *big.Int) error {
	if reward == nil || reward.Sign() <= 0 {
		return nil
	}
	return o.stakeService.AddPendingRewards(oracle, reward)
}

func saturatingAdd(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}
