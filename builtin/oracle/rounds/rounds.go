// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rounds

import (
	"math/big"
	"slices"

	"github.com/vechain/oraclenet/builtin/oracle/feeds"
	"github.com/vechain/oraclenet/builtin/solidity"
	"github.com/vechain/oraclenet/thor"
)

var slotRounds = thor.BytesToBytes32([]byte("feed-rounds"))

// Report is a single oracle observation.
type Report struct {
	Oracle thor.Address
	Value  *big.Int
}

// Round collects the reports of the in-flight round of a feed.
type Round struct {
	RoundID uint64
	Reports []Report
}

// HasReported returns whether oracle already reported in this round.
func (r *Round) HasReported(oracle thor.Address) bool {
	return slices.ContainsFunc(r.Reports, func(rep Report) bool {
		return rep.Oracle == oracle
	})
}

// Aggregate returns the upper median of the reported values.
// It panics on an empty round.
func (r *Round) Aggregate() *big.Int {
	values := make([]*big.Int, 0, len(r.Reports))
	for _, rep := range r.Reports {
		values = append(values, rep.Value)
	}
	return Median(values)
}

// Median returns the element at index n/2 of the sorted values, the upper
// median for even n. The input is not modified.
func Median(values []*big.Int) *big.Int {
	sorted := slices.Clone(values)
	slices.SortFunc(sorted, func(a, b *big.Int) int { return a.Cmp(b) })
	return new(big.Int).Set(sorted[len(sorted)/2])
}

// Service stores in-flight rounds, one per feed.
type Service struct {
	rounds *solidity.Mapping[feeds.ID, *roundEntry]
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		rounds: solidity.NewMapping[feeds.ID, *roundEntry](sctx, slotRounds),
	}
}

// Get returns the in-flight round of a feed, nil if there is none.
func (s *Service) Get(id feeds.ID) (*Round, error) {
	exists, err := s.rounds.Exists(id)
	if err != nil || !exists {
		return nil, err
	}
	entry, err := s.rounds.Get(id)
	if err != nil {
		return nil, err
	}
	return entry.round(), nil
}

func (s *Service) Set(id feeds.ID, r *Round) error {
	return s.rounds.Set(id, newRoundEntry(r))
}

// Delete drops the in-flight round of a feed.
func (s *Service) Delete(id feeds.ID) {
	s.rounds.Delete(id)
}

type reportEntry struct {
	Oracle   thor.Address
	ValueNeg bool
	Value    *big.Int
}

type roundEntry struct {
	RoundID uint64
	Reports []reportEntry
}

func newRoundEntry(r *Round) *roundEntry {
	entry := &roundEntry{RoundID: r.RoundID, Reports: make([]reportEntry, 0, len(r.Reports))}
	for _, rep := range r.Reports {
		neg, abs := feeds.SplitSigned(rep.Value)
		entry.Reports = append(entry.Reports, reportEntry{rep.Oracle, neg, abs})
	}
	return entry
}

func (e *roundEntry) round() *Round {
	r := &Round{RoundID: e.RoundID, Reports: make([]Report, 0, len(e.Reports))}
	for _, rep := range e.Reports {
		r.Reports = append(r.Reports, Report{rep.Oracle, feeds.JoinSigned(rep.ValueNeg, rep.Value)})
	}
	return r
}
