// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package types

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/oraclenet/logdb"
	"github.com/vechain/oraclenet/thor"
)

func u64(v uint64) *uint64 { return &v }

func TestConvertRange(t *testing.T) {
	rng, err := convertRange(nil)
	require.NoError(t, err)
	assert.Nil(t, rng)

	rng, err = convertRange(&Range{From: u64(3)})
	require.NoError(t, err)
	assert.Equal(t, &logdb.Range{Unit: logdb.Sequence, From: 3, To: math.MaxInt64}, rng)

	rng, err = convertRange(&Range{Unit: logdb.Time, From: u64(math.MaxUint64), To: u64(math.MaxUint64)})
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxInt64), rng.From)
	assert.Equal(t, uint64(math.MaxInt64), rng.To)

	_, err = convertRange(&Range{From: u64(5), To: u64(4)})
	assert.Error(t, err)
	_, err = convertRange(&Range{Unit: "block"})
	assert.Error(t, err)
}

func TestConvertEventFilter(t *testing.T) {
	addr := thor.BytesToAddress([]byte("a"))
	topic := thor.BytesToBytes32([]byte("t"))

	f, err := ConvertEventFilter(&EventFilter{
		CriteriaSet: []*EventCriteria{{Address: &addr, Topic2: &topic}},
		Options:     &Options{Offset: 1, Limit: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, logdb.ASC, f.Order)
	require.Len(t, f.CriteriaSet, 1)
	assert.Equal(t, &addr, f.CriteriaSet[0].Address)
	assert.Equal(t, [4]*thor.Bytes32{nil, nil, &topic, nil}, f.CriteriaSet[0].Topics)
	assert.Equal(t, &logdb.Options{Offset: 1, Limit: 2}, f.Options)

	_, err = ConvertEventFilter(&EventFilter{CriteriaSet: []*EventCriteria{nil}, Options: &Options{}})
	assert.Error(t, err)
	_, err = ConvertEventFilter(&EventFilter{Order: "up", Options: &Options{}})
	assert.Error(t, err)
}

func TestConvertEvent(t *testing.T) {
	topic := thor.BytesToBytes32([]byte("t"))
	fe := ConvertEvent(&logdb.Event{
		Topics:    [4]*thor.Bytes32{&topic},
		LedgerSeq: 4,
	})
	assert.Equal(t, []*thor.Bytes32{&topic}, fe.Topics)
	assert.Equal(t, "null", string(fe.Data))
	assert.Equal(t, uint32(4), fe.Meta.LedgerSeq)
}
