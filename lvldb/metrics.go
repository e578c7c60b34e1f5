// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lvldb

import "github.com/vechain/oraclenet/metrics"

var (
	metricDiskSize = metrics.LazyLoadGaugeVec("leveldb_disk_size_bytes", []string{"db"})
	metricIORead   = metrics.LazyLoadGaugeVec("leveldb_io_read_bytes", []string{"db"})
	metricIOWrite  = metrics.LazyLoadGaugeVec("leveldb_io_write_bytes", []string{"db"})
)
