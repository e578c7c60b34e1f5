// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package transfers

import (
	"context"
	"fmt"
	"math"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/oraclenet/api/types"
	"github.com/vechain/oraclenet/api/utils"
	"github.com/vechain/oraclenet/logdb"
)

type Transfers struct {
	db    *logdb.LogDB
	limit uint64
}

func New(db *logdb.LogDB, logsLimit uint64) *Transfers {
	return &Transfers{
		db,
		logsLimit,
	}
}

// Filter query transfers with option
func (t *Transfers) filter(ctx context.Context, tf *types.TransferFilter) ([]*types.FilteredTransfer, error) {
	filter, err := types.ConvertTransferFilter(tf)
	if err != nil {
		return nil, utils.BadRequest(err)
	}
	transfers, err := t.db.FilterTransfers(ctx, filter)
	if err != nil {
		return nil, err
	}
	fts := make([]*types.FilteredTransfer, len(transfers))
	for i, tr := range transfers {
		fts[i] = types.ConvertTransfer(tr)
	}
	return fts, nil
}

func (t *Transfers) handleFilter(w http.ResponseWriter, req *http.Request) error {
	var filter types.TransferFilter
	if err := utils.ParseJSON(req.Body, &filter); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if filter.Options != nil && filter.Options.Limit > t.limit {
		return utils.Forbidden(fmt.Errorf("options.limit exceeds the maximum allowed value of %d", t.limit))
	}
	if filter.Options != nil && filter.Options.Offset > math.MaxInt64 {
		return utils.BadRequest(fmt.Errorf("options.offset exceeds the maximum allowed value of %d", int64(math.MaxInt64)))
	}
	if filter.Options == nil {
		// one over the limit, to detect whether there are more logs than allowed
		filter.Options = &types.Options{
			Offset: 0,
			Limit:  t.limit + 1,
		}
	}

	fts, err := t.filter(req.Context(), &filter)
	if err != nil {
		return err
	}

	if len(fts) > int(t.limit) {
		return utils.Forbidden(fmt.Errorf("the number of filtered logs exceeds the maximum allowed value of %d, please use pagination", t.limit))
	}

	return utils.WriteJSON(w, fts)
}

func (t *Transfers) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodPost).
		Name("logs_filter_transfer").
		HandlerFunc(utils.WrapHandlerFunc(t.handleFilter))
}
