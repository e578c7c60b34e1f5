// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package feeds

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/oraclenet/api/types"
	"github.com/vechain/oraclenet/api/utils"
	"github.com/vechain/oraclenet/builtin"
	"github.com/vechain/oraclenet/builtin/oracle"
	"github.com/vechain/oraclenet/runtime"
	"github.com/vechain/oraclenet/xenv"
)

type Feeds struct {
	rt      *runtime.Runtime
	signers *utils.Signers
}

func New(rt *runtime.Runtime, signers *utils.Signers) *Feeds {
	return &Feeds{rt, signers}
}

func parseFeedID(s string) (oracle.FeedID, error) {
	id := oracle.FeedID(s)
	if err := id.Validate(); err != nil {
		return "", utils.BadRequest(errors.WithMessage(err, "id"))
	}
	return id, nil
}

// parseMaxAge reads an optional age in seconds, absent means no limit.
func parseMaxAge(req *http.Request, name string) (uint64, error) {
	s := req.URL.Query().Get(name)
	if s == "" {
		return math.MaxUint64, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, utils.BadRequest(errors.WithMessage(err, name))
	}
	return v, nil
}

func getFeed(o *oracle.Oracle, id oracle.FeedID) (*types.Feed, error) {
	cfg, err := o.GetFeedConfig(id)
	if err != nil || cfg == nil {
		return nil, err
	}
	oracles, err := o.GetFeedOracles(id)
	if err != nil {
		return nil, err
	}
	return &types.Feed{ID: id, Config: types.NewFeedConfig(cfg), Oracles: oracles}, nil
}

func (f *Feeds) handleListFeeds(w http.ResponseWriter, req *http.Request) error {
	return utils.Query(w, req, f.rt, func(env *xenv.Environment) (any, error) {
		o := builtin.Oracle.WithState(env.State())
		ids, err := o.ListFeeds()
		if err != nil {
			return nil, err
		}
		list := make([]*types.Feed, 0, len(ids))
		for _, id := range ids {
			feed, err := getFeed(o, id)
			if err != nil {
				return nil, err
			}
			if feed != nil {
				list = append(list, feed)
			}
		}
		return list, nil
	})
}

func (f *Feeds) handleGetFeed(w http.ResponseWriter, req *http.Request) error {
	id, err := parseFeedID(mux.Vars(req)["id"])
	if err != nil {
		return err
	}
	return utils.Query(w, req, f.rt, func(env *xenv.Environment) (any, error) {
		return getFeed(builtin.Oracle.WithState(env.State()), id)
	})
}

func (f *Feeds) handleCreateFeed(w http.ResponseWriter, req *http.Request) error {
	var payload types.CreateFeedRequest
	return utils.Call(w, req, f.rt, f.signers, &payload, func(env *xenv.Environment) (any, error) {
		if payload.Config == nil {
			return nil, utils.BadRequest(errors.New("config: required"))
		}
		cfg, err := payload.Config.Config()
		if err != nil {
			return nil, utils.BadRequest(errors.WithMessage(err, "config"))
		}
		return nil, builtin.Oracle.WithState(env.State()).CreateFeed(env, payload.Admin, payload.ID, cfg, payload.Oracles)
	})
}

func (f *Feeds) handleUpdateOracles(w http.ResponseWriter, req *http.Request) error {
	id, err := parseFeedID(mux.Vars(req)["id"])
	if err != nil {
		return err
	}
	var payload types.OraclesRequest
	return utils.Call(w, req, f.rt, f.signers, &payload, func(env *xenv.Environment) (any, error) {
		return nil, builtin.Oracle.WithState(env.State()).UpdateFeedOracles(env, payload.Admin, id, payload.Oracles)
	})
}

func (f *Feeds) handleSubmitReport(w http.ResponseWriter, req *http.Request) error {
	id, err := parseFeedID(mux.Vars(req)["id"])
	if err != nil {
		return err
	}
	var payload types.ReportRequest
	return utils.Call(w, req, f.rt, f.signers, &payload, func(env *xenv.Environment) (any, error) {
		if payload.Value == nil {
			return nil, utils.BadRequest(errors.New("value: required"))
		}
		st, err := builtin.Oracle.WithState(env.State()).Submit(env, id, payload.Value, payload.Timestamp, payload.Oracle)
		if err != nil || st == nil {
			return nil, err
		}
		return types.NewFeedState(st), nil
	})
}

func (f *Feeds) handleGetRound(w http.ResponseWriter, req *http.Request) error {
	id, err := parseFeedID(mux.Vars(req)["id"])
	if err != nil {
		return err
	}
	return utils.Query(w, req, f.rt, func(env *xenv.Environment) (any, error) {
		round, err := builtin.Oracle.WithState(env.State()).GetRound(id)
		if err != nil || round == nil {
			return nil, err
		}
		return types.NewRound(round), nil
	})
}

func (f *Feeds) handleGetLatest(w http.ResponseWriter, req *http.Request) error {
	id, err := parseFeedID(mux.Vars(req)["id"])
	if err != nil {
		return err
	}
	maxAge, err := parseMaxAge(req, "maxAge")
	if err != nil {
		return err
	}
	return utils.Query(w, req, f.rt, func(env *xenv.Environment) (any, error) {
		st, ok, err := builtin.Oracle.WithState(env.State()).GetLatestSafe(env.BlockContext().Time, id, maxAge)
		if err != nil || !ok {
			return nil, err
		}
		return &types.Latest{FeedID: id, FeedState: types.NewFeedState(st)}, nil
	})
}

func (f *Feeds) handleGetLatestWithFallback(w http.ResponseWriter, req *http.Request) error {
	primary, err := parseFeedID(mux.Vars(req)["id"])
	if err != nil {
		return err
	}
	fallback, err := parseFeedID(mux.Vars(req)["fallback"])
	if err != nil {
		return err
	}
	maxAge, err := parseMaxAge(req, "maxAge")
	if err != nil {
		return err
	}
	fallbackMaxAge, err := parseMaxAge(req, "fallbackMaxAge")
	if err != nil {
		return err
	}
	return utils.Query(w, req, f.rt, func(env *xenv.Environment) (any, error) {
		st, used, ok, err := builtin.Oracle.WithState(env.State()).
			GetLatestWithFallback(env.BlockContext().Time, primary, fallback, maxAge, fallbackMaxAge)
		if err != nil || !ok {
			return nil, err
		}
		return &types.Latest{FeedID: used, FeedState: types.NewFeedState(st)}, nil
	})
}

func (f *Feeds) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("feeds_list").
		HandlerFunc(utils.WrapHandlerFunc(f.handleListFeeds))
	sub.Path("").
		Methods(http.MethodPost).
		Name("feeds_create").
		HandlerFunc(utils.WrapHandlerFunc(f.handleCreateFeed))
	sub.Path("/{id}").
		Methods(http.MethodGet).
		Name("feeds_get").
		HandlerFunc(utils.WrapHandlerFunc(f.handleGetFeed))
	sub.Path("/{id}/oracles").
		Methods(http.MethodPut).
		Name("feeds_update_oracles").
		HandlerFunc(utils.WrapHandlerFunc(f.handleUpdateOracles))
	sub.Path("/{id}/reports").
		Methods(http.MethodPost).
		Name("feeds_submit_report").
		HandlerFunc(utils.WrapHandlerFunc(f.handleSubmitReport))
	sub.Path("/{id}/round").
		Methods(http.MethodGet).
		Name("feeds_get_round").
		HandlerFunc(utils.WrapHandlerFunc(f.handleGetRound))
	sub.Path("/{id}/latest").
		Methods(http.MethodGet).
		Name("feeds_get_latest").
		HandlerFunc(utils.WrapHandlerFunc(f.handleGetLatest))
	sub.Path("/{id}/latest/fallback/{fallback}").
		Methods(http.MethodGet).
		Name("feeds_get_latest_with_fallback").
		HandlerFunc(utils.WrapHandlerFunc(f.handleGetLatestWithFallback))
}
