package server

import (
	"context"
	"errors"
	"net/http"
	"sort"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/poolq/pool-server/api"
	"github.com/poolq/pool-server/config"
	"github.com/poolq/pool-server/pool"
)

func (s *Server) handleCreatePool(w http.ResponseWriter, r *http.Request) {
	req := new(api.CreatePoolRequest)
	if !s.readJSON(w, r, req) {
		return
	}
	log.Debugf("received create pool request: %+v", req)
	if req.Name == "" {
		writeErr(w, http.StatusBadRequest, "missing name attribute")
		return
	}
	if req.Workers <= 0 {
		req.Workers = s.config.Defaults.Workers
	}
	pc := &config.PoolConfig{
		Name:    req.Name,
		Workers: req.Workers,
		Echo:    req.Echo,
	}
	s.mp.Lock()
	if prev, ok := s.pools[req.Name]; ok {
		// re-create tears down and replaces the prior state
		prev.Stop()
	}
	p := pool.New(pc)
	s.pools[req.Name] = p
	s.mp.Unlock()
	writeJSON(w, http.StatusCreated, status(p))
}

func (s *Server) handleListPools(w http.ResponseWriter, r *http.Request) {
	log.Debugf("received list pools request")
	s.mp.RLock()
	rsp := &api.ListPoolsResponse{
		Pools: make([]*api.PoolStatus, 0, len(s.pools)),
	}
	for _, p := range s.pools {
		rsp.Pools = append(rsp.Pools, status(p))
	}
	s.mp.RUnlock()
	sort.Slice(rsp.Pools, func(i, j int) bool {
		return rsp.Pools[i].Name < rsp.Pools[j].Name
	})
	writeJSON(w, http.StatusOK, rsp)
}

func (s *Server) handleGetPool(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["pool"]
	log.Debugf("received get pool request: %s", name)
	s.mp.RLock()
	p, ok := s.pools[name]
	s.mp.RUnlock()
	if !ok {
		writeErr(w, http.StatusNotFound, "unknown pool "+name)
		return
	}
	writeJSON(w, http.StatusOK, status(p))
}

func (s *Server) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["pool"]
	req := new(api.SubmitJobRequest)
	if !s.readJSON(w, r, req) {
		return
	}
	log.Debugf("received submit request for pool %s: %+v", name, req)
	if len(req.Command) == 0 {
		writeErr(w, http.StatusBadRequest, "missing command attribute")
		return
	}
	p := s.getOrCreatePool(name)
	j, err := p.Submit(req.Command, pool.ParseMode(req.Mode))
	if err != nil {
		writeErr(w, errCode(err), err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, &api.SubmitJobResponse{ID: j.ID})
}

func (s *Server) handleWaitPool(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["pool"]
	log.Debugf("received wait request for pool %s", name)
	s.mp.RLock()
	p, ok := s.pools[name]
	s.mp.RUnlock()
	if !ok {
		writeErr(w, http.StatusNotFound, "unknown pool "+name)
		return
	}
	err := p.Wait(r.Context())
	if err != nil {
		writeErr(w, errCode(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func (s *Server) handleShutdownPool(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["pool"]
	log.Debugf("received shutdown request for pool %s", name)
	s.mp.Lock()
	p, ok := s.pools[name]
	if ok {
		delete(s.pools, name)
	}
	s.mp.Unlock()
	if !ok {
		writeErr(w, http.StatusNotFound, "unknown pool "+name)
		return
	}
	sum, err := p.Shutdown(r.Context())
	if err != nil {
		writeErr(w, errCode(err), err.Error())
		return
	}
	log.Infof("deleted pool %s", name)
	writeJSON(w, http.StatusOK, sum)
}

// getOrCreatePool auto-initializes a pool with the configured defaults
// when a job is submitted to an unknown name.
func (s *Server) getOrCreatePool(name string) *pool.Pool {
	s.mp.RLock()
	p, ok := s.pools[name]
	s.mp.RUnlock()
	if ok {
		return p
	}
	s.mp.Lock()
	defer s.mp.Unlock()
	if p, ok = s.pools[name]; ok {
		return p
	}
	p = pool.New(&config.PoolConfig{
		Name:    name,
		Workers: s.config.Defaults.Workers,
		Echo:    s.config.Defaults.Echo,
	})
	s.pools[name] = p
	return p
}

func status(p *pool.Pool) *api.PoolStatus {
	return &api.PoolStatus{
		Name:     p.Name(),
		Workers:  p.Config().Workers,
		Echo:     p.Config().Echo,
		Queued:   p.Queued(),
		Recorded: p.Recorded(),
	}
}

func errCode(err error) int {
	switch {
	case errors.Is(err, pool.ErrPoolStopped):
		return http.StatusConflict
	case errors.Is(err, pool.ErrEmptyCommand):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
