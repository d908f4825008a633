// Package rpc exposes the node's REST surface: explorer reads, transaction
// submission, mining control, peer management and Prometheus metrics. It is
// a thin boundary layer; all state lives behind the ledger, gossip node and
// miner it wraps.
package rpc

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Ubaid-developer/keta-chain/pkg/core"
	"github.com/Ubaid-developer/keta-chain/pkg/metrics"
	"github.com/Ubaid-developer/keta-chain/pkg/miner"
	"github.com/Ubaid-developer/keta-chain/pkg/network"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

// Server is the REST API server
type Server struct {
	listenAddr string
	ledger     *core.Ledger
	node       *network.Node
	miner      *miner.Miner
	metrics    *metrics.Metrics
	router     *mux.Router
	server     *http.Server
}

// NewServer creates a REST server over the node's components
func NewServer(listenAddr string, ledger *core.Ledger, node *network.Node, m *miner.Miner, collectors *metrics.Metrics) *Server {
	s := &Server{
		listenAddr: listenAddr,
		ledger:     ledger,
		node:       node,
		miner:      m,
		metrics:    collectors,
		router:     mux.NewRouter(),
	}
	s.registerRoutes()
	return s
}

// Start serves the API until the context is cancelled
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         s.listenAddr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.server.Shutdown(shutdownCtx)
	}()

	slog.Info("rpc server listening", "addr", s.listenAddr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "rpc listener")
	}
	return nil
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	s.router.HandleFunc("/health", s.healthHandler).Methods("GET")

	s.router.HandleFunc("/api/chain", s.getChainHandler).Methods("GET")
	s.router.HandleFunc("/api/chain/stats", s.getChainStatsHandler).Methods("GET")
	s.router.HandleFunc("/api/blocks/{index}", s.getBlockHandler).Methods("GET")
	s.router.HandleFunc("/api/pending", s.getPendingHandler).Methods("GET")
	s.router.HandleFunc("/api/transactions", s.submitTransactionHandler).Methods("POST")

	s.router.HandleFunc("/api/wallet/{address}/balance", s.getBalanceHandler).Methods("GET")
	s.router.HandleFunc("/api/wallet/{address}/transactions", s.getWalletTransactionsHandler).Methods("GET")

	s.router.HandleFunc("/api/mining/start", s.startMiningHandler).Methods("POST")
	s.router.HandleFunc("/api/mining/stop", s.stopMiningHandler).Methods("POST")
	s.router.HandleFunc("/api/mining/status", s.miningStatusHandler).Methods("GET")

	s.router.HandleFunc("/api/peers", s.getPeersHandler).Methods("GET")
	s.router.HandleFunc("/api/peers", s.connectPeerHandler).Methods("POST")

	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler()).Methods("GET")
	}
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, map[string]any{
		"status": "ok",
		"height": s.ledger.Height(),
		"time":   time.Now().Unix(),
	})
}

func (s *Server) getChainHandler(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, s.ledger.Chain())
}

func (s *Server) getChainStatsHandler(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, s.ledger.GetChainStats())
}

func (s *Server) getBlockHandler(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.ParseUint(mux.Vars(r)["index"], 10, 64)
	if err != nil {
		errorResponse(w, "invalid block index", http.StatusBadRequest)
		return
	}

	block := s.ledger.BlockByIndex(index)
	if block == nil {
		errorResponse(w, "block not found", http.StatusNotFound)
		return
	}
	jsonResponse(w, block)
}

func (s *Server) getPendingHandler(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, s.ledger.Pending())
}

// submitTransactionHandler admits a signed transaction into the pool and
// gossips it. Validation failures come back as a specific reason string.
func (s *Server) submitTransactionHandler(w http.ResponseWriter, r *http.Request) {
	var tx core.Transaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		errorResponse(w, "invalid transaction payload", http.StatusBadRequest)
		return
	}

	if err := s.ledger.AddTransaction(&tx); err != nil {
		errorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	if s.metrics != nil {
		s.metrics.PendingTransactions.Set(float64(len(s.ledger.Pending())))
	}
	if s.node != nil {
		s.node.BroadcastTransaction(&tx)
	}
	jsonResponse(w, map[string]string{"id": tx.ID, "status": "pending"})
}

func (s *Server) getBalanceHandler(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]
	jsonResponse(w, map[string]any{
		"address": address,
		"balance": s.ledger.GetBalance(address),
	})
}

func (s *Server) getWalletTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]
	jsonResponse(w, s.ledger.GetAllTransactionsForWallet(address))
}

func (s *Server) startMiningHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RewardAddress string `json:"rewardAddress"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RewardAddress == "" {
		errorResponse(w, "rewardAddress is required", http.StatusBadRequest)
		return
	}

	if err := s.miner.Start(req.RewardAddress); err != nil {
		errorResponse(w, err.Error(), http.StatusConflict)
		return
	}
	jsonResponse(w, s.miner.Status())
}

func (s *Server) stopMiningHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.miner.Stop(); err != nil {
		errorResponse(w, err.Error(), http.StatusConflict)
		return
	}
	jsonResponse(w, s.miner.Status())
}

func (s *Server) miningStatusHandler(w http.ResponseWriter, r *http.Request) {
	status := s.miner.Status()
	jsonResponse(w, map[string]any{
		"running":         status.Running,
		"rewardAddress":   status.RewardAddress,
		"blocksMined":     status.BlocksMined,
		"hashRate":        status.HashRate,
		"networkHashRate": s.node.HashRate(),
	})
}

func (s *Server) getPeersHandler(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, s.node.Peers())
}

func (s *Server) connectPeerHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Address string `json:"address"`
		Port    int    `json:"port"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Address == "" || req.Port == 0 {
		errorResponse(w, "address and port are required", http.StatusBadRequest)
		return
	}

	if err := s.node.Connect(req.Address, req.Port); err != nil {
		errorResponse(w, err.Error(), http.StatusBadGateway)
		return
	}
	jsonResponse(w, s.node.Peers())
}

func jsonResponse(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"data": v}); err != nil {
		slog.Error("encoding response failed", "err", err)
	}
}

func errorResponse(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"error": message})
}
