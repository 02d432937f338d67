package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	factcheck "github.com/haroldubarric0/AI-FactCheck-Fhe/common"
	"github.com/haroldubarric0/AI-FactCheck-Fhe/fhe"
	"github.com/haroldubarric0/AI-FactCheck-Fhe/metrics"
	"github.com/haroldubarric0/AI-FactCheck-Fhe/protocol"
)

// NodeConfig configures the HTTP surface of a scoring node.
type NodeConfig struct {
	// AdminToken gates the /admin routes, in user:pass form. Empty leaves
	// them unprotected.
	AdminToken string

	// Events, when set, backs the GET /api/events endpoint.
	Events EventStore

	// Encryptor, when set, exposes POST /api/encrypt as an encryption
	// gateway. Demo deployments only; a production node never holds the
	// scheme's key material.
	Encryptor fhe.Scheme

	Log     *slog.Logger
	Metrics *metrics.NodeMetrics
}

// NodeService serves the scoring ledger over HTTP.
type NodeService struct {
	cfg    *NodeConfig
	ledger *protocol.Ledger
	log    *slog.Logger
}

// NewNodeService wraps a ledger with the HTTP API.
func NewNodeService(cfg *NodeConfig, ledger *protocol.Ledger) *NodeService {
	if cfg == nil {
		cfg = &NodeConfig{}
	}
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	return &NodeService{
		cfg:    cfg,
		ledger: ledger,
		log:    log,
	}
}

// RegisterRoutes mounts the public API and the admin control surface.
func (s *NodeService) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/posts", s.handleSubmitPost)
		r.Post("/posts/{post_id}/score", s.handleComputeScore)
		r.Post("/oracle/callback", s.handleOracleCallback)
		if s.cfg.Encryptor != nil {
			r.Post("/encrypt", s.handleEncrypt)
		}

		r.Get("/status", s.handleStatus)
		r.Get("/batch", s.handleBatch)
		r.Get("/posts/{post_id}", s.handleGetPost)
		r.Get("/requests/{request_id}", s.handleGetRequest)
		r.Get("/events", s.handleEvents)
	})

	r.Route("/admin", func(r chi.Router) {
		if s.cfg.AdminToken != "" {
			user, pass := parseAdminToken(s.cfg.AdminToken)
			r.Use(middleware.BasicAuth("admin", map[string]string{user: pass}))
		}
		r.Post("/batch/open", s.handleControl("open"))
		r.Post("/batch/close", s.handleControl("close"))
		r.Post("/pause", s.handleControl("pause"))
		r.Post("/unpause", s.handleControl("unpause"))
		r.Post("/providers", s.handleAddProvider)
		r.Delete("/providers", s.handleRemoveProvider)
		r.Post("/cooldown", s.handleSetCooldown)
		r.Post("/ownership", s.handleTransferOwnership)
	})
}

func (s *NodeService) handleSubmitPost(w http.ResponseWriter, r *http.Request) {
	var signedReq Signed[SubmitPostRequest]
	if err := json.NewDecoder(r.Body).Decode(&signedReq); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	req, submitter, err := signedReq.Recover()
	if err != nil {
		http.Error(w, fmt.Errorf("invalid signature: %w", err).Error(), http.StatusForbidden)
		return
	}

	postID, err := s.ledger.SubmitPost(submitter, req.Content, req.Interaction)
	if err != nil {
		s.reject(w, "submit_post", err)
		return
	}

	if s.cfg.Metrics != nil {
		s.cfg.Metrics.PostsSubmitted.Inc()
	}

	post, _ := s.ledger.Post(postID)
	s.writeJSON(w, &SubmitPostResponse{
		PostID:  postID,
		BatchID: post.BatchID,
	})
}

func (s *NodeService) handleComputeScore(w http.ResponseWriter, r *http.Request) {
	urlPostID, err := parseHash(chi.URLParam(r, "post_id"))
	if err != nil {
		http.Error(w, "invalid post id", http.StatusBadRequest)
		return
	}

	var signedReq Signed[ComputeScoreRequest]
	if err := json.NewDecoder(r.Body).Decode(&signedReq); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	req, caller, err := signedReq.Recover()
	if err != nil {
		http.Error(w, fmt.Errorf("invalid signature: %w", err).Error(), http.StatusForbidden)
		return
	}

	if req.PostID != urlPostID {
		http.Error(w, fmt.Sprintf("post id mismatch: URL says %s, body says %s", urlPostID, req.PostID), http.StatusBadRequest)
		return
	}

	requestID, err := s.ledger.ComputeScore(r.Context(), caller, req.PostID)
	if err != nil {
		s.reject(w, "compute_score", err)
		return
	}

	if s.cfg.Metrics != nil {
		s.cfg.Metrics.ScoreRequests.Inc()
	}

	s.writeJSON(w, &ComputeScoreResponse{RequestID: requestID})
}

func (s *NodeService) handleOracleCallback(w http.ResponseWriter, r *http.Request) {
	var req OracleCallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	reveal, err := s.ledger.OnDecryptionResult(req.RequestID, req.Handles, req.Cleartexts, req.Proof)
	if err != nil {
		s.reject(w, "oracle_callback", err)
		return
	}

	if s.cfg.Metrics != nil {
		s.cfg.Metrics.ScoresRevealed.Inc()
	}
	s.log.Info("score revealed",
		"request_id", uint64(reveal.RequestID),
		"post_id", reveal.PostID,
		"score", reveal.Score.Dec())

	s.writeJSON(w, &OracleCallbackResponse{
		PostID:  reveal.PostID,
		BatchID: reveal.BatchID,
		Score:   reveal.Score,
	})
}

func (s *NodeService) handleEncrypt(w http.ResponseWriter, r *http.Request) {
	var req EncryptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	handle, err := s.cfg.Encryptor.EncryptUint64(req.Value)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, &EncryptResponse{Handle: handle})
}

func (s *NodeService) handleStatus(w http.ResponseWriter, r *http.Request) {
	batch := s.ledger.CurrentBatch()
	s.writeJSON(w, &StatusResponse{
		Version:         factcheck.Version,
		InstanceID:      s.ledger.InstanceID(),
		Owner:           s.ledger.Owner(),
		Paused:          s.ledger.Paused(),
		BatchID:         batch.ID,
		BatchOpen:       batch.Open,
		CooldownSeconds: s.ledger.CooldownSeconds(),
	})
}

func (s *NodeService) handleBatch(w http.ResponseWriter, r *http.Request) {
	batch := s.ledger.CurrentBatch()
	s.writeJSON(w, &BatchResponse{BatchID: batch.ID, Open: batch.Open})
}

func (s *NodeService) handleGetPost(w http.ResponseWriter, r *http.Request) {
	postID, err := parseHash(chi.URLParam(r, "post_id"))
	if err != nil {
		http.Error(w, "invalid post id", http.StatusBadRequest)
		return
	}

	post, ok := s.ledger.Post(postID)
	if !ok {
		http.Error(w, "unknown post", http.StatusNotFound)
		return
	}

	s.writeJSON(w, &PostResponse{
		PostID:      post.ID,
		Submitter:   post.Submitter,
		BatchID:     post.BatchID,
		Content:     post.Content,
		Interaction: post.Interaction,
		Processed:   post.Processed,
		Revealed:    post.Revealed,
		Score:       post.RevealedScore,
	})
}

func (s *NodeService) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "request_id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid request id", http.StatusBadRequest)
		return
	}

	req, ok := s.ledger.Request(protocol.RequestID(id))
	if !ok {
		http.Error(w, "unknown request", http.StatusNotFound)
		return
	}

	s.writeJSON(w, &RequestResponse{
		RequestID:  req.ID,
		PostID:     req.PostID,
		BatchID:    req.BatchID,
		Commitment: req.Commitment,
		Finalized:  req.Finalized,
	})
}

func (s *NodeService) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Events == nil {
		http.Error(w, "event store not configured", http.StatusNotFound)
		return
	}

	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	events, err := s.cfg.Events.Events(limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, events)
}

// handleControl serves the four batch lifecycle endpoints. The signed body
// names the action so a captured request cannot drive a different control.
func (s *NodeService) handleControl(action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var signedReq Signed[BatchControlRequest]
		if err := json.NewDecoder(r.Body).Decode(&signedReq); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		req, caller, err := signedReq.Recover()
		if err != nil {
			http.Error(w, fmt.Errorf("invalid signature: %w", err).Error(), http.StatusForbidden)
			return
		}

		if req.Action != action {
			http.Error(w, fmt.Sprintf("action mismatch: endpoint is %s, body says %s", action, req.Action), http.StatusBadRequest)
			return
		}

		switch action {
		case "open":
			err = s.ledger.OpenBatch(caller)
		case "close":
			err = s.ledger.CloseBatch(caller)
		case "pause":
			err = s.ledger.Pause(caller)
		case "unpause":
			err = s.ledger.Unpause(caller)
		}
		if err != nil {
			s.reject(w, action, err)
			return
		}

		batch := s.ledger.CurrentBatch()
		s.writeJSON(w, &BatchResponse{BatchID: batch.ID, Open: batch.Open})
	}
}

func (s *NodeService) handleAddProvider(w http.ResponseWriter, r *http.Request) {
	s.handleProvider(w, r, s.ledger.AddProvider, "add_provider")
}

func (s *NodeService) handleRemoveProvider(w http.ResponseWriter, r *http.Request) {
	s.handleProvider(w, r, s.ledger.RemoveProvider, "remove_provider")
}

func (s *NodeService) handleProvider(w http.ResponseWriter, r *http.Request, apply func(caller, addr common.Address) error, op string) {
	var signedReq Signed[ProviderRequest]
	if err := json.NewDecoder(r.Body).Decode(&signedReq); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	req, caller, err := signedReq.Recover()
	if err != nil {
		http.Error(w, fmt.Errorf("invalid signature: %w", err).Error(), http.StatusForbidden)
		return
	}

	if err := apply(caller, req.Address); err != nil {
		s.reject(w, op, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *NodeService) handleSetCooldown(w http.ResponseWriter, r *http.Request) {
	var signedReq Signed[CooldownRequest]
	if err := json.NewDecoder(r.Body).Decode(&signedReq); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	req, caller, err := signedReq.Recover()
	if err != nil {
		http.Error(w, fmt.Errorf("invalid signature: %w", err).Error(), http.StatusForbidden)
		return
	}

	if err := s.ledger.SetCooldown(caller, req.Seconds); err != nil {
		s.reject(w, "set_cooldown", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *NodeService) handleTransferOwnership(w http.ResponseWriter, r *http.Request) {
	var signedReq Signed[OwnershipRequest]
	if err := json.NewDecoder(r.Body).Decode(&signedReq); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	req, caller, err := signedReq.Recover()
	if err != nil {
		http.Error(w, fmt.Errorf("invalid signature: %w", err).Error(), http.StatusForbidden)
		return
	}

	if err := s.ledger.TransferOwnership(caller, req.NewOwner); err != nil {
		s.reject(w, "transfer_ownership", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *NodeService) reject(w http.ResponseWriter, op string, err error) {
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.RejectedOps.WithLabelValues(op, rejectReason(err)).Inc()
	}
	s.log.Debug("rejected operation", "operation", op, "err", err)
	http.Error(w, err.Error(), statusForError(err))
}

func (s *NodeService) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encoding response", "err", err)
	}
}

// statusForError maps ledger errors onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, protocol.ErrNotOwner),
		errors.Is(err, protocol.ErrNotProvider),
		errors.Is(err, protocol.ErrStateMismatch),
		errors.Is(err, protocol.ErrProofVerification):
		return http.StatusForbidden
	case errors.Is(err, protocol.ErrUnknownPost),
		errors.Is(err, protocol.ErrUnknownRequest):
		return http.StatusNotFound
	case errors.Is(err, protocol.ErrCooldownActive):
		return http.StatusTooManyRequests
	case errors.Is(err, protocol.ErrPaused),
		errors.Is(err, protocol.ErrBatchClosed),
		errors.Is(err, protocol.ErrInvalidBatchState),
		errors.Is(err, protocol.ErrPostAlreadyProcessed),
		errors.Is(err, protocol.ErrReplay):
		return http.StatusConflict
	case errors.Is(err, protocol.ErrMalformedCleartext),
		errors.Is(err, protocol.ErrUninitializedCiphertext):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func rejectReason(err error) string {
	for sentinel, reason := range map[error]string{
		protocol.ErrNotOwner:                "not_owner",
		protocol.ErrNotProvider:             "not_provider",
		protocol.ErrPaused:                  "paused",
		protocol.ErrInvalidBatchState:       "invalid_batch_state",
		protocol.ErrBatchClosed:             "batch_closed",
		protocol.ErrCooldownActive:          "cooldown",
		protocol.ErrPostAlreadyProcessed:    "already_processed",
		protocol.ErrUnknownPost:             "unknown_post",
		protocol.ErrUnknownRequest:          "unknown_request",
		protocol.ErrReplay:                  "replay",
		protocol.ErrStateMismatch:           "state_mismatch",
		protocol.ErrProofVerification:       "proof",
		protocol.ErrMalformedCleartext:      "malformed_cleartext",
		protocol.ErrUninitializedCiphertext: "uninitialized_ciphertext",
	} {
		if errors.Is(err, sentinel) {
			return reason
		}
	}
	return "internal"
}

func parseHash(raw string) (common.Hash, error) {
	raw = strings.TrimPrefix(raw, "0x")
	if len(raw) != common.HashLength*2 {
		return common.Hash{}, errors.New("bad hash length")
	}
	return common.HexToHash(raw), nil
}

func parseAdminToken(token string) (user, pass string) {
	parts := strings.SplitN(token, ":", 2)
	if len(parts) != 2 {
		return token, ""
	}
	return parts[0], parts[1]
}
