package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"candidatevet/internal/bootstrap/logging"
	domainvetting "candidatevet/internal/domain/vetting"
	"candidatevet/internal/errs"
	usecaseaudit "candidatevet/internal/usecase/audit"
	usecasevetting "candidatevet/internal/usecase/vetting"
)

const (
	HeaderCapabilities = "X-Capabilities"
	HeaderMemberID     = "X-Member-ID"

	maxBodyBytes = 1 << 20
)

type capsKey struct{}

type Handler struct {
	vettings *usecasevetting.Service
	audits   *usecaseaudit.Service
}

func NewHandler(vettings *usecasevetting.Service, audits *usecaseaudit.Service) *Handler {
	return &Handler{vettings: vettings, audits: audits}
}

// Router mounts every endpoint. Capabilities come from upstream identity headers.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(capabilities)

		r.Get("/board", h.pipelineBoard)

		r.Post("/committees", h.createCommittee)
		r.Post("/committees/{committeeID}/members", h.addCommitteeMember)

		r.Route("/vettings", func(r chi.Router) {
			r.Get("/", h.listVettings)
			r.Post("/", h.createVetting)

			r.Route("/{vettingID}", func(r chi.Router) {
				r.Get("/", h.getVetting)
				r.Post("/stage", h.transitionStage)
				r.Post("/recommendation", h.setRecommendation)
				r.Post("/interview", h.recordInterview)
				r.Get("/opponents", h.listOpponents)
				r.Post("/opponents", h.addOpponent)
				r.Get("/sections", h.listSections)
				r.Post("/sections/{sectionType}/draft", h.generateDraft)
				r.Post("/votes", h.recordVote)
				r.Get("/tally", h.boardTally)
				r.Post("/endorsement", h.finalizeEndorsement)
				r.Post("/audits", h.runAudit)
				r.Get("/audits/latest", h.latestAudit)
			})
		})

		r.Route("/sections/{sectionID}", func(r chi.Router) {
			r.Patch("/", h.updateSection)
			r.Post("/assignments", h.assignSection)
			r.Delete("/assignments/{memberID}", h.unassignSection)
		})

		r.Get("/audits/{auditID}", h.getAudit)
		r.Get("/audits/{auditID}/platforms", h.auditPlatforms)
	})
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		ctx := logging.WithAttrs(r.Context(),
			slog.String("component", "httpapi"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		logging.Info(ctx, "http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("elapsed", time.Since(started)),
		)
	})
}

func capabilities(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var memberID uint64
		if raw := strings.TrimSpace(r.Header.Get(HeaderMemberID)); raw != "" {
			parsed, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				writeError(w, r, errs.Validationf("%s must be a positive integer", HeaderMemberID))
				return
			}
			memberID = parsed
		}
		caps, err := domainvetting.ParseCapabilities(r.Header.Get(HeaderCapabilities), memberID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), capsKey{}, caps)))
	})
}

func capsFrom(r *http.Request) domainvetting.Capabilities {
	caps, _ := r.Context().Value(capsKey{}).(domainvetting.Capabilities)
	return caps
}

func pathID(r *http.Request, name string) (uint64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errs.Validationf("%s %q is not a valid id", name, raw)
	}
	return id, nil
}

func decodeBody(r *http.Request, dst any) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errs.Validationf("request body is required")
		}
		return errs.Validationf("invalid request body: %v", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := statusFor(err)
	if status >= http.StatusInternalServerError {
		logging.Error(r.Context(), "request failed", slog.Any("err", errs.Loggable(err)))
	}
	writeJSON(w, status, errorBody{Error: err.Error(), Kind: kind})
}

func statusFor(err error) (int, string) {
	switch errs.Kind(err) {
	case errs.ErrValidation:
		return http.StatusBadRequest, "validation"
	case errs.ErrNotFound:
		return http.StatusNotFound, "not_found"
	case errs.ErrConflict:
		return http.StatusConflict, "conflict"
	case errs.ErrPermission:
		return http.StatusForbidden, "permission"
	case errs.ErrDependency:
		return http.StatusBadGateway, "dependency"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
