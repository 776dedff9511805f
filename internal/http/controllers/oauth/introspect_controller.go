package oauth

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/dropDatabas3/hellojohn-introspect/internal/audit"
	"github.com/dropDatabas3/hellojohn-introspect/internal/auth"
	dto "github.com/dropDatabas3/hellojohn-introspect/internal/http/dto/oauth"
	httperrors "github.com/dropDatabas3/hellojohn-introspect/internal/http/errors"
	svc "github.com/dropDatabas3/hellojohn-introspect/internal/http/services/oauth"
	"github.com/dropDatabas3/hellojohn-introspect/internal/metrics"
	"github.com/dropDatabas3/hellojohn-introspect/internal/observability/logger"
	"go.uber.org/zap"
)

// maxBodyBytes acota el body de /oauth/introspect.
const maxBodyBytes = 64 << 10

// IntrospectController handles POST /oauth/introspect (RFC 7662).
type IntrospectController struct {
	service      svc.IntrospectService
	auth         auth.Authenticator
	exposeDetail bool
}

// NewIntrospectController creates a new introspect controller. exposeDetail
// controls whether 500 bodies carry the diagnostic detail (never in prod).
func NewIntrospectController(service svc.IntrospectService, authenticator auth.Authenticator, exposeDetail bool) *IntrospectController {
	return &IntrospectController{
		service:      service,
		auth:         authenticator,
		exposeDetail: exposeDetail,
	}
}

// Introspect authenticates the caller and reports whether the token is active.
// Caller auth failures use the authenticator's own response; every
// content-level problem is {"active": false} with 200.
func (c *IntrospectController) Introspect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("IntrospectController.Introspect"))

	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed, false)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	caller, authErr := c.auth.Authenticate(r)
	if authErr != nil {
		log.Debug("caller authentication failed", zap.String("code", authErr.Code))
		metrics.RecordOutcome(metrics.OutcomeUnauthorized)
		claimed, _, _ := r.BasicAuth()
		audit.Introspection(ctx, claimed, metrics.OutcomeUnauthorized, "")
		authErr.Write(w)
		return
	}
	log = log.With(logger.Caller(caller.ClientID))

	req, err := readIntrospectRequest(r)
	if err != nil {
		log.Debug("unreadable introspection body", logger.Err(err))
		c.writeInactive(w, r, caller)
		return
	}

	if req.EffectiveHint() != dto.TokenTypeAccessToken {
		log.Debug("unsupported token_type_hint", zap.String("hint", req.TokenTypeHint))
		c.writeInactive(w, r, caller)
		return
	}
	if req.Token == "" {
		log.Debug("token parameter missing")
		c.writeInactive(w, r, caller)
		return
	}

	resp, err := c.service.Introspect(ctx, req.Token)
	if err != nil {
		log.Error("introspection failed", logger.Err(err))
		metrics.RecordOutcome(metrics.OutcomeError)
		audit.Introspection(ctx, caller.ClientID, metrics.OutcomeError, "")
		httperrors.WriteError(w, httperrors.FromError(err), c.exposeDetail)
		return
	}
	if resp == nil {
		c.writeInactive(w, r, caller)
		return
	}

	metrics.RecordOutcome(metrics.OutcomeActive)
	audit.Introspection(ctx, caller.ClientID, metrics.OutcomeActive, fmt.Sprint(resp.Jti))
	writeJSON(w, resp)
}

func (c *IntrospectController) writeInactive(w http.ResponseWriter, r *http.Request, caller *auth.Caller) {
	metrics.RecordOutcome(metrics.OutcomeInactive)
	audit.Introspection(r.Context(), caller.ClientID, metrics.OutcomeInactive, "")
	writeJSON(w, dto.Inactive())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}

// readIntrospectRequest lee token y token_type_hint de un body JSON o
// form-encoded. HintPresent distingue un hint ausente de uno vacío.
func readIntrospectRequest(r *http.Request) (dto.IntrospectRequest, error) {
	var req dto.IntrospectRequest

	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt == "application/json" {
		var body map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && err != io.EOF {
			return req, err
		}
		if raw, ok := body["token"]; ok {
			// Un token que no es string no es un token.
			_ = json.Unmarshal(raw, &req.Token)
		}
		if raw, ok := body["token_type_hint"]; ok {
			req.HintPresent = true
			_ = json.Unmarshal(raw, &req.TokenTypeHint)
		}
		return req, nil
	}

	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.Token = r.PostForm.Get("token")
	if hints, ok := r.PostForm["token_type_hint"]; ok {
		req.HintPresent = true
		if len(hints) > 0 {
			req.TokenTypeHint = hints[0]
		}
	}
	return req, nil
}
