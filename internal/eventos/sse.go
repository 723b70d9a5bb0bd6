package eventos

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/imobgestor/api-imobiliaria/internal/auth"
	"github.com/imobgestor/api-imobiliaria/internal/utils"
	"go.uber.org/zap"
)

// SSEHandler transmite os eventos da empresa logada (GET /eventos).
type SSEHandler struct {
	Bus       *Bus
	Logger    *zap.Logger
	Heartbeat time.Duration
}

func (h *SSEHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessao, ok := auth.SessaoDe(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "não autenticado")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.WriteError(w, http.StatusInternalServerError, "streaming não suportado")
		return
	}

	heartbeat := h.Heartbeat
	if heartbeat <= 0 {
		heartbeat = 25 * time.Second
	}

	sub := h.Bus.Assinar(sessao.EmpresaID)
	defer sub.Cancelar()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	h.Logger.Debug("sse conectado", zap.Uint("empresaId", sessao.EmpresaID), zap.Uint("usuarioId", sessao.UsuarioID))

	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	var seq uint64
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				h.Logger.Error("serializar evento", zap.Error(err))
				continue
			}
			seq++
			if _, err := fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", seq, ev.Tipo, data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
