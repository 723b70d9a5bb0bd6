package dashboard

import (
	"net/http"
	"time"

	"github.com/imobgestor/api-imobiliaria/internal/auth"
	"github.com/imobgestor/api-imobiliaria/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	Service *Service
	Logger  *zap.Logger
}

func NewHandler(db *gorm.DB, loc *time.Location, logger *zap.Logger) *Handler {
	return &Handler{Service: NewService(db, loc), Logger: logger}
}

// GET /dashboard/resumo
func (h *Handler) Resumo(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	res, err := h.Service.Resumo(r.Context(), sessao.EmpresaID)
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	utils.WriteJSON(w, http.StatusOK, res)
}
