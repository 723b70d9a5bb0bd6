package financeiro

import (
	"context"
	"time"

	"github.com/imobgestor/api-imobiliaria/internal/utils"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EspecAtrasos roda o job logo após a meia-noite.
const EspecAtrasos = "5 0 * * *"

// JobAtrasos marca como ATRASADO o que venceu e não foi pago.
type JobAtrasos struct {
	DB         *gorm.DB
	Repository Repository
	Local      *time.Location
	Logger     *zap.Logger

	agora func() time.Time
}

func NewJobAtrasos(db *gorm.DB, loc *time.Location, logger *zap.Logger) *JobAtrasos {
	return &JobAtrasos{DB: db, Repository: NewRepository(), Local: loc, Logger: logger, agora: time.Now}
}

func (j *JobAtrasos) Executar(ctx context.Context) (int64, error) {
	hoje := utils.InicioDoDia(j.agora(), j.Local)
	n, err := j.Repository.MarcarAtrasadas(j.DB.WithContext(ctx), hoje)
	if err != nil {
		j.Logger.Error("marcar transações atrasadas", zap.Error(err))
		return 0, err
	}
	if n > 0 {
		j.Logger.Info("transações marcadas como atrasadas", zap.Int64("quantidade", n))
	}
	return n, nil
}

// Agendar executa uma vez agora e registra a execução diária no cron.
func (j *JobAtrasos) Agendar(ctx context.Context, c *cron.Cron) (cron.EntryID, error) {
	_, _ = j.Executar(ctx)
	return c.AddFunc(EspecAtrasos, func() {
		_, _ = j.Executar(ctx)
	})
}
