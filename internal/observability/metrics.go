package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics agrupa as métricas Prometheus da API.
// Cada instância tem registry próprio, então pode ser criada várias vezes em testes.
type Metrics struct {
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	operacoes       *prometheus.CounterVec
	uploads         *prometheus.CounterVec
	eventos         *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "imob_http_request_duration_seconds",
				Help:    "Duração das requisições HTTP por rota.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		operacoes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "imob_operacoes_total",
				Help: "Operações de negócio concluídas (fechamento, estorno, promocao_lead...).",
			},
			[]string{"operacao"},
		),
		uploads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "imob_uploads_total",
				Help: "Arquivos recebidos por destino e resultado.",
			},
			[]string{"destino", "resultado"},
		),
		eventos: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "imob_eventos_total",
				Help: "Eventos publicados no barramento interno.",
			},
			[]string{"tipo"},
		),
	}
}

// IncOperacao incrementa o contador de uma operação de negócio.
func (m *Metrics) IncOperacao(operacao string) {
	if m == nil {
		return
	}
	m.operacoes.WithLabelValues(operacao).Inc()
}

// IncUpload registra o resultado de um upload ("ok" ou "erro").
func (m *Metrics) IncUpload(destino, resultado string) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(destino, resultado).Inc()
}

// IncEvento registra um evento publicado.
func (m *Metrics) IncEvento(tipo string) {
	if m == nil {
		return
	}
	m.eventos.WithLabelValues(tipo).Inc()
}

// Handler expõe o registry em /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Middleware mede a duração por template de rota do mux.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "desconhecida"
		if cr := mux.CurrentRoute(r); cr != nil {
			if tpl, err := cr.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requestDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}
