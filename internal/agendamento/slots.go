package agendamento

import (
	"fmt"
	"strings"
	"time"

	"github.com/imobgestor/api-imobiliaria/internal/utils"
)

const (
	LayoutHorario = "15:04"

	primeiroHorario = 6 * 60
	ultimoHorario   = 22 * 60
	intervalo       = 30
)

// Horarios lista os horários de visita do dia: 06:00 a 22:00, de meia em meia hora.
func Horarios() []string {
	lista := make([]string, 0, (ultimoHorario-primeiroHorario)/intervalo+1)
	for m := primeiroHorario; m <= ultimoHorario; m += intervalo {
		lista = append(lista, fmt.Sprintf("%02d:%02d", m/60, m%60))
	}
	return lista
}

// Disponiveis tira da grade do dia os horários ocupados e os que já
// passaram (inclusive o horário corrente).
func Disponiveis(dia time.Time, ocupados []string, agora time.Time, loc *time.Location) []string {
	base := utils.InicioDoDia(dia, loc)
	bloqueado := make(map[string]bool, len(ocupados))
	for _, h := range ocupados {
		bloqueado[strings.TrimSpace(h)] = true
	}
	livres := []string{}
	for m := primeiroHorario; m <= ultimoHorario; m += intervalo {
		slot := base.Add(time.Duration(m) * time.Minute)
		h := slot.Format(LayoutHorario)
		if bloqueado[h] || !slot.After(agora) {
			continue
		}
		livres = append(livres, h)
	}
	return livres
}

// Ocupados formata os horários das visitas já marcadas.
func Ocupados(datas []time.Time, loc *time.Location) []string {
	vistos := map[string]bool{}
	lista := []string{}
	for _, d := range datas {
		h := d.In(loc).Format(LayoutHorario)
		if !vistos[h] {
			vistos[h] = true
			lista = append(lista, h)
		}
	}
	return lista
}

// ParseDataHora aceita "AAAA-MM-DDTHH:MM" no fuso local ou RFC3339.
func ParseDataHora(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02T15:04", "2006-01-02 15:04"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, utils.NovoErrValidacao("dataHora inválida: %q", s)
	}
	return t.In(loc), nil
}

func contem(lista []string, h string) bool {
	for _, v := range lista {
		if v == h {
			return true
		}
	}
	return false
}
