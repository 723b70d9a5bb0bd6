package utils

import (
	"strings"
	"time"
)

const LayoutData = "2006-01-02"

// ParseData aceita "AAAA-MM-DD" (no fuso informado) ou RFC3339.
func ParseData(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(LayoutData, s, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, NovoErrValidacao("data inválida: %q", s)
	}
	return t.In(loc), nil
}

// InicioDoDia zera o horário de t no fuso loc.
func InicioDoDia(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// PeriodoDoMes devolve [primeiro dia do mês, primeiro dia do mês seguinte).
func PeriodoDoMes(t time.Time, loc *time.Location) (time.Time, time.Time) {
	t = t.In(loc)
	ini := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
	return ini, ini.AddDate(0, 1, 0)
}
