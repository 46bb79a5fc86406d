package game

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Schedule é a tabela diária fixa de fechamento das baajis.
// Os horários são de relógio de parede na timezone do jogo, não UTC.
type Schedule struct {
	loc   *time.Location
	times []closeTime
}

type closeTime struct {
	hour, min int
}

// ParseSchedule interpreta a lista "HH:MM,HH:MM,..." na ordem das rodadas
func ParseSchedule(spec string, loc *time.Location) (Schedule, error) {
	if loc == nil {
		loc = time.Local
	}
	parts := strings.Split(spec, ",")
	if len(parts) == 0 {
		return Schedule{}, fmt.Errorf("empty schedule")
	}

	times := make([]closeTime, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		hm := strings.Split(p, ":")
		if len(hm) != 2 {
			return Schedule{}, fmt.Errorf("invalid close time %q", p)
		}
		h, err := strconv.Atoi(hm[0])
		if err != nil || h < 0 || h > 23 {
			return Schedule{}, fmt.Errorf("invalid close time %q", p)
		}
		m, err := strconv.Atoi(hm[1])
		if err != nil || m < 0 || m > 59 {
			return Schedule{}, fmt.Errorf("invalid close time %q", p)
		}
		times = append(times, closeTime{hour: h, min: m})
	}
	return Schedule{loc: loc, times: times}, nil
}

// Slots devolve quantas rodadas o dia comporta
func (s Schedule) Slots() int { return len(s.times) }

// Location é a timezone de referência do jogo
func (s Schedule) Location() *time.Location { return s.loc }

// DateKey devolve a data de calendário do instante na timezone do jogo
func (s Schedule) DateKey(t time.Time) string {
	return t.In(s.loc).Format("2006-01-02")
}

// CloseAt devolve o horário de fechamento da rodada seq (1..Slots)
// na data do instante informado
func (s Schedule) CloseAt(t time.Time, seq int) (time.Time, error) {
	if seq < 1 || seq > len(s.times) {
		return time.Time{}, fmt.Errorf("sequence %d out of schedule", seq)
	}
	ct := s.times[seq-1]
	local := t.In(s.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), ct.hour, ct.min, 0, 0, s.loc), nil
}
