package timetable

import (
	"time"

	"github.com/google/uuid"
)

// Occurrence — одно занятие в ячейке календаря.
type Occurrence struct {
	ClassID  uuid.UUID `json:"classId"`
	Name     string    `json:"name"`
	TimeSlot string    `json:"timeSlot"`
	Override bool      `json:"override"`
}

// MonthView — индекс «число месяца -> занятия» для отрисовки календаря.
type MonthView struct {
	Year  int                  `json:"year"`
	Month time.Month           `json:"month"`
	Days  map[int][]Occurrence `json:"days"`
}

// BuildMonth прогоняет каждое занятие через ResolveForDate по всем датам
// месяца. Занятие с пустым базовым правилом всё равно может попасть в индекс —
// через To разового переноса. Функция чистая, порядок занятий в ячейке
// повторяет порядок classes.
func BuildMonth(classes []ClassSchedule, year int, month time.Month, loc *time.Location) MonthView {
	if loc == nil {
		loc = time.UTC
	}

	view := MonthView{
		Year:  year,
		Month: month,
		Days:  make(map[int][]Occurrence),
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	daysInMonth := first.AddDate(0, 1, -1).Day()

	for day := 1; day <= daysInMonth; day++ {
		date := time.Date(year, month, day, 0, 0, 0, 0, loc)
		for _, c := range classes {
			res := ResolveForDate(c.Schedule, c.Window, c.Reschedules, date)
			if !res.Occurs {
				continue
			}
			view.Days[day] = append(view.Days[day], Occurrence{
				ClassID:  c.ID,
				Name:     c.Name,
				TimeSlot: res.TimeSlot,
				Override: res.Override,
			})
		}
	}

	return view
}
