package timetable

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidTimeRange = errors.New("end time must be after start time")
	ErrNoDaysSelected   = errors.New("at least one day must be selected")
	ErrScheduleConflict = errors.New("time range clashes with another class on one or more selected days")
)

// Токены дней недели — ровно те значения, что хранит бэкенд.
// Никакой локализации на этом уровне.
const (
	Monday    = "MONDAY"
	Tuesday   = "TUESDAY"
	Wednesday = "WEDNESDAY"
	Thursday  = "THURSDAY"
	Friday    = "FRIDAY"
	Saturday  = "SATURDAY"
	Sunday    = "SUNDAY"
)

// Индекс в таблице соответствует WeekdayIndex: понедельник = 0.
var weekdayTokens = [7]string{
	Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday,
}

// WeeklySchedule — недельное правило повторения занятия:
// набор дней недели плюс один дневной слот "HH:MM - HH:MM".
type WeeklySchedule struct {
	Days     []string
	TimeSlot string
}

// ClassWindow — период активности занятия. Обе границы включительные,
// nil означает отсутствие ограничения с этой стороны.
type ClassWindow struct {
	Start *time.Time
	End   *time.Time
}

// Reschedule — разовый перенос: занятие с даты From уходит на дату To
// со слотом TimeSlot. From == To означает смену только времени.
type Reschedule struct {
	From     time.Time
	To       time.Time
	TimeSlot string
}

// ClassSchedule — расписание одного занятия глазами календарной логики.
// Значение только читается; мутации живут на уровне репозиториев.
type ClassSchedule struct {
	ID          uuid.UUID
	Name        string
	Schedule    WeeklySchedule
	Window      ClassWindow
	Reschedules []Reschedule
}

// Normalize обнуляет время суток, оставляя календарную дату.
func Normalize(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// SameDay сравнивает два момента как календарные дни.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// WeekdayIndex возвращает индекс дня недели, понедельник = 0 .. воскресенье = 6.
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// WeekdayToken возвращает токен дня недели для даты.
func WeekdayToken(t time.Time) string {
	return weekdayTokens[WeekdayIndex(t)]
}

// ParseTimeToMinutes разбирает "H:MM" или "HH:MM" в минуты от полуночи.
// На мусорном вводе возвращает ok = false, а не ошибку: нечитаемое время
// трактуется потребителями как «ограничения нет». Значения вне суток
// ("25:00", "12:60") тоже отбрасываются — такие данные считаются мусором,
// а не валидным временем.
func ParseTimeToMinutes(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, false
	}
	h, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	m, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// SlotTimes — разобранный слот в минутах от полуночи.
type SlotTimes struct {
	Start int
	End   int
}

// Usable сообщает, пригоден ли слот для проверок пересечений:
// слот должен разобраться и End должен быть строго больше Start.
func (s *SlotTimes) Usable() bool {
	return s != nil && s.End > s.Start
}

// ParseSlot разбирает строку вида "16:00 - 17:00". Ровно один разделитель "-";
// nil на любом отклонении. Частично мигрированные данные не должны ронять
// отрисовку календаря, поэтому здесь нет ошибок.
func ParseSlot(slot string) *SlotTimes {
	parts := strings.Split(slot, "-")
	if len(parts) != 2 {
		return nil
	}
	start, ok := ParseTimeToMinutes(parts[0])
	if !ok {
		return nil
	}
	end, ok := ParseTimeToMinutes(parts[1])
	if !ok {
		return nil
	}
	return &SlotTimes{Start: start, End: end}
}

// OccursOn отвечает, попадает ли дата под недельное правило занятия.
// Пустой набор дней — занятие не запланировано, правило никогда не срабатывает.
func OccursOn(sched WeeklySchedule, win ClassWindow, date time.Time) bool {
	if len(sched.Days) == 0 {
		return false
	}
	day := Normalize(date)
	if win.Start != nil && day.Before(Normalize(*win.Start)) {
		return false
	}
	if win.End != nil && day.After(Normalize(*win.End)) {
		return false
	}
	token := WeekdayToken(date)
	for _, d := range sched.Days {
		if d == token {
			return true
		}
	}
	return false
}

// Resolution — итог занятия на конкретную дату после наложения переносов.
type Resolution struct {
	Occurs   bool
	TimeSlot string
	Override bool
}

// ResolveForDate накладывает разовые переносы на недельное правило.
// Приоритет:
//  1. дата совпала с To какого-то переноса — занятие есть, слот из переноса;
//  2. дата совпала с From переноса, уводящего занятие на другой день, —
//     занятия нет, базовое правило на эту дату гасится;
//  3. иначе — чистое недельное правило.
//
// Список переносов append-only, поэтому при нескольких записях на одну дату
// побеждает последняя (самая свежая). Уникальность по дате обязана
// обеспечивать граница ввода данных.
func ResolveForDate(sched WeeklySchedule, win ClassWindow, reschedules []Reschedule, date time.Time) Resolution {
	for i := len(reschedules) - 1; i >= 0; i-- {
		if SameDay(reschedules[i].To, date) {
			return Resolution{Occurs: true, TimeSlot: reschedules[i].TimeSlot, Override: true}
		}
	}
	for _, r := range reschedules {
		if SameDay(r.From, date) && !SameDay(r.To, r.From) {
			return Resolution{}
		}
	}
	if OccursOn(sched, win, date) {
		return Resolution{Occurs: true, TimeSlot: sched.TimeSlot}
	}
	return Resolution{}
}

// HasConflict проверяет, пересекается ли предлагаемое расписание
// [days, startMin..endMin) с другими занятиями из classes. Занятие exclude
// (редактируемое) выкидывается до любых сравнений. Занятия без дней или
// с нечитаемым слотом конфликтов не дают.
//
// Вызывающий обязан заранее проверить startMin < endMin — это пользовательская
// ошибка ввода, а не забота детектора.
func HasConflict(classes []ClassSchedule, exclude uuid.UUID, days []string, startMin, endMin int) bool {
	for _, c := range classes {
		if c.ID == exclude {
			continue
		}
		if len(c.Schedule.Days) == 0 {
			continue
		}
		if !sharesDay(c.Schedule.Days, days) {
			continue
		}
		other := ParseSlot(c.Schedule.TimeSlot)
		if !other.Usable() {
			continue
		}
		// Полуоткрытые интервалы: строгое <, стык «впритык» — не конфликт.
		if max(startMin, other.Start) < min(endMin, other.End) {
			return true
		}
	}
	return false
}

func sharesDay(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

// FormatOccurrence форматирует занятие на дату в человекочитаемую строку
// для журналов и уведомлений, например "Algebra I: 2024-06-05, 16:00 - 17:00".
func FormatOccurrence(name string, date time.Time, slot string) string {
	if slot == "" {
		return fmt.Sprintf("%s: %s", name, date.Format("2006-01-02"))
	}
	return fmt.Sprintf("%s: %s, %s", name, date.Format("2006-01-02"), slot)
}
