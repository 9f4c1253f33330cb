package render

import (
	"bytes"
	"fmt"
	"image/color"
	"sort"
	"sync"

	"github.com/Freeeeeet/slot_planner/internal/calendar"
	"github.com/Freeeeeet/slot_planner/internal/model"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontStyle определяет стиль шрифта
type FontStyle string

const (
	FontStyleDefault FontStyle = ""
	FontStyleBold    FontStyle = "bold"
)

// Константы размеров и отступов
const (
	imageWidth       = 1400
	headerHeight     = 110
	footerHeight     = 60
	leftLabelsWidth  = 150
	rowHeight        = 72
	minRows          = 4
	cellPadding      = 6.0
	slotBorderRadius = 6.0
	shadowOffset     = 3.0
	totalDaysInWeek  = 7
	maxCellTextRunes = 18
)

// Константы шрифтов
const (
	titleFontSize      = 28.0
	dayFontSize        = 22.0
	rowLabelFontSize   = 17.0
	cellTitleFontSize  = 16.0
	cellDetailFontSize = 13.0
	legendItemFontSize = 13.0
)

// Цветовая схема
var (
	bgColor         = color.RGBA{245, 246, 248, 255}
	textColor       = color.RGBA{80, 85, 90, 220}
	rowLabelColor   = color.RGBA{110, 115, 120, 220}
	gridLineColor   = color.NRGBA{150, 150, 150, 255}
	todayBgColor    = color.NRGBA{255, 99, 71, 90}
	evenDayColor    = color.NRGBA{240, 240, 240, 255}
	oddDayColor     = color.NRGBA{228, 228, 228, 255}
	fixedSlotColor  = color.RGBA{190, 205, 225, 230}
	reservedColor   = color.RGBA{255, 182, 193, 255}
	cellTextColor   = color.RGBA{20, 24, 28, 230}
	reservedText    = color.RGBA{120, 40, 50, 255}
	slotShadowColor = color.RGBA{0, 0, 0, 20}
	legendItemColor = color.RGBA{70, 74, 78, 220}
)

var weekdayShort = [totalDaysInWeek]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Board данные для отрисовки одной ISO-недели
type Board struct {
	Year         int
	Week         int
	Today        calendar.Date
	FixedSlots   []*model.FixedSlot
	Reservations []*model.Reservation
}

// cell содержимое одной ячейки (день x слот)
type cell struct {
	subject  string
	name     string
	reserved bool
	fixed    bool
}

var (
	fontsMu     sync.Mutex
	cachedFonts = make(map[FontStyle]*opentype.Font)
)

// loadFont ставит Go-шрифт нужного размера или basicfont как fallback
func loadFont(dc *gg.Context, size float64, style FontStyle) {
	fontsMu.Lock()
	parsed, ok := cachedFonts[style]
	if !ok {
		data := goregular.TTF
		if style == FontStyleBold {
			data = gobold.TTF
		}
		var err error
		parsed, err = opentype.Parse(data)
		if err != nil {
			parsed = nil
		}
		cachedFonts[style] = parsed
	}
	fontsMu.Unlock()

	if parsed != nil {
		face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err == nil {
			dc.SetFontFace(face)
			return
		}
	}
	dc.SetFontFace(basicfont.Face7x13)
}

// GenerateWeekBoard рисует PNG недели: столбцы пн..вс, строки = слоты по времени начала
func GenerateWeekBoard(board Board) ([]byte, error) {
	monday, sunday := calendar.ResolveISOWeek(board.Year, board.Week)
	week := calendar.Range{Start: monday, End: sunday}

	rows := collectTimeSlots(board)
	cells := buildCells(board, week, rows)

	rowCount := len(rows)
	if rowCount < minRows {
		rowCount = minRows
	}
	imageHeight := headerHeight + rowCount*rowHeight + footerHeight
	dayWidth := (imageWidth - leftLabelsWidth) / totalDaysInWeek

	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetColor(bgColor)
	dc.Clear()

	drawHeader(dc, board, week)
	drawDayColumns(dc, week, board.Today, dayWidth, rowCount)
	drawRowLabels(dc, rows)
	drawGrid(dc, dayWidth, rowCount)
	drawCells(dc, cells, rows, dayWidth)
	drawLegend(dc, imageHeight)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// collectTimeSlots собирает все различные слоты недели, упорядоченные по времени начала;
// слоты без разбираемого времени идут в конце в лексикографическом порядке
func collectTimeSlots(board Board) []string {
	seen := make(map[string]bool)
	var slots []string

	add := func(slot string) {
		if !seen[slot] {
			seen[slot] = true
			slots = append(slots, slot)
		}
	}
	for _, s := range board.FixedSlots {
		add(s.TimeSlot)
	}
	for _, r := range board.Reservations {
		add(r.TimeSlot)
	}

	sort.SliceStable(slots, func(i, j int) bool {
		mi, okI := model.SlotStartMinutes(slots[i])
		mj, okJ := model.SlotStartMinutes(slots[j])
		switch {
		case okI && okJ && mi != mj:
			return mi < mj
		case okI != okJ:
			return okI
		default:
			return slots[i] < slots[j]
		}
	})
	return slots
}

func buildCells(board Board, week calendar.Range, rows []string) map[int]map[string]*cell {
	cells := make(map[int]map[string]*cell, totalDaysInWeek)
	get := func(day int, slot string) *cell {
		if cells[day] == nil {
			cells[day] = make(map[string]*cell, len(rows))
		}
		c, ok := cells[day][slot]
		if !ok {
			c = &cell{}
			cells[day][slot] = c
		}
		return c
	}

	for _, s := range board.FixedSlots {
		c := get(s.DayOfWeek, s.TimeSlot)
		c.fixed = true
		c.subject = s.SubjectOrEmpty()
	}
	for _, r := range board.Reservations {
		if !week.Contains(r.Date) {
			continue
		}
		c := get(r.Date.ISOWeekday()-1, r.TimeSlot)
		c.reserved = true
		c.name = r.Name
	}
	return cells
}

// drawHeader рисует заголовок с номером недели и диапазоном дат
func drawHeader(dc *gg.Context, board Board, week calendar.Range) {
	title := fmt.Sprintf("Week %d, %d  ·  %s – %s",
		board.Week, board.Year,
		week.Start.Format("02.01"), week.End.Format("02.01.2006"))

	loadFont(dc, titleFontSize, FontStyleBold)
	dc.SetColor(textColor)
	dc.DrawStringAnchored(title, float64(leftLabelsWidth), float64(headerHeight)/3, 0, 0.5)
}

// drawDayColumns рисует фон и заголовки дней
func drawDayColumns(dc *gg.Context, week calendar.Range, today calendar.Date, dayWidth, rowCount int) {
	top := float64(headerHeight)
	height := float64(rowCount * rowHeight)

	for day := 0; day < totalDaysInWeek; day++ {
		date := week.Start.AddDays(day)
		x := float64(leftLabelsWidth + day*dayWidth)

		switch {
		case date.Equal(today):
			dc.SetColor(todayBgColor)
		case day%2 == 0:
			dc.SetColor(evenDayColor)
		default:
			dc.SetColor(oddDayColor)
		}
		dc.DrawRectangle(x, top, float64(dayWidth), height)
		dc.Fill()

		loadFont(dc, dayFontSize, FontStyleBold)
		dc.SetColor(textColor)
		label := weekdayShort[day] + " " + date.Format("02.01")
		dc.DrawStringAnchored(label, x+float64(dayWidth)/2, top-18, 0.5, 0.5)
	}
}

// drawRowLabels рисует подписи слотов слева
func drawRowLabels(dc *gg.Context, rows []string) {
	loadFont(dc, rowLabelFontSize, FontStyleDefault)
	dc.SetColor(rowLabelColor)

	for i, slot := range rows {
		y := float64(headerHeight) + float64(i)*rowHeight + rowHeight/2
		dc.DrawStringAnchored(truncate(slot, maxCellTextRunes), float64(leftLabelsWidth)-12, y, 1, 0.5)
	}
}

// drawGrid рисует горизонтальные линии строк
func drawGrid(dc *gg.Context, dayWidth, rowCount int) {
	dc.SetLineWidth(0.4)
	dc.SetColor(gridLineColor)

	left := float64(leftLabelsWidth)
	right := float64(leftLabelsWidth + totalDaysInWeek*dayWidth)
	for i := 0; i <= rowCount; i++ {
		y := float64(headerHeight + i*rowHeight)
		dc.DrawLine(left, y, right, y)
		dc.Stroke()
	}
}

// drawCells рисует занятые ячейки: бронь поверх постоянного предмета
func drawCells(dc *gg.Context, cells map[int]map[string]*cell, rows []string, dayWidth int) {
	for row, slot := range rows {
		for day := 0; day < totalDaysInWeek; day++ {
			c := cells[day][slot]
			if c == nil || (!c.fixed && !c.reserved) {
				continue
			}
			x := float64(leftLabelsWidth+day*dayWidth) + cellPadding
			y := float64(headerHeight+row*rowHeight) + cellPadding
			drawCell(dc, c, x, y, float64(dayWidth)-2*cellPadding, rowHeight-2*cellPadding)
		}
	}
}

func drawCell(dc *gg.Context, c *cell, x, y, w, h float64) {
	fill := fixedSlotColor
	fg := cellTextColor
	if c.reserved {
		fill = reservedColor
		fg = reservedText
	}

	// Тень
	dc.SetColor(slotShadowColor)
	dc.DrawRoundedRectangle(x+shadowOffset, y+shadowOffset, w, h, slotBorderRadius)
	dc.Fill()

	dc.SetColor(fill)
	dc.DrawRoundedRectangle(x, y, w, h, slotBorderRadius)
	dc.Fill()

	dc.SetColor(darkenColor(fill, 0.8))
	dc.SetLineWidth(1)
	dc.DrawRoundedRectangle(x, y, w, h, slotBorderRadius)
	dc.Stroke()

	title := c.subject
	detail := ""
	if c.reserved {
		title = c.name
		detail = c.subject
	}

	loadFont(dc, cellTitleFontSize, FontStyleBold)
	dc.SetColor(fg)
	dc.DrawStringAnchored(truncate(title, maxCellTextRunes), x+8, y+20, 0, 0)

	if detail != "" {
		loadFont(dc, cellDetailFontSize, FontStyleDefault)
		dc.DrawStringAnchored(truncate(detail, maxCellTextRunes), x+8, y+40, 0, 0)
	}
}

// drawLegend рисует легенду внизу
func drawLegend(dc *gg.Context, imageHeight int) {
	items := []struct {
		label string
		clr   color.Color
	}{
		{"Fixed slot", fixedSlotColor},
		{"Reservation", reservedColor},
	}

	x := float64(leftLabelsWidth)
	y := float64(imageHeight-footerHeight) + 22
	loadFont(dc, legendItemFontSize, FontStyleDefault)

	for _, item := range items {
		dc.SetColor(item.clr)
		dc.DrawRoundedRectangle(x, y, 20, 14, 3)
		dc.Fill()

		dc.SetColor(legendItemColor)
		dc.DrawStringAnchored(item.label, x+28, y+8, 0, 0.35)
		x += 160
	}
}

// darkenColor затемняет цвет на указанный множитель
func darkenColor(c color.RGBA, factor float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
		A: c.A,
	}
}

// truncate обрезает строку по рунам
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
