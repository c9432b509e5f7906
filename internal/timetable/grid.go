package timetable

import (
	"fmt"
	"math"
	"time"

	"github.com/noah-isme/timetable-api/internal/models"
)

// Window is the visible time range of a rendered day, e.g. 08:00-17:00.
type Window struct {
	Start models.Clock `json:"start"`
	End   models.Clock `json:"end"`
}

// DefaultWindow spans 08:00 to 17:00.
var DefaultWindow = Window{Start: 8 * 60, End: 17 * 60}

// NewWindow validates and builds a window.
func NewWindow(start, end models.Clock) (Window, error) {
	if err := ValidateTimeRange(start, end); err != nil {
		return Window{}, fmt.Errorf("invalid grid window: %w", err)
	}
	return Window{Start: start, End: end}, nil
}

// Span returns the window length in minutes.
func (w Window) Span() int {
	return int(w.End - w.Start)
}

// Placement locates a block inside a window, as percentages of its span.
type Placement struct {
	Position float64 `json:"position"`
	Width    float64 `json:"width"`
}

// Project maps [start,end] onto the window. Both values are clamped to
// [0,100]; a degenerate window yields a zero placement.
func Project(w Window, start, end models.Clock) Placement {
	return Placement{
		Position: w.Position(start),
		Width:    w.Width(start, end),
	}
}

// Position returns the offset of t as a percentage of the window.
func (w Window) Position(t models.Clock) float64 {
	span := w.Span()
	if span <= 0 {
		return 0
	}
	return clampPercent(float64(t-w.Start) / float64(span) * 100)
}

// Width returns the length of [start,end] as a percentage of the window.
func (w Window) Width(start, end models.Clock) float64 {
	span := w.Span()
	if span <= 0 {
		return 0
	}
	return clampPercent(float64(end-start) / float64(span) * 100)
}

// Visible reports whether any part of [start,end) falls inside the window.
func (w Window) Visible(start, end models.Clock) bool {
	return Overlaps(start, end, w.Start, w.End)
}

// Clip trims [start,end] to the window so the projected block never runs
// past the window edge.
func (w Window) Clip(start, end models.Clock) (models.Clock, models.Clock) {
	if start < w.Start {
		start = w.Start
	}
	if end > w.End {
		end = w.End
	}
	if end < start {
		end = start
	}
	return start, end
}

func clampPercent(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Tick is a labelled gridline.
type Tick struct {
	Label    string  `json:"label"`
	Position float64 `json:"position"`
}

// Ticks returns gridlines every step minutes from the window start, the
// window end included when it lands on a step.
func (w Window) Ticks(step int) []Tick {
	if step <= 0 || w.Span() <= 0 {
		return nil
	}
	ticks := make([]Tick, 0, w.Span()/step+1)
	for t := w.Start; t <= w.End; t += models.Clock(step) {
		ticks = append(ticks, Tick{Label: t.String(), Position: w.Position(t)})
	}
	return ticks
}

// Block is an occurrence placed on the grid. Lane separates occurrences
// that overlap in time so they can be drawn side by side.
type Block struct {
	Occurrence
	Placement
	Lane    int  `json:"lane"`
	Visible bool `json:"visible"`
}

// DayLayout is the renderable form of one day.
type DayLayout struct {
	Date   time.Time `json:"date"`
	Window Window    `json:"window"`
	Lanes  int       `json:"lanes"`
	Ticks  []Tick    `json:"ticks"`
	Blocks []Block   `json:"blocks"`
}

// LayoutDay projects the occurrences of a day onto the window and assigns
// lanes greedily: each block takes the lowest lane whose previous block has
// already ended. Blocks are clipped to the window before projection.
func LayoutDay(date time.Time, occurrences []Occurrence, w Window) DayLayout {
	items := append([]Occurrence(nil), occurrences...)
	sortOccurrences(items)

	var laneEnds []models.Clock
	blocks := make([]Block, 0, len(items))
	for _, o := range items {
		lane := -1
		for i, end := range laneEnds {
			if end <= o.StartTime {
				lane = i
				break
			}
		}
		if lane < 0 {
			lane = len(laneEnds)
			laneEnds = append(laneEnds, o.EndTime)
		} else {
			laneEnds[lane] = o.EndTime
		}

		start, end := w.Clip(o.StartTime, o.EndTime)
		blocks = append(blocks, Block{
			Occurrence: o,
			Placement:  Project(w, start, end),
			Lane:       lane,
			Visible:    w.Visible(o.StartTime, o.EndTime),
		})
	}

	return DayLayout{
		Date:   DateOf(date),
		Window: w,
		Lanes:  len(laneEnds),
		Ticks:  w.Ticks(60),
		Blocks: blocks,
	}
}
