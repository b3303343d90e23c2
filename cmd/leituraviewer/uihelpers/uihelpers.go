package uihelpers

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/iafilius/LeituraViewer/src/leitura"
)

// Layouts of the filter form fields.
const (
	DateFieldLayout  = "02/01/2006"
	ClockFieldLayout = "15:04"
)

// ComputeChartDimensions clamps the size of the plot area to something go-chart lays out well.
// A zero area (window not shown yet) falls back to the default plot pane of a 900x600 window.
func ComputeChartDimensions(areaW, areaH float32) (int, int) {
	w, h := int(areaW), int(areaH)
	if w <= 0 || h <= 0 {
		w, h = 640, 540
	}
	if w < 480 {
		w = 480
	}
	if h < 320 {
		h = 320
	}
	if h > 1400 {
		h = 1400
	}
	return w, h
}

// SplitOffset converts a desired left pane width into the fractional offset used by a split
// container, clamped to [0.1, 0.9].
func SplitOffset(leftW, totalW float32) float64 {
	if totalW <= 0 {
		return 0.5
	}
	off := float64(leftW / totalW)
	if off < 0.1 {
		off = 0.1
	}
	if off > 0.9 {
		off = 0.9
	}
	return off
}

// ParseDateField reads a dd/mm/yyyy form field as midnight in loc.
func ParseDateField(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	v := strings.TrimSpace(s)
	for _, layout := range []string{DateFieldLayout, "2/1/2006"} {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("data inválida %q (use dd/mm/aaaa)", s)
}

// ParseClockField reads an HH:MM form field.
func ParseClockField(s string) (leitura.Clock, error) {
	v := strings.TrimSpace(s)
	h, m, ok := strings.Cut(v, ":")
	if ok {
		hh, errH := strconv.Atoi(h)
		mm, errM := strconv.Atoi(m)
		if errH == nil && errM == nil && len(m) == 2 && hh >= 0 && hh <= 23 && mm >= 0 && mm <= 59 {
			return leitura.Clock{Hour: hh, Minute: mm}, nil
		}
	}
	return leitura.Clock{}, fmt.Errorf("hora inválida %q (use HH:MM)", s)
}

func FormatDateField(t time.Time) string { return t.Format(DateFieldLayout) }

func FormatClockField(c leitura.Clock) string { return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute) }

// ValidateDateField and ValidateClockField fit fyne's Entry.Validator.
func ValidateDateField(s string) error {
	_, err := ParseDateField(s, time.Local)
	return err
}

func ValidateClockField(s string) error {
	_, err := ParseClockField(s)
	return err
}

// TruncatePath shortens p to about n characters, always keeping the file name.
func TruncatePath(p string, n int) string {
	if len(p) <= n {
		return p
	}
	base := filepath.Base(p)
	if len(base)+4 >= n {
		return "..." + base
	}
	dir := filepath.Dir(p)
	left := n - len(base) - 4
	if len(dir) > left {
		dir = dir[:left]
	}
	return dir + "/..." + base
}
