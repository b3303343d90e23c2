package main

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/iafilius/LeituraViewer/cmd/leituraviewer/uihelpers"
	"github.com/iafilius/LeituraViewer/src/leitura"
	"github.com/iafilius/LeituraViewer/src/plot"
	"github.com/iafilius/LeituraViewer/src/session"
)

// view is what the controller needs from the window. The fyne implementation lives in main.go.
type view interface {
	SetStatus(text string)
	SetFile(path string)
	ShowError(err error)
	ShowInfo(title, message string)
	ShowChart(img image.Image)
	ChartSize() (int, int)
}

// filterForm carries the raw text of the four filter fields.
type filterForm struct {
	StartDate, StartTime string
	EndDate, EndTime     string
}

var errInvertedRange = errors.New("Fim antes do início")

// shown in the chart area until something is plotted
const placeholderText = "Abra um arquivo .db e aplique um filtro"

type controller struct {
	sess   *session.Session
	ui     view
	logger *slog.Logger
	loc    *time.Location

	// last plotted kind, re-rendered when the window is resized
	lastKind *plot.Kind
}

func newController(sess *session.Session, ui view, logger *slog.Logger, loc *time.Location) *controller {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.Local
	}
	return &controller{sess: sess, ui: ui, logger: logger, loc: loc}
}

func (c *controller) open(path string) {
	if path == "" {
		return
	}
	c.ui.SetFile(path)
	res, err := c.sess.Load(path)
	if err != nil {
		// the dataset behind the current chart is gone
		c.lastKind = nil
		w, h := c.ui.ChartSize()
		c.ui.ShowChart(plot.Placeholder(w, h, placeholderText))
		c.ui.ShowError(fmt.Errorf("Erro ao consultar tabela: %w", err))
	} else if res.Skipped > 0 {
		c.logger.Warn("rows ignored", "path", path, "skipped", res.Skipped)
	}
	c.ui.SetStatus(c.sess.Status())
}

func (c *controller) reload() {
	c.open(c.sess.Path())
}

func (c *controller) applyFilter(f filterForm) {
	startDay, err := uihelpers.ParseDateField(f.StartDate, c.loc)
	if err != nil {
		c.ui.ShowError(err)
		return
	}
	startClock, err := uihelpers.ParseClockField(f.StartTime)
	if err != nil {
		c.ui.ShowError(err)
		return
	}
	endDay, err := uihelpers.ParseDateField(f.EndDate, c.loc)
	if err != nil {
		c.ui.ShowError(err)
		return
	}
	endClock, err := uihelpers.ParseClockField(f.EndTime)
	if err != nil {
		c.ui.ShowError(err)
		return
	}

	if _, err := c.sess.ApplyFilter(startDay, startClock, endDay, endClock); err != nil {
		var inv *leitura.RangeInversionError
		if errors.As(err, &inv) {
			c.ui.ShowError(errInvertedRange)
			return
		}
		c.ui.ShowError(err)
		return
	}
	sum := c.sess.Summary()
	c.logger.Info("filter applied", "records", sum.Records, "first", sum.First, "last", sum.Last)
	c.ui.SetStatus(c.sess.Status())
}

func (c *controller) plot(kind plot.Kind) {
	fig, err := c.sess.Plot(kind)
	if errors.Is(err, leitura.ErrNoData) {
		c.ui.ShowInfo("Sem dados", "Nenhum registro")
		return
	}
	if err != nil {
		c.ui.ShowError(err)
		return
	}
	if err := c.render(fig); err != nil {
		c.logger.Error("render chart", "kind", kind, "error", err)
		c.ui.ShowError(err)
		return
	}
	k := kind
	c.lastKind = &k
}

// redraw re-renders the last chart at the current size without raising dialogs.
func (c *controller) redraw() {
	if c.lastKind == nil {
		return
	}
	fig, err := c.sess.Plot(*c.lastKind)
	if err != nil {
		return
	}
	if err := c.render(fig); err != nil {
		c.logger.Debug("redraw failed", "kind", *c.lastKind, "error", err)
	}
}

func (c *controller) render(fig plot.Figure) error {
	w, h := c.ui.ChartSize()
	img, err := plot.Render(fig, w, h)
	if err != nil {
		return err
	}
	c.ui.ShowChart(img)
	return nil
}
