package main

import (
	"flag"
	"image"
	"log/slog"
	"os"
	"time"

	fyne "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"github.com/iafilius/LeituraViewer/cmd/leituraviewer/uihelpers"
	"github.com/iafilius/LeituraViewer/src/config"
	"github.com/iafilius/LeituraViewer/src/leitura"
	"github.com/iafilius/LeituraViewer/src/logging"
	"github.com/iafilius/LeituraViewer/src/plot"
	"github.com/iafilius/LeituraViewer/src/session"
	"github.com/iafilius/LeituraViewer/src/store"
)

var version = "dev"

const (
	windowW    = 900
	windowH    = 600
	controlsW  = 250
	pathBudget = 40
)

// fyneView implements view on top of the main window.
type fyneView struct {
	window    fyne.Window
	status    *widget.Label
	fileLabel *widget.Label
	chart     *canvas.Image
}

func (v *fyneView) SetStatus(text string) { v.status.SetText(text) }

func (v *fyneView) SetFile(path string) {
	v.fileLabel.SetText(uihelpers.TruncatePath(path, pathBudget))
}

func (v *fyneView) ShowError(err error) { dialog.ShowError(err, v.window) }

func (v *fyneView) ShowInfo(title, message string) {
	dialog.ShowInformation(title, message, v.window)
}

func (v *fyneView) ShowChart(img image.Image) {
	v.chart.Image = img
	v.chart.Refresh()
}

func (v *fyneView) ChartSize() (int, int) {
	sz := v.chart.Size()
	if sz.Width <= 0 || sz.Height <= 0 {
		cs := v.window.Canvas().Size()
		sz = fyne.NewSize(cs.Width*(1-float32(controlsW)/windowW), cs.Height-40)
	}
	return uihelpers.ComputeChartDimensions(sz.Width, sz.Height)
}

func main() {
	var fileFlag string
	flag.StringVar(&fileFlag, "file", "", "SQLite database with a leitura table")
	flag.Parse()

	cfg, err := config.Load(".env")
	if err != nil {
		logging.Errorf("config: %v", err)
		os.Exit(1)
	}
	logger := logging.New(cfg, version, "leituraviewer")
	slog.SetDefault(logger)

	path := cfg.DBPath
	if fileFlag != "" {
		path = fileFlag
	}

	logging.Infof("leituraviewer %s starting, db=%q", version, path)

	sess := session.New(session.StoreLoader(store.Options{Logger: logger, SQLDebug: cfg.SQLDebug}), logger)

	a := app.NewWithID("com.leitura.viewer")
	w := a.NewWindow("Leitura Viewer")
	w.Resize(fyne.NewSize(windowW, windowH))

	ui := &fyneView{
		window:    w,
		status:    widget.NewLabel(""),
		fileLabel: widget.NewLabel("Nenhum arquivo"),
		chart:     canvas.NewImageFromImage(plot.Placeholder(640, 540, placeholderText)),
	}
	ui.chart.FillMode = canvas.ImageFillContain
	ui.chart.SetMinSize(fyne.NewSize(480, 320))
	ctrl := newController(sess, ui, logger, time.Local)

	// filter form, defaulting to today 12:00 -> 20:00
	today := uihelpers.FormatDateField(time.Now())
	startDate := newField(today, uihelpers.ValidateDateField)
	endDate := newField(today, uihelpers.ValidateDateField)
	startTime := newField(uihelpers.FormatClockField(leitura.Clock{Hour: 12}), uihelpers.ValidateClockField)
	endTime := newField(uihelpers.FormatClockField(leitura.Clock{Hour: 20}), uihelpers.ValidateClockField)
	filterGrid := container.NewGridWithColumns(3,
		widget.NewLabel("Início:"), startDate, startTime,
		widget.NewLabel("Fim:"), endDate, endTime,
	)
	applyBtn := widget.NewButton("Aplicar filtro", func() {
		ctrl.applyFilter(filterForm{
			StartDate: startDate.Text, StartTime: startTime.Text,
			EndDate: endDate.Text, EndTime: endTime.Text,
		})
	})

	plotButtons := container.NewVBox()
	for _, k := range plot.Kinds() {
		k := k
		plotButtons.Add(widget.NewButton(k.Title(), func() { ctrl.plot(k) }))
	}

	controls := container.NewVBox(
		widget.NewButton("Abrir .db", func() { openFileDialog(w, ctrl) }),
		ui.fileLabel,
		widget.NewCard("", "Filtro Data/Hora", filterGrid),
		applyBtn,
		widget.NewCard("", "Gráficos", plotButtons),
	)
	split := container.NewHSplit(container.NewVScroll(controls), ui.chart)
	split.Offset = uihelpers.SplitOffset(controlsW, windowW)
	w.SetContent(container.NewBorder(nil, ui.status, nil, nil, split))

	buildMenus(w, ctrl)
	watchResize(w, ctrl)

	if path != "" {
		ctrl.open(path)
	}

	w.ShowAndRun()
}

func newField(text string, validate fyne.StringValidator) *widget.Entry {
	e := widget.NewEntry()
	e.SetText(text)
	e.Validator = validate
	return e
}

func buildMenus(w fyne.Window, ctrl *controller) {
	fileMenu := fyne.NewMenu("Arquivo",
		fyne.NewMenuItem("Abrir…", func() { openFileDialog(w, ctrl) }),
		fyne.NewMenuItem("Recarregar", ctrl.reload),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Sair", func() { w.Close() }),
	)
	w.SetMainMenu(fyne.NewMainMenu(fileMenu))

	canv := w.Canvas()
	if canv != nil {
		canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyO, Modifier: fyne.KeyModifierSuper}, func(fyne.Shortcut) { openFileDialog(w, ctrl) })
		canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyO, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) { openFileDialog(w, ctrl) })
		canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyR, Modifier: fyne.KeyModifierSuper}, func(fyne.Shortcut) { ctrl.reload() })
		canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyR, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) { ctrl.reload() })
		canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyW, Modifier: fyne.KeyModifierSuper}, func(fyne.Shortcut) { w.Close() })
		canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyW, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) { w.Close() })
	}
}

// openFileDialog asks for a .db/.sqlite file starting in the home directory.
func openFileDialog(w fyne.Window, ctrl *controller) {
	d := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil {
			logging.Warnf("open dialog: %v", err)
			return
		}
		if rc == nil {
			return
		}
		path := rc.URI().Path()
		_ = rc.Close()
		ctrl.open(path)
	}, w)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".db", ".sqlite"}))
	if home, err := os.UserHomeDir(); err == nil {
		if l, err := storage.ListerForURI(storage.NewFileURI(home)); err == nil {
			d.SetLocation(l)
		}
	}
	d.Show()
}

// watchResize re-renders the current chart when the window width or height changes.
func watchResize(w fyne.Window, ctrl *controller) {
	if w.Canvas() == nil {
		return
	}
	prev := w.Canvas().Size()
	done := make(chan struct{})
	w.SetOnClosed(func() { close(done) })
	go func() {
		t := time.NewTicker(300 * time.Millisecond)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				c := w.Canvas()
				if c == nil {
					continue
				}
				sz := c.Size()
				if int(sz.Width) != int(prev.Width) || int(sz.Height) != int(prev.Height) {
					prev = sz
					logging.Debugf("window resized to %.0fx%.0f", sz.Width, sz.Height)
					fyne.Do(ctrl.redraw)
				}
			}
		}
	}()
}
