package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/iafilius/LeituraViewer/src/config"
	"github.com/iafilius/LeituraViewer/src/leitura"
	"github.com/iafilius/LeituraViewer/src/session"
	"github.com/iafilius/LeituraViewer/src/store"
)

type app struct {
	cfg    config.Config
	logger *slog.Logger
	loc    *time.Location

	file string
}

func (a *app) loadSession() (*session.Session, error) {
	if a.file == "" {
		return nil, errors.New("no database: pass --file or set LEITURA_DB")
	}
	sess := session.New(session.StoreLoader(store.Options{
		Logger:   a.logger,
		SQLDebug: a.cfg.SQLDebug,
		Location: a.loc,
	}), a.logger)
	if _, err := sess.Load(a.file); err != nil {
		return nil, err
	}
	return sess, nil
}

func setupCommands(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "leiturareader",
		Short:         "Inspect a leitura sensor database from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&a.file, "file", "f", a.cfg.DBPath, "SQLite database with a leitura table")

	// load and report the record count
	countCmd := &cobra.Command{
		Use:   "count",
		Short: "Load the database and print how many readings were read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.loadSession()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, sess.Status())
			if sess.Skipped() > 0 {
				fmt.Fprintf(out, "%d registros ignorados (datahora inválida)\n", sess.Skipped())
			}
			return nil
		},
	}

	// min/avg/max per field over a range
	var from, to string
	var asJSON bool
	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Print min/avg/max per measurement, optionally within --from/--to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.loadSession()
			if err != nil {
				return err
			}
			records := []leitura.Record(sess.Dataset())
			if from != "" || to != "" {
				if err := a.applyRange(sess, from, to); err != nil {
					return err
				}
				records = sess.Filtered()
			}
			sum := leitura.Summarize(records)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(jsonSummary(sum))
			}
			printSummary(cmd.OutOrStdout(), sum)
			return nil
		},
	}
	summaryCmd.Flags().StringVar(&from, "from", "", "range start, dd/mm/yyyy HH:MM (minute resolution)")
	summaryCmd.Flags().StringVar(&to, "to", "", "range end, dd/mm/yyyy HH:MM (minute resolution, whole minute included)")
	summaryCmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")

	rootCmd.AddCommand(countCmd)
	rootCmd.AddCommand(summaryCmd)

	return rootCmd
}

// applyRange filters sess by --from/--to. A missing bound falls back to the dataset's first or last
// timestamp.
func (a *app) applyRange(sess *session.Session, from, to string) error {
	all := leitura.Summarize(sess.Dataset())
	start, end := all.First, all.Last
	var err error
	if from != "" {
		if start, err = parseBound(from, a.loc); err != nil {
			return fmt.Errorf("--from: %w", err)
		}
	}
	if to != "" {
		if end, err = parseBound(to, a.loc); err != nil {
			return fmt.Errorf("--to: %w", err)
		}
	}
	if start.IsZero() || end.IsZero() {
		return leitura.ErrNoData
	}
	_, err = sess.ApplyFilter(start, clockOf(start), end, clockOf(end))
	return err
}

// parseBound reads a --from/--to value. Ranges have minute resolution, so a bound with non-zero
// seconds is refused rather than rounded.
func parseBound(s string, loc *time.Location) (time.Time, error) {
	t, err := leitura.ParseTimestampIn(s, loc)
	if err != nil {
		return time.Time{}, err
	}
	if t.Second() != 0 {
		return time.Time{}, fmt.Errorf("%q: ranges have minute resolution, use dd/mm/yyyy HH:MM", s)
	}
	return t, nil
}

func clockOf(t time.Time) leitura.Clock {
	return leitura.Clock{Hour: t.Hour(), Minute: t.Minute()}
}

func printSummary(w io.Writer, s leitura.Summary) {
	fmt.Fprintf(w, "Registros: %d\n", s.Records)
	if s.Records == 0 {
		return
	}
	fmt.Fprintf(w, "Período: %s .. %s\n", s.First.Format(leitura.LayoutSeconds), s.Last.Format(leitura.LayoutSeconds))

	headers := []string{"Campo", "N", "Mín", "Méd", "Máx"}
	rows := [][]string{
		statsRow("Temperatura", s.Temperature),
		statsRow("Umidade", s.Humidity),
		statsRow("Temp_CPU", s.CPUTemperature),
	}
	printTable(w, headers, rows)
}

// jsonSummary replaces NaN statistics, which encoding/json rejects, with zero-count entries.
func jsonSummary(s leitura.Summary) leitura.Summary {
	for _, st := range []*leitura.FieldStats{&s.Temperature, &s.Humidity, &s.CPUTemperature} {
		if st.Count == 0 {
			*st = leitura.FieldStats{}
		}
	}
	return s
}

func statsRow(name string, st leitura.FieldStats) []string {
	return []string{name, fmt.Sprintf("%d", st.Count), formatValue(st.Min), formatValue(st.Avg), formatValue(st.Max)}
}

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.2f", v)
}

func printTable(w io.Writer, headers []string, rows [][]string) {
	colWidths := make([]int, len(headers))
	for i, header := range headers {
		colWidths[i] = len([]rune(header))
	}
	for _, row := range rows {
		for i, cell := range row {
			if n := len([]rune(cell)); n > colWidths[i] {
				colWidths[i] = n
			}
		}
	}

	line := func(cells []string) {
		parts := make([]string, len(cells))
		for i, c := range cells {
			parts[i] = c + strings.Repeat(" ", colWidths[i]-len([]rune(c)))
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " "))
	}
	line(headers)
	for _, row := range rows {
		line(row)
	}
}
