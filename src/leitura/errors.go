package leitura

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoData is returned when a plot is requested for an empty filtered selection.
var ErrNoData = errors.New("nenhum registro no intervalo selecionado")

// DataAccessError reports a failure opening or querying the readings store.
type DataAccessError struct {
	Path string
	Op   string // "open", "query" or "scan"
	Err  error
}

func (e *DataAccessError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *DataAccessError) Unwrap() error { return e.Err }

// RangeInversionError reports a filter whose end precedes its start.
type RangeInversionError struct {
	Start time.Time
	End   time.Time
}

func (e *RangeInversionError) Error() string {
	return fmt.Sprintf("fim (%s) antes do início (%s)", e.End.Format(LayoutSeconds), e.Start.Format(LayoutSeconds))
}
