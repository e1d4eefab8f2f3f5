package websocket

import (
	"context"
	"errors"
	"fmt"

	apierrors "github.com/fran-as/millDischargeDashboard/internal/errors"
	"github.com/fran-as/millDischargeDashboard/internal/infrastructure"
	"github.com/fran-as/millDischargeDashboard/internal/selector"
	"github.com/fran-as/millDischargeDashboard/internal/services"
	"github.com/fran-as/millDischargeDashboard/pkg/contracts/domain"
	"github.com/fran-as/millDischargeDashboard/pkg/contracts/events"
)

// Error codes sent in error messages
const (
	codeInvalidMessage  = "INVALID_MESSAGE"
	codeUnknownCommand  = "UNKNOWN_COMMAND"
	codeNotLoaded       = "NOT_LOADED"
	codeDataUnavailable = "DATA_UNAVAILABLE"
	codeNoData          = "NO_DATA"
	codeUnknownGroup    = "UNKNOWN_GROUP"
	codeUnknownColumn   = "UNKNOWN_COLUMN"
	codeInvalidRange    = "INVALID_RANGE"
	codeSameColumn      = "SAME_COLUMN"
	codeTooFewColumns   = "TOO_FEW_COLUMNS"
	codeInternal        = "INTERNAL_ERROR"
)

// dispatcher applies commands to a session. It is shared by all clients
// and holds no per-session state.
type dispatcher struct {
	sessions  SessionFactory
	validator StructValidator
	metrics   *infrastructure.DashboardMetrics
}

func (d *dispatcher) handle(ctx context.Context, s *selector.Session, cmd events.Command) (events.MessageType, interface{}, error) {
	if err := d.validator.ValidateStruct(cmd); err != nil {
		return "", nil, err
	}

	switch cmd.Type {
	case events.CommandLoad:
		if err := s.Load(ctx); err != nil {
			return "", nil, err
		}

	case events.CommandSelectGroup:
		if err := s.SelectGroup(cmd.Group); err != nil {
			return "", nil, err
		}

	case events.CommandSetRange:
		if err := setRange(s, cmd.Start, cmd.End); err != nil {
			return "", nil, err
		}

	case events.CommandSetColumns:
		if err := s.SetColumns(cmd.Columns); err != nil {
			return "", nil, err
		}

	case events.CommandSetPair:
		if err := s.SetPair(cmd.X, cmd.Y); err != nil {
			return "", nil, err
		}

	case events.CommandSeries:
		view, err := s.Series()
		if err != nil {
			d.metrics.RecordView(ctx, "series", s.Selection().Group, 0, err)
			return "", nil, err
		}
		series := services.NewSeriesView(view.Selection, view.Table)
		d.metrics.RecordView(ctx, "series", series.Group, len(series.Rows), nil)
		return events.MessageTypeSeries, series, nil

	case events.CommandScatter:
		view, err := s.Scatter()
		if err != nil {
			d.metrics.RecordView(ctx, "scatter", s.Selection().Group, 0, err)
			return "", nil, err
		}
		scatter := services.NewScatterView(view.Selection, view.Table, view.Points)
		d.metrics.RecordView(ctx, "scatter", scatter.Group, len(scatter.Points), nil)
		return events.MessageTypeScatter, scatter, nil

	case events.CommandState:

	default:
		return "", nil, &commandError{code: codeUnknownCommand, message: fmt.Sprintf("unknown command %q", cmd.Type), cause: errUnknownCommand}
	}

	return events.MessageTypeState, selectionState(s), nil
}

// setRange applies start and end, defaulting missing bounds to the table's
// first and last timestamps.
func setRange(s *selector.Session, start, end string) error {
	snap, err := s.Snapshot()
	if err != nil {
		return err
	}
	w, err := services.ParseWindow(start, end)
	if err != nil {
		return &commandError{code: codeInvalidRange, message: "invalid start or end", cause: err}
	}
	rng, err := w.Resolve(snap.Table)
	if err != nil {
		return err
	}
	return s.SetRange(rng.Start, rng.End)
}

func selectionState(s *selector.Session) domain.SelectionState {
	sel := s.Selection()
	return domain.SelectionState{
		Loaded:  s.State() == selector.StateLoaded,
		Group:   sel.Group,
		Range:   domain.DateWindow{Start: sel.Range.Start, End: sel.Range.End},
		Columns: sel.Columns,
		X:       sel.X,
		Y:       sel.Y,
	}
}

// errorPayload maps command failures onto protocol error codes. Only a
// table that cannot be loaded is fatal to the session.
func errorPayload(err error) events.ErrorPayload {
	var cmdErr *commandError
	if errors.As(err, &cmdErr) {
		return events.ErrorPayload{Code: cmdErr.code, Message: cmdErr.Error(), Details: cmdErr.details}
	}

	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		return events.ErrorPayload{Code: apiErr.ErrorCode, Message: apiErr.Message, Details: apiErr.Details}
	}

	var loadErr *selector.DataLoadError
	if errors.As(err, &loadErr) {
		return events.ErrorPayload{Code: codeDataUnavailable, Message: err.Error(), Fatal: true}
	}

	code := codeInternal
	switch {
	case errors.Is(err, selector.ErrNotLoaded):
		code = codeNotLoaded
	case errors.Is(err, selector.ErrUnknownGroup):
		code = codeUnknownGroup
	case errors.Is(err, selector.ErrUnknownColumn):
		code = codeUnknownColumn
	case errors.Is(err, selector.ErrInvalidDateRange):
		code = codeInvalidRange
	case errors.Is(err, selector.ErrSameColumn):
		code = codeSameColumn
	case errors.Is(err, selector.ErrTooFewColumns):
		code = codeTooFewColumns
	case errors.Is(err, selector.ErrEmptyTable):
		code = codeNoData
	default:
		return events.ErrorPayload{Code: code, Message: "unexpected error"}
	}
	return events.ErrorPayload{Code: code, Message: err.Error()}
}
