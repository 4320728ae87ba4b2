package normalize

import (
	"errors"
	"strings"
	"testing"
	"time"

	"trading-truth-lab/internal/domain"
)

func TestRead_ExecutionLog(t *testing.T) {
	input := `ticker,date,action,price,qty
AAPL,2024-03-01 10:00:00,BUY,10,100
AAPL,2024-03-02 10:00:00,SELL,12,100
`
	res, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Format != FormatExecutionLog {
		t.Errorf("expected execution log format, got %s", res.Format)
	}
	if len(res.Executions) != 2 {
		t.Fatalf("expected 2 executions, got %d", len(res.Executions))
	}
	if res.Executions[0].Side != domain.SideBuy || res.Executions[1].Side != domain.SideSell {
		t.Errorf("unexpected sides: %+v", res.Executions)
	}
	if res.Executions[0].Row != 2 || res.Executions[1].Row != 3 {
		t.Errorf("expected input row numbers preserved, got %d and %d",
			res.Executions[0].Row, res.Executions[1].Row)
	}
	if res.DroppedRows != 0 {
		t.Errorf("expected no drops, got %d", res.DroppedRows)
	}
}

func TestRead_PairedFormat(t *testing.T) {
	input := `ticker,entry_date,entry_price,exit_date,exit_price,qty
AAPL,2024-03-01,10,2024-03-02,12,100
msft,2024-03-05,200,2024-03-08,190,50
`
	res, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Format != FormatPaired {
		t.Errorf("expected paired format, got %s", res.Format)
	}
	if len(res.Trades) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(res.Trades))
	}
	if res.Trades[1].Ticker != "MSFT" {
		t.Errorf("expected uppercased ticker, got %q", res.Trades[1].Ticker)
	}
	if res.Trades[0].TradeID == "" || res.Trades[0].TradeID == res.Trades[1].TradeID {
		t.Error("expected distinct non-empty trade IDs")
	}
}

func TestRead_HeaderNormalization(t *testing.T) {
	input := ` Ticker , Entry Date ,Entry Price, Exit Date , Exit Price
AAPL,2024-03-01,10,2024-03-02,12
`
	res, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(res.Trades))
	}
	if res.Trades[0].Quantity != 1 {
		t.Errorf("expected default qty 1 without a qty column, got %f", res.Trades[0].Quantity)
	}
}

func TestRead_MalformedRowsDroppedWithWarnings(t *testing.T) {
	input := `ticker,date,action,price,qty
AAPL,2024-03-01,BUY,10,100
AAPL,not-a-date,BUY,10,100
AAPL,2024-03-02,HOLD,10,100
AAPL,2024-03-03,SELL,abc,100
,2024-03-04,SELL,10,100
AAPL,2024-03-05,SELL,12,100
`
	res, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Executions) != 2 {
		t.Errorf("expected 2 surviving executions, got %d", len(res.Executions))
	}
	if res.DroppedRows != 4 {
		t.Errorf("expected 4 dropped rows, got %d", res.DroppedRows)
	}
	if len(res.Warnings) != 4 {
		t.Errorf("expected 4 warnings, got %v", res.Warnings)
	}
}

func TestRead_ExitBeforeEntryDropped(t *testing.T) {
	input := `ticker,entry_date,entry_price,exit_date,exit_price
AAPL,2024-03-10,10,2024-03-01,12
`
	_, err := Read(strings.NewReader(input))
	if !errors.Is(err, ErrNoRows) {
		t.Errorf("expected ErrNoRows after dropping the only row, got %v", err)
	}
}

func TestRead_MissingRequiredColumn(t *testing.T) {
	input := `ticker,date,action,price
AAPL,2024-03-01,BUY,10
`
	if _, err := Read(strings.NewReader(input)); err == nil {
		t.Error("expected an error for a missing qty column")
	}
}

func TestRead_TimestampsNormalizedToUTC(t *testing.T) {
	input := `ticker,date,action,price,qty
AAPL,2024-03-01T10:00:00+04:00,BUY,10,100
`
	res, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC)
	if !res.Executions[0].Timestamp.Equal(want) {
		t.Errorf("expected %v, got %v", want, res.Executions[0].Timestamp)
	}
	if res.Executions[0].Timestamp.Location() != time.UTC {
		t.Error("expected UTC location")
	}
}
