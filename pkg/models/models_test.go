package models

import (
	"testing"
	"time"
)

func TestCompressionRatio(t *testing.T) {
	tests := []struct {
		name      string
		original  int64
		optimized int64
		want      float64
	}{
		{"half size", 1000, 500, 50},
		{"no change", 1000, 1000, 0},
		{"grew", 1000, 1100, -10},
		{"zero original", 0, 100, 0},
		{"empty output", 1000, 0, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CompressionRatio(tt.original, tt.optimized); got != tt.want {
				t.Errorf("CompressionRatio(%d, %d) = %v, want %v", tt.original, tt.optimized, got, tt.want)
			}
		})
	}
}

func TestBatchStatusExitCode(t *testing.T) {
	tests := []struct {
		status BatchStatus
		want   int
	}{
		{StatusCompleted, 0},
		{StatusPartial, 1},
		{StatusCancelled, 3},
		{BatchStatus("bogus"), 2},
	}

	for _, tt := range tests {
		if got := tt.status.ExitCode(); got != tt.want {
			t.Errorf("%q.ExitCode() = %d, want %d", tt.status, got, tt.want)
		}
	}
}

func TestBatchProgressDerived(t *testing.T) {
	p := &BatchProgress{
		TotalFiles:         10,
		CompletedFiles:     4,
		SuccessCount:       3,
		ErrorCount:         1,
		TotalOriginalSize:  1000,
		TotalOptimizedSize: 600,
		BytesProcessed:     1200,
		StartTime:          time.Now().Add(-2 * time.Second),
	}

	if got := p.ProgressPercentage(); got != 40 {
		t.Errorf("ProgressPercentage() = %v, want 40", got)
	}
	if got := p.TotalCompressionRatio(); got != 40 {
		t.Errorf("TotalCompressionRatio() = %v, want 40", got)
	}
	if p.ElapsedTime() <= 0 {
		t.Error("ElapsedTime() <= 0")
	}
	if p.RemainingTime() <= 0 {
		t.Error("RemainingTime() <= 0 with files outstanding")
	}
	if p.ProcessingSpeed() <= 0 {
		t.Error("ProcessingSpeed() <= 0")
	}
	if p.BytesPerSecond() <= 0 {
		t.Error("BytesPerSecond() <= 0")
	}
}

func TestBatchProgressZeroValues(t *testing.T) {
	p := &BatchProgress{}

	if got := p.ProgressPercentage(); got != 0 {
		t.Errorf("ProgressPercentage() = %v, want 0", got)
	}
	if got := p.RemainingTime(); got != 0 {
		t.Errorf("RemainingTime() = %v, want 0", got)
	}
	if got := p.ElapsedTime(); got != 0 {
		t.Errorf("ElapsedTime() = %v, want 0 before start", got)
	}
	if got := p.ProcessingSpeed(); got != 0 {
		t.Errorf("ProcessingSpeed() = %v, want 0", got)
	}
}

func TestBatchReportTotals(t *testing.T) {
	r := &BatchReport{
		TotalOriginalSize:  2000,
		TotalOptimizedSize: 500,
	}
	if got := r.TotalCompressionRatio(); got != 75 {
		t.Errorf("TotalCompressionRatio() = %v, want 75", got)
	}
}
