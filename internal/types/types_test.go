package types

import (
	"errors"
	"testing"
)

func TestPredictionText(t *testing.T) {
	tests := []struct {
		name string
		p    Prediction
		want string
	}{
		{"recognized", Prediction{Status: Recognized, Name: "alice", Distance: 42.87}, "alice (42)"},
		{"unknown label", Prediction{Status: UnknownLabel, Label: 7, Distance: 10}, "Unknown"},
		{"failed", Prediction{Status: Failed, Err: errors.New("boom")}, "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.Text(); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPredictionStatusString(t *testing.T) {
	if Recognized.String() != "recognized" || UnknownLabel.String() != "unknown_label" || Failed.String() != "failed" {
		t.Error("unexpected status names")
	}
	if PredictionStatus(9).String() != "status(9)" {
		t.Errorf("got %q", PredictionStatus(9).String())
	}
}
