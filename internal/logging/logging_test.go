package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    logrus.Level
		wantErr bool
	}{
		{"debug", logrus.DebugLevel, false},
		{"INFO", logrus.InfoLevel, false},
		{"warn", logrus.WarnLevel, false},
		{"", logrus.WarnLevel, false},
		{" error ", logrus.ErrorLevel, false},
		{"verbose", logrus.WarnLevel, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSilence_RestoresOutput(t *testing.T) {
	var buf bytes.Buffer
	prevOut, prevLevel := Log.Out, Log.GetLevel()
	defer func() {
		Log.SetOutput(prevOut)
		Log.SetLevel(prevLevel)
	}()

	Log.SetOutput(&buf)
	Log.SetLevel(logrus.InfoLevel)

	restore := Silence()
	Log.Info("hidden")
	restore()
	Log.Info("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("output %q contains a line logged while silenced", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("output %q missing line logged after restore", out)
	}
}

func TestSilence_KeepsDebugOutput(t *testing.T) {
	var buf bytes.Buffer
	prevOut, prevLevel := Log.Out, Log.GetLevel()
	defer func() {
		Log.SetOutput(prevOut)
		Log.SetLevel(prevLevel)
	}()

	Log.SetOutput(&buf)
	Log.SetLevel(logrus.DebugLevel)

	restore := Silence()
	Log.Debug("visible")
	restore()

	if buf.Len() == 0 {
		t.Error("debug output was discarded")
	}
}
