package views

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"visionlab/internal/viewmodel"
)

func TestGamePageEscapesStatement(t *testing.T) {
	var buf bytes.Buffer
	err := GamePage(viewmodel.GamePage{Title: "game", Statement: `<script>alert("x")</script>`, DurationSec: 180, RemainingSec: 180}).Render(context.Background(), &buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, `<script>alert`) {
		t.Fatalf("statement was not escaped")
	}
	if !strings.Contains(out, "&lt;script&gt;") {
		t.Fatalf("escaped statement missing")
	}
}

func TestSimulatorPageStages(t *testing.T) {
	var buf bytes.Buffer
	data := viewmodel.SimulatorPage{
		Title:       "sim",
		LensModes:   []viewmodel.LensModeOption{{Value: "manual", Label: "Manual lens", Selected: true}},
		Stages:      []viewmodel.StageRow{{Lens: "Eye lens", PowerD: 59.8, Image: "real", Position: "+17.000 mm from the eye lens"}},
		QueryString: "error_d=1&lens_mode=manual",
	}
	if err := SimulatorPage(data).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"+59.80 D", `canvas=detail&amp;error_d=1&amp;lens_mode=manual`, `<option value="manual" selected>`} {
		if !strings.Contains(out, want) {
			t.Fatalf("output lacks %q", want)
		}
	}
}

func TestLayoutWrapsPage(t *testing.T) {
	var buf bytes.Buffer
	if err := HomePage(viewmodel.HomePage{Title: "a & b"}).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"<!doctype html>", "<title>a &amp; b</title>", "<main><h1>a &amp; b</h1>", "</main></body></html>"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output lacks %q", want)
		}
	}
}

func TestSimulatorPageFormState(t *testing.T) {
	var buf bytes.Buffer
	data := viewmodel.SimulatorPage{
		Title:          "sim",
		InherentErrorD: 1.5,
		Relaxed:        true,
		HasObjectImage: true,
	}
	if err := SimulatorPage(data).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`name="error_d" step="0.25" value="1.5"`,
		`value="on" checked>`,
		`name="clear" value="1"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output lacks %q", want)
		}
	}
}
