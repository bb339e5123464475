package main

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestParseVec(t *testing.T) {
	tests := []struct {
		in      string
		want    r3.Vec
		wantErr bool
	}{
		{"1,2,3", r3.Vec{X: 1, Y: 2, Z: 3}, false},
		{" -0.5, 1e-3 ,0", r3.Vec{X: -0.5, Y: 1e-3}, false},
		{"1,2", r3.Vec{}, true},
		{"a,b,c", r3.Vec{}, true},
	}

	for _, tt := range tests {
		got, err := parseVec(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseVec(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseVec(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseInts(t *testing.T) {
	got, err := parseInts("10, 100,1000")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(got) != 3 || got[0] != 10 || got[2] != 1000 {
		t.Errorf("unexpected slices %v", got)
	}

	if got, err := parseInts(""); err != nil || got != nil {
		t.Errorf("empty list should be nil, got %v %v", got, err)
	}
	if _, err := parseInts("10,0"); err == nil {
		t.Error("expected error for zero slices")
	}
	if _, err := parseInts("ten"); err == nil {
		t.Error("expected error for non-numeric slices")
	}
}

func TestLoadScenario(t *testing.T) {
	configFile = ""

	sc, err := loadScenario(nil)
	if err != nil || sc.Name != "ring" {
		t.Fatalf("expected default ring scenario, got %v %v", sc, err)
	}

	sc, err = loadScenario([]string{"uniform_rod"})
	if err != nil || sc.Name != "uniform_rod" {
		t.Fatalf("expected uniform_rod, got %v %v", sc, err)
	}

	if _, err := loadScenario([]string{"nope"}); err == nil {
		t.Error("expected unknown preset error")
	}
}
