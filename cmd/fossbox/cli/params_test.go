// Copyright 2026 The Fossbox Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestBindFlags_BasicTypes(t *testing.T) {
	type params struct {
		Name     string        `flag:"name" desc:"the name"`
		Verbose  bool          `flag:"verbose,v" desc:"enable verbose output"`
		Count    int           `flag:"count" desc:"number of items"`
		Offset   int64         `flag:"offset" desc:"byte offset"`
		Rate     float64       `flag:"rate" desc:"sampling rate"`
		Timeout  time.Duration `flag:"timeout" desc:"request timeout"`
		Tags     []string      `flag:"tags" desc:"tag list"`
		Untagged string        // no flag tag, skipped
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}

	err := flagSet.Parse([]string{
		"--name", "alice",
		"-v",
		"--count", "42",
		"--offset", "1099511627776",
		"--rate", "0.95",
		"--timeout", "30s",
		"--tags", "a,b,c",
	})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if p.Name != "alice" {
		t.Errorf("Name = %q, want %q", p.Name, "alice")
	}
	if !p.Verbose {
		t.Error("Verbose = false, want true")
	}
	if p.Count != 42 {
		t.Errorf("Count = %d, want 42", p.Count)
	}
	if p.Offset != 1099511627776 {
		t.Errorf("Offset = %d, want 1099511627776", p.Offset)
	}
	if p.Rate != 0.95 {
		t.Errorf("Rate = %f, want 0.95", p.Rate)
	}
	if p.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", p.Timeout)
	}
	if !reflect.DeepEqual(p.Tags, []string{"a", "b", "c"}) {
		t.Errorf("Tags = %v, want [a b c]", p.Tags)
	}
	if p.Untagged != "" {
		t.Errorf("Untagged = %q, want empty (should be skipped)", p.Untagged)
	}
}

func TestBindFlags_Defaults(t *testing.T) {
	type params struct {
		Host    string        `flag:"host" desc:"server host" default:"localhost"`
		Port    int           `flag:"port" desc:"server port" default:"8080"`
		Rate    float64       `flag:"rate" desc:"rate" default:"0.5"`
		Timeout time.Duration `flag:"timeout" desc:"timeout" default:"10s"`
		Debug   bool          `flag:"debug" desc:"debug mode" default:"true"`
		Tags    []string      `flag:"tags" desc:"tags" default:"x,y"`
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}
	if err := flagSet.Parse(nil); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if p.Host != "localhost" || p.Port != 8080 || p.Rate != 0.5 || p.Timeout != 10*time.Second || !p.Debug {
		t.Errorf("defaults not applied: %+v", p)
	}
	if !reflect.DeepEqual(p.Tags, []string{"x", "y"}) {
		t.Errorf("Tags = %v, want [x y]", p.Tags)
	}
}

func TestBindFlags_Embedded(t *testing.T) {
	type Limits struct {
		CPUs float64 `flag:"cpus" desc:"cpu cores" default:"1"`
	}
	type params struct {
		Limits
		DryRun bool `flag:"dry-run" desc:"print the plan"`
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}
	if err := flagSet.Parse([]string{"--cpus", "4", "--dry-run"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.CPUs != 4 || !p.DryRun {
		t.Errorf("params = %+v", p)
	}
}

func TestBindFlags_Errors(t *testing.T) {
	var notPointer struct{}
	if err := BindFlags(notPointer, pflag.NewFlagSet("test", pflag.ContinueOnError)); err == nil {
		t.Error("expected error for non-pointer params")
	}

	type badDefault struct {
		Count int `flag:"count" default:"lots"`
	}
	if err := BindFlags(&badDefault{}, pflag.NewFlagSet("test", pflag.ContinueOnError)); err == nil {
		t.Error("expected error for unparseable default")
	}

	type unsupported struct {
		Ratio float32 `flag:"ratio"`
	}
	err := BindFlags(&unsupported{}, pflag.NewFlagSet("test", pflag.ContinueOnError))
	if err == nil || !strings.Contains(err.Error(), "unsupported type") {
		t.Errorf("expected unsupported type error, got %v", err)
	}
}

func TestFlagsFromParams_PanicsOnInvalidParams(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("FlagsFromParams did not panic")
		}
	}()
	FlagsFromParams("test", "not a struct")
}

func TestSetDefault(t *testing.T) {
	type params struct {
		CPUs    float64       `flag:"cpus" default:"1"`
		Memory  string        `flag:"memory" default:"1G"`
		Timeout int           `flag:"timeout"`
		Grace   time.Duration `flag:"grace" default:"10s"`
		Quiet   bool          `flag:"quiet"`
		Save    []string      `flag:"save"`
	}

	var p params
	flagSet := FlagsFromParams("test", &p)

	for name, value := range map[string]any{
		"cpus":    2.5,
		"memory":  "4G",
		"timeout": 300,
		"grace":   3 * time.Second,
		"quiet":   true,
		"save":    []string{"*.xml", "*.gnmap"},
	} {
		if err := SetDefault(flagSet, name, value); err != nil {
			t.Fatalf("SetDefault(%s): %v", name, err)
		}
	}

	if err := flagSet.Parse(nil); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := params{
		CPUs: 2.5, Memory: "4G", Timeout: 300, Grace: 3 * time.Second,
		Quiet: true, Save: []string{"*.xml", "*.gnmap"},
	}
	if !reflect.DeepEqual(p, want) {
		t.Errorf("params = %+v, want %+v", p, want)
	}

	if flagSet.Changed("memory") {
		t.Error("SetDefault marked --memory as changed")
	}
	if got := flagSet.Lookup("memory").DefValue; got != "4G" {
		t.Errorf("DefValue = %q, want 4G", got)
	}
	if usage := flagSet.FlagUsages(); !strings.Contains(usage, `(default "4G")`) {
		t.Errorf("help does not show the new default:\n%s", usage)
	}
}

func TestSetDefault_CommandLineReplacesSliceDefault(t *testing.T) {
	type params struct {
		Save []string `flag:"save"`
	}

	var p params
	flagSet := FlagsFromParams("test", &p)
	if err := SetDefault(flagSet, "save", []string{"*.xml"}); err != nil {
		t.Fatalf("SetDefault: %v", err)
	}
	if err := flagSet.Parse([]string{"--save", "*.log", "--save", "*.txt"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !reflect.DeepEqual(p.Save, []string{"*.log", "*.txt"}) {
		t.Errorf("Save = %v, want [*.log *.txt]", p.Save)
	}
}

func TestSetDefault_Errors(t *testing.T) {
	type params struct {
		CPUs float64 `flag:"cpus"`
	}
	flagSet := FlagsFromParams("test", &params{})

	if err := SetDefault(flagSet, "missing", "x"); err == nil {
		t.Error("expected error for undefined flag")
	}
	if err := SetDefault(flagSet, "cpus", "many"); err == nil {
		t.Error("expected error for unparseable value")
	}
	if err := SetDefault(flagSet, "cpus", []string{"1"}); err == nil {
		t.Error("expected error for list default on a scalar flag")
	}
	if err := SetDefault(flagSet, "cpus", float32(1)); err == nil {
		t.Error("expected error for unsupported default type")
	}
}
