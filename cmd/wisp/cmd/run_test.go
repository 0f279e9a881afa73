package cmd

import (
	"testing"

	"github.com/jvcmarcenes/wisp/internal/errors"
)

func stage(t *testing.T, err error) errors.Stage {
	t.Helper()
	list, ok := err.(*errors.List)
	if !ok {
		t.Fatalf("expected an errors.List, got %T", err)
	}
	if len(list.Diagnostics) == 0 {
		t.Fatal("empty diagnostics list")
	}
	return list.Diagnostics[0].Stage
}

func TestRunPipelineSucceeds(t *testing.T) {
	code, err := runPipeline("let x = 1", "<test>", ".", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != 0 {
		t.Errorf("expected exit code 0, got %d", code)
	}
}

func TestRunPipelineStopsAtLexStage(t *testing.T) {
	_, err := runPipeline("let x = @", "<test>", ".", nil)
	if got := stage(t, err); got != errors.Lex {
		t.Errorf("expected lex stage, got %s", got)
	}
}

func TestRunPipelineStopsAtParseStage(t *testing.T) {
	_, err := runPipeline("let = 1", "<test>", ".", nil)
	if got := stage(t, err); got != errors.Parse {
		t.Errorf("expected parse stage, got %s", got)
	}
}

func TestRunPipelineStopsAtResolveStage(t *testing.T) {
	_, err := runPipeline("let x = missing", "<test>", ".", nil)
	if got := stage(t, err); got != errors.Resolve {
		t.Errorf("expected resolve stage, got %s", got)
	}
}

func TestRunPipelineSurfacesRuntimeStage(t *testing.T) {
	_, err := runPipeline("let zero = 0\nlet x = 1 / zero", "<test>", ".", nil)
	if got := stage(t, err); got != errors.Run {
		t.Errorf("expected run stage, got %s", got)
	}
}
