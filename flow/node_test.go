// ABOUTME: Tests for the Node lifecycle covering retry accounting, recovery, and post semantics.
// ABOUTME: Verifies exec runs at most MaxAttempts times and post runs exactly once per lifecycle.
package flow

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestNewNodeRequiresName(t *testing.T) {
	_, err := NewNode(NodeSpec[*Context]{Recover: Reraise})
	if err == nil {
		t.Fatal("expected error for unnamed node")
	}
}

func TestNewNodeRequiresRecover(t *testing.T) {
	_, err := NewNode(NodeSpec[*Context]{Name: "n"})
	if err == nil {
		t.Fatal("expected error for node without Recover")
	}
}

func TestNodeLifecycleOrder(t *testing.T) {
	var calls []string
	n := MustNode(NodeSpec[*Context]{
		Name: "lifecycle",
		Prep: func(ctx context.Context, st *Context) (any, error) {
			calls = append(calls, "prep")
			return "prepared", nil
		},
		Exec: func(ctx context.Context, prep any) (any, error) {
			calls = append(calls, "exec")
			if prep != "prepared" {
				t.Errorf("exec got prep %v, want %q", prep, "prepared")
			}
			return "result", nil
		},
		Post: func(ctx context.Context, st *Context, prep, result any) (Action, error) {
			calls = append(calls, "post")
			if result != "result" {
				t.Errorf("post got result %v, want %q", result, "result")
			}
			return "done", nil
		},
		Recover: Reraise,
	})

	action, err := n.Run(context.Background(), NewContext())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if action != "done" {
		t.Errorf("action = %q, want %q", action, "done")
	}
	want := []string{"prep", "exec", "post"}
	if fmt.Sprint(calls) != fmt.Sprint(want) {
		t.Errorf("call order = %v, want %v", calls, want)
	}
}

func TestNodeRetryCounts(t *testing.T) {
	tests := []struct {
		name        string
		maxAttempts int
		failures    int // exec failures before succeeding; -1 = always fail
		wantCalls   int
		wantErr     bool
	}{
		{name: "single attempt no retry", maxAttempts: 1, failures: -1, wantCalls: 1, wantErr: true},
		{name: "succeeds first try", maxAttempts: 3, failures: 0, wantCalls: 1},
		{name: "succeeds on second attempt", maxAttempts: 3, failures: 1, wantCalls: 2},
		{name: "exhausts all attempts", maxAttempts: 3, failures: -1, wantCalls: 3, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			n := MustNode(NodeSpec[*Context]{
				Name:        "retry",
				MaxAttempts: tt.maxAttempts,
				Exec: func(ctx context.Context, prep any) (any, error) {
					calls++
					if tt.failures < 0 || calls <= tt.failures {
						return nil, errors.New("transient")
					}
					return "ok", nil
				},
				Recover: Reraise,
			})

			_, err := n.Run(context.Background(), NewContext())
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("exec called %d times, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestNodeRecoverSubstitutesResult(t *testing.T) {
	execErr := errors.New("backend down")
	postRan := false

	n := MustNode(NodeSpec[*Context]{
		Name:        "fallback",
		MaxAttempts: 2,
		Exec: func(ctx context.Context, prep any) (any, error) {
			return nil, execErr
		},
		Recover: func(prep any, err error) (any, error) {
			if !errors.Is(err, execErr) {
				t.Errorf("recover got %v, want %v", err, execErr)
			}
			return "placeholder", nil
		},
		Post: func(ctx context.Context, st *Context, prep, result any) (Action, error) {
			postRan = true
			if result != "placeholder" {
				t.Errorf("post result = %v, want placeholder", result)
			}
			return "", nil
		},
	})

	action, err := n.Run(context.Background(), NewContext())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !postRan {
		t.Error("post did not run after recovery")
	}
	if action != Default {
		t.Errorf("empty post action should map to Default, got %q", action)
	}
}

func TestNodeReraisePropagates(t *testing.T) {
	execErr := errors.New("fatal")
	n := MustNode(NodeSpec[*Context]{
		Name: "abort",
		Exec: func(ctx context.Context, prep any) (any, error) {
			return nil, execErr
		},
		Recover: Reraise,
		Post: func(ctx context.Context, st *Context, prep, result any) (Action, error) {
			t.Error("post must not run when recover re-raises")
			return "", nil
		},
	})

	_, err := n.Run(context.Background(), NewContext())
	if !errors.Is(err, execErr) {
		t.Fatalf("err = %v, want wrapped %v", err, execErr)
	}
}

func TestNodePostRunsExactlyOnce(t *testing.T) {
	postCalls := 0
	calls := 0
	n := MustNode(NodeSpec[*Context]{
		Name:        "once",
		MaxAttempts: 3,
		Exec: func(ctx context.Context, prep any) (any, error) {
			calls++
			if calls < 3 {
				return nil, errors.New("flaky")
			}
			return "ok", nil
		},
		Post: func(ctx context.Context, st *Context, prep, result any) (Action, error) {
			postCalls++
			return "", nil
		},
		Recover: Reraise,
	})

	if _, err := n.Run(context.Background(), NewContext()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if postCalls != 1 {
		t.Errorf("post ran %d times, want 1", postCalls)
	}
}

func TestNodeExecPanicBecomesError(t *testing.T) {
	n := MustNode(NodeSpec[*Context]{
		Name: "panicky",
		Exec: func(ctx context.Context, prep any) (any, error) {
			panic("boom")
		},
		Recover: Reraise,
	})

	_, err := n.Run(context.Background(), NewContext())
	if err == nil {
		t.Fatal("expected error from panicking exec")
	}
}

func TestNodeZeroWaitMeansNoDelay(t *testing.T) {
	n := MustNode(NodeSpec[*Context]{
		Name:        "nowait",
		MaxAttempts: 5,
		Wait:        0,
		Exec: func(ctx context.Context, prep any) (any, error) {
			return nil, errors.New("always")
		},
		Recover: func(prep any, err error) (any, error) { return nil, nil },
	})

	start := time.Now()
	if _, err := n.Run(context.Background(), NewContext()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("run with zero wait took %v", elapsed)
	}
}

func TestNodePrepErrorAborts(t *testing.T) {
	execRan := false
	n := MustNode(NodeSpec[*Context]{
		Name: "badprep",
		Prep: func(ctx context.Context, st *Context) (any, error) {
			return nil, errors.New("missing input")
		},
		Exec: func(ctx context.Context, prep any) (any, error) {
			execRan = true
			return nil, nil
		},
		Recover: Reraise,
	})

	if _, err := n.Run(context.Background(), NewContext()); err == nil {
		t.Fatal("expected prepare error")
	}
	if execRan {
		t.Error("exec ran after prepare failed")
	}
}
