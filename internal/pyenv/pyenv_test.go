package pyenv

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDetect_ParsesVersion(t *testing.T) {
	d := &Detector{run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
		if name != "python3.12" {
			t.Fatalf("unexpected interpreter %q", name)
		}
		if len(args) != 2 || args[0] != "-c" {
			t.Fatalf("unexpected args %v", args)
		}
		return []byte("3.12\n"), nil
	}}

	v, err := d.Detect(context.Background(), "python3.12")
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	if v != "3.12" {
		t.Fatalf("Detect = %q, want 3.12", v)
	}
}

func TestDetect_DefaultInterpreter(t *testing.T) {
	var got string
	d := &Detector{run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
		got = name
		return []byte("3.11"), nil
	}}
	if _, err := d.Detect(context.Background(), ""); err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	if got != DefaultInterpreter {
		t.Fatalf("interpreter = %q, want %q", got, DefaultInterpreter)
	}
}

func TestDetect_Errors(t *testing.T) {
	boom := errors.New("boom")
	d := &Detector{run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return nil, boom
	}}
	if _, err := d.Detect(context.Background(), "python3"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped exec error, got %v", err)
	}

	d = &Detector{run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return []byte("Python 3.12.1"), nil
	}}
	if _, err := d.Detect(context.Background(), "python3"); err == nil {
		t.Fatalf("expected error for unexpected output")
	}
}

func TestDetect_CollapsesConcurrentCalls(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	d := &Detector{run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
		calls.Add(1)
		<-release
		return []byte("3.10"), nil
	}}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if v, err := d.Detect(context.Background(), "python3"); err != nil || v != "3.10" {
				t.Errorf("Detect = %q, %v", v, err)
			}
		}()
	}
	// The first caller blocks in run; give the rest time to join it.
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := calls.Load(); n != 1 {
		t.Fatalf("interpreter ran %d times, want 1", n)
	}
}

func TestValidVersion(t *testing.T) {
	for v, want := range map[string]bool{"3.12": true, "3.9": true, "3": false, "3.12.1": false, "": false} {
		if got := ValidVersion(v); got != want {
			t.Fatalf("ValidVersion(%q) = %v, want %v", v, got, want)
		}
	}
}
