package nginx

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeNginx writes a shell script that accepts any config lacking the word BROKEN
// and records the -c argument it was given
func fakeNginx(t *testing.T) (bin, record string) {
	t.Helper()
	dir := t.TempDir()
	bin = filepath.Join(dir, "nginx")
	record = filepath.Join(dir, "record")

	script := `#!/bin/sh
if [ "$1" != "-t" ]; then
  echo "unexpected args: $*" >&2
  exit 2
fi
if [ "$2" = "-c" ]; then
  echo "$3" > "` + record + `"
  if grep -q BROKEN "$3"; then
    echo "nginx: [emerg] unknown directive \"BROKEN\" in $3:1" >&2
    echo "nginx: configuration file $3 test failed" >&2
    exit 1
  fi
  echo "nginx: configuration file $3 test is successful" >&2
  exit 0
fi
echo "nginx: the configuration file /etc/nginx/nginx.conf syntax is ok" >&2
exit 0
`
	require.NoError(t, os.WriteFile(bin, []byte(script), 0755))
	return bin, record
}

type testerFunc func(ctx context.Context, path string) (string, error)

func (f testerFunc) Test(ctx context.Context, path string) (string, error) {
	return f(ctx, path)
}

func TestCommandTester(t *testing.T) {
	bin, _ := fakeNginx(t)
	tester := NewCommandTester(bin)

	out, err := tester.Test(context.Background(), "")
	require.NoError(t, err)
	assert.Contains(t, out, "syntax is ok")

	_, err = NewCommandTester(filepath.Join(t.TempDir(), "missing")).Test(context.Background(), "")
	assert.True(t, errors.Is(err, ErrBinaryNotFound), "got %v", err)
}

func TestValidator_Accepts(t *testing.T) {
	bin, record := fakeNginx(t)
	staging := t.TempDir()
	v := NewValidator(NewCommandTester(bin), staging)

	require.NoError(t, v.Validate(context.Background(), "events {}\nhttp {}\n"))

	used, err := os.ReadFile(record)
	require.NoError(t, err)
	path := strings.TrimSpace(string(used))
	assert.Equal(t, staging, filepath.Dir(path))
	assert.NoFileExists(t, path, "candidate must be removed after validation")
}

func TestValidator_Rejects(t *testing.T) {
	bin, record := fakeNginx(t)
	v := NewValidator(NewCommandTester(bin), t.TempDir())

	err := v.Validate(context.Background(), "BROKEN;\n")

	var rej *RejectedError
	require.True(t, errors.As(err, &rej), "expected *RejectedError, got %v", err)
	assert.Contains(t, rej.Diagnostics, `unknown directive "BROKEN"`)
	assert.Contains(t, rej.Diagnostics, "test failed")

	used, err := os.ReadFile(record)
	require.NoError(t, err)
	assert.NoFileExists(t, strings.TrimSpace(string(used)), "candidate must be removed after rejection")
}

func TestValidator_MissingBinary(t *testing.T) {
	staging := t.TempDir()
	v := NewValidator(NewCommandTester(filepath.Join(t.TempDir(), "nope")), staging)

	err := v.Validate(context.Background(), "events {}\n")

	var rej *RejectedError
	require.True(t, errors.As(err, &rej), "expected *RejectedError, got %v", err)
	assert.True(t, errors.Is(err, ErrBinaryNotFound))
	assert.Contains(t, rej.Diagnostics, "nginx not available")

	entries, err := os.ReadDir(staging)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestValidator_CandidateIsPrivate(t *testing.T) {
	staging := t.TempDir()
	var seenMode os.FileMode
	var seenContent string

	v := NewValidator(testerFunc(func(ctx context.Context, path string) (string, error) {
		info, err := os.Stat(path)
		if err != nil {
			return "", err
		}
		seenMode = info.Mode().Perm()
		data, _ := os.ReadFile(path)
		seenContent = string(data)
		return "", nil
	}), staging)

	require.NoError(t, v.Validate(context.Background(), "worker_processes 1;\n"))
	assert.Equal(t, os.FileMode(0600), seenMode)
	assert.Equal(t, "worker_processes 1;\n", seenContent)
}

func TestValidator_TesterPanicsStillCleansUp(t *testing.T) {
	staging := t.TempDir()
	v := NewValidator(testerFunc(func(ctx context.Context, path string) (string, error) {
		panic("boom")
	}), staging)

	assert.Panics(t, func() { _ = v.Validate(context.Background(), "x") })

	entries, err := os.ReadDir(staging)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestActivator(t *testing.T) {
	dir := t.TempDir()
	live := filepath.Join(dir, "nginx.conf")
	a := NewActivator(live)

	current, err := a.Current()
	require.NoError(t, err)
	assert.Empty(t, current)

	require.NoError(t, a.Activate("first\n"))
	require.NoError(t, a.Activate("second\n"))

	current, err = a.Current()
	require.NoError(t, err)
	assert.Equal(t, "second\n", current)

	info, err := os.Stat(live)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no staging files may be left next to the live file")
}

func TestActivator_ReadersNeverSeePartialFile(t *testing.T) {
	live := filepath.Join(t.TempDir(), "nginx.conf")
	a := NewActivator(live)

	versions := []string{strings.Repeat("a", 64*1024), strings.Repeat("b", 64*1024)}
	require.NoError(t, a.Activate(versions[0]))

	var stop atomic.Bool
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for !stop.Load() {
			data, err := os.ReadFile(live)
			if err != nil {
				t.Errorf("read live: %v", err)
				return
			}
			if string(data) != versions[0] && string(data) != versions[1] {
				t.Errorf("observed partial file of %d bytes", len(data))
				return
			}
		}
	}()

	for i := 0; i < 50; i++ {
		require.NoError(t, a.Activate(versions[i%2]))
	}
	stop.Store(true)
	wg.Wait()
}

func TestReloader(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "reloaded")

	require.NoError(t, NewReloader("touch "+marker).Reload(context.Background()))
	assert.FileExists(t, marker)

	err := NewReloader("echo not running >&2; exit 1").Reload(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not running")
}

func TestLane_SerializesJobs(t *testing.T) {
	lane := NewLane()
	defer lane.Close()

	var running, maxRunning int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := lane.Submit(context.Background(), func() error {
				n := atomic.AddInt32(&running, 1)
				for {
					m := atomic.LoadInt32(&maxRunning)
					if n <= m || atomic.CompareAndSwapInt32(&maxRunning, m, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				atomic.AddInt32(&running, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&maxRunning))
}

func TestLane_ReturnsJobError(t *testing.T) {
	lane := NewLane()
	defer lane.Close()

	want := errors.New("job failed")
	assert.Equal(t, want, lane.Submit(context.Background(), func() error { return want }))
	assert.ErrorContains(t, lane.Submit(context.Background(), func() error { panic("boom") }), "panicked")
}

func TestLane_ContextAndClose(t *testing.T) {
	lane := NewLane()

	started := make(chan struct{})
	release := make(chan struct{})
	go lane.Submit(context.Background(), func() error {
		close(started)
		<-release
		return nil
	})
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := lane.Submit(ctx, func() error { return nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	lane.Close()
	assert.ErrorIs(t, lane.Submit(context.Background(), func() error { return nil }), ErrLaneClosed)
}

func TestLane_StartedJobOutlivesContext(t *testing.T) {
	lane := NewLane()
	defer lane.Close()

	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	finished := false
	go func() {
		<-started
		cancel()
	}()

	err := lane.Submit(ctx, func() error {
		close(started)
		<-ctx.Done()
		time.Sleep(10 * time.Millisecond)
		finished = true
		return errors.New("job result")
	})
	assert.EqualError(t, err, "job result")
	assert.True(t, finished)
}
