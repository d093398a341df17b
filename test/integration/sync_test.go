//go:build integration
// +build integration

package integration

import (
	"context"
	"strings"
	"testing"

	"github.com/danieljhkim/dsync/internal/engine"
	"github.com/danieljhkim/dsync/internal/remote"
	"github.com/danieljhkim/dsync/internal/sync"
)

func TestPushPull_RoundTrip(t *testing.T) {
	remoteDir := t.TempDir()

	producer := newTestRepo(t, remoteDir, false)
	producer.track(t, map[string]string{
		"data/raw.csv":     "id,value\n1,42\n",
		"models/model.bin": "\x00\x01weights",
	})

	result := producer.run(t, "push", sync.Config{})
	if result.ExitCode() != 0 {
		t.Fatalf("push failed:\n%s", producer.logs)
	}
	if result.TotalProcessed != 2 {
		t.Errorf("push processed %d objects, want 2", result.TotalProcessed)
	}

	consumer := newTestRepo(t, remoteDir, false)
	consumer.copyTargets(t, producer, "data/raw.csv.dsync", "models/model.bin.dsync")

	result = consumer.run(t, "pull", sync.Config{})
	if result.ExitCode() != 0 {
		t.Fatalf("pull failed:\n%s", consumer.logs)
	}
	// Two downloads plus two checkouts.
	if result.TotalProcessed != 4 {
		t.Errorf("pull processed %d, want 4", result.TotalProcessed)
	}
	if got := consumer.read(t, "data/raw.csv"); got != "id,value\n1,42\n" {
		t.Errorf("data/raw.csv = %q", got)
	}
	if got := consumer.read(t, "models/model.bin"); got != "\x00\x01weights" {
		t.Errorf("models/model.bin = %q", got)
	}

	status, err := consumer.engine.Status(context.Background(), nil, engine.StatusOptions{})
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if !status.InSync() {
		t.Errorf("expected pulled workspace to be in sync, got %+v", status.Targets)
	}

	result = consumer.run(t, "pull", sync.Config{})
	if !result.UpToDate() {
		t.Errorf("second pull processed %d", result.TotalProcessed)
	}
	if n := strings.Count(consumer.logs.String(), sync.UpToDateMessage); n != 1 {
		t.Errorf("up-to-date notice printed %d times, want 1:\n%s", n, consumer.logs)
	}
}

func TestPull_FailureIsolation(t *testing.T) {
	t.Cleanup(remote.ResetMemory)

	producer := newTestRepo(t, "mem://shared", false)
	producer.track(t, map[string]string{
		"raw.csv":   "raw",
		"model.bin": "model",
	})
	if result := producer.run(t, "push", sync.Config{}); result.ExitCode() != 0 {
		t.Fatalf("push failed:\n%s", producer.logs)
	}

	consumer := newTestRepo(t, "mem://shared", false)
	consumer.copyTargets(t, producer, "raw.csv.dsync", "model.bin.dsync")

	result := consumer.run(t, "pull", sync.Config{}, "raw.csv", "absent.csv", "model.bin")
	if result.Attempted != 3 {
		t.Errorf("attempted %d targets, want 3", result.Attempted)
	}
	if result.ExitCode() != 1 {
		t.Errorf("exit code = %d, want 1", result.ExitCode())
	}
	if result.TotalProcessed != 4 {
		t.Errorf("processed %d, want 4", result.TotalProcessed)
	}

	logs := consumer.logs.String()
	if n := strings.Count(logs, "failed to pull data from the cloud"); n != 1 {
		t.Errorf("error logged %d times, want 1:\n%s", n, logs)
	}
	if strings.Contains(logs, sync.UpToDateMessage) {
		t.Errorf("unexpected up-to-date notice:\n%s", logs)
	}
	if got := consumer.read(t, "model.bin"); got != "model" {
		t.Errorf("model.bin = %q, later targets must still be pulled", got)
	}
}

func TestFetchThenPull(t *testing.T) {
	t.Cleanup(remote.ResetMemory)

	producer := newTestRepo(t, "mem://staged", false)
	producer.track(t, map[string]string{"features.parquet": "columns"})
	producer.run(t, "push", sync.Config{})

	consumer := newTestRepo(t, "mem://staged", false)
	consumer.copyTargets(t, producer, "features.parquet.dsync")

	result := consumer.run(t, "fetch", sync.Config{Jobs: 1})
	if result.ExitCode() != 0 || result.TotalProcessed != 1 {
		t.Fatalf("fetch = %+v:\n%s", result, consumer.logs)
	}

	// Only the checkout is left to do.
	result = consumer.run(t, "pull", sync.Config{})
	if result.ExitCode() != 0 || result.TotalProcessed != 1 {
		t.Fatalf("pull = %+v:\n%s", result, consumer.logs)
	}
	if got := consumer.read(t, "features.parquet"); got != "columns" {
		t.Errorf("features.parquet = %q", got)
	}
}

func TestPush_AllBranches(t *testing.T) {
	remoteDir := t.TempDir()

	producer := newTestRepo(t, remoteDir, true)
	producer.track(t, map[string]string{"raw.csv": "version one"})
	producer.branch(t, "v1", producer.commit(t, "track v1", "raw.csv.dsync"))

	producer.track(t, map[string]string{"raw.csv": "version two"})
	producer.commit(t, "track v2", "raw.csv.dsync")

	result := producer.run(t, "push", sync.Config{})
	if result.TotalProcessed != 1 {
		t.Errorf("workspace push processed %d, want 1", result.TotalProcessed)
	}

	result = producer.run(t, "push", sync.Config{AllBranches: true})
	if result.ExitCode() != 0 {
		t.Fatalf("push --all-branches failed:\n%s", producer.logs)
	}
	if result.TotalProcessed != 1 {
		t.Errorf("push --all-branches processed %d, want the v1 object only", result.TotalProcessed)
	}

	result = producer.run(t, "push", sync.Config{AllBranches: true})
	if !result.UpToDate() {
		t.Errorf("repeated push processed %d", result.TotalProcessed)
	}

	status, err := producer.engine.Status(context.Background(), nil, engine.StatusOptions{Cloud: true, AllBranches: true})
	if err != nil {
		t.Fatalf("cloud status failed: %v", err)
	}
	if !status.InSync() {
		t.Errorf("expected cache and remote in sync, got %+v", status.Objects)
	}
}

func TestStatus_CloudReportsUnpushed(t *testing.T) {
	t.Cleanup(remote.ResetMemory)

	repo := newTestRepo(t, "mem://status", false)
	repo.track(t, map[string]string{"a.txt": "alpha"})

	status, err := repo.engine.Status(context.Background(), nil, engine.StatusOptions{Cloud: true})
	if err != nil {
		t.Fatalf("cloud status failed: %v", err)
	}
	if len(status.Objects) != 1 || status.Objects[0].Status != engine.StatusNew {
		t.Fatalf("objects = %+v, want one new object", status.Objects)
	}

	repo.run(t, "push", sync.Config{})

	status, err = repo.engine.Status(context.Background(), nil, engine.StatusOptions{Cloud: true})
	if err != nil {
		t.Fatalf("cloud status failed: %v", err)
	}
	if !status.InSync() {
		t.Errorf("expected in sync after push, got %+v", status.Objects)
	}
}
