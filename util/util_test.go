package util

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	type config struct {
		Name     string
		Steps    int
		Temp     float64
		Tags     []string
		Host     string `config:"optional"`
		internal string
	}
	t.Setenv("TEST_Name", "spread")
	t.Setenv("TEST_Tags", `["a", "b"]`)
	c := config{Steps: 500, Temp: 0.5}
	t.Setenv("TEST_Temp", "2.5")
	if err := LoadConfig("TEST_", &c); err != nil {
		t.Fatal(err)
	} else if c.Name != "spread" || c.Steps != 500 || c.Temp != 2.5 || len(c.Tags) != 2 || c.Host != "" || c.internal != "" {
		t.Fatalf("unexpected config %#v", c)
	}

	if err := LoadConfig("MISSING_", &config{}); err == nil || !strings.Contains(err.Error(), `"MISSING_Name"`) {
		t.Fatalf("expected missing field error, got %v", err)
	}
	t.Setenv("BAD_Name", "x")
	t.Setenv("BAD_Steps", "many")
	if err := LoadConfig("BAD_", &config{}); err == nil || !strings.Contains(err.Error(), `"BAD_Steps"`) {
		t.Fatalf("expected unmarshal error, got %v", err)
	}
	if err := LoadConfig("TEST_", c); err == nil {
		t.Fatal("expected error for non-pointer config")
	}
}

func TestLog(t *testing.T) {
	ctx, b := context.Background(), &bytes.Buffer{}
	Infof(ctx, "dropped without logger")
	ctx = WithLogger(ctx, WithLvl(INFO, Writer(b)))
	msgs := []string{}
	ctx = WithLogger(ctx, func(lvl Lvl, msg string) { msgs = append(msgs, lvl.String()+" "+msg) })
	Debugf(ctx, "step=%d", 1)
	Infof(ctx, "stopped after %d steps", 500)
	Warn(ctx, "flush", " failed")
	if s := strings.Join(msgs, "|"); s != "DEBUG step=1|INFO stopped after 500 steps|WARN flush failed" {
		t.Fatalf("unexpected messages %q", s)
	}
	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	if len(lines) != 2 || !strings.HasSuffix(lines[0], " INFO  stopped after 500 steps") ||
		!strings.HasSuffix(lines[1], " WARN  flush failed") {
		t.Fatalf("unexpected output %q", b.String())
	}
	for s, l := range map[string]Lvl{"ERROR": ERROR, "WARN": WARN, "INFO": INFO, "DEBUG": DEBUG, "": DEBUG} {
		if ParseLvl(s) != l {
			t.Errorf("ParseLvl(%q) != %v", s, l)
		}
	}
}

func TestRetry(t *testing.T) {
	n := 0
	v, err := Retry(func() (int, error) {
		if n++; n < 3 {
			return 0, errors.New("not yet")
		}
		return n, nil
	}, 2, time.Millisecond)
	if err != nil || v != 3 {
		t.Fatalf("expected 3, got %v %v", v, err)
	}

	n = 0
	_, err = Retry(func() (int, error) { n++; return 0, errors.New("never") }, 1, time.Millisecond)
	if err == nil || !strings.Contains(err.Error(), "max retries reached: never") || n != 2 {
		t.Fatalf("expected max retries error after 2 attempts, got %v after %d", err, n)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := RetryContext(ctx, func(context.Context) (int, error) { return 0, errors.New("x") }, 5, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
}
