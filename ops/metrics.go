package ops

import (
	"bytes"
	"cmp"
	"fmt"
	"io"
	"net/http"
	"runtime/metrics"
	"strings"
	"sync"
	"time"

	"github.com/niklasfasching/anneal/util"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// M accumulates counters and gauges in influx line protocol naming
// (measurement,tag=value) until they are collected.
type M struct {
	Host, User, Pass string
	counts           map[string]int64
	gauges           map[string]float64
	sync.Mutex
}

var FlushRetries = 2

// DistanceBuckets are the upper bounds used for histograms of annealing
// distances.
var DistanceBuckets = []float64{0.0001, 0.001, 0.01, 0.1, 0.5, 1, 2}

func (m *M) Gauge(k string, v float64) {
	if m == nil {
		return
	}
	m.Lock()
	if m.gauges == nil {
		m.gauges = map[string]float64{}
	}
	m.gauges[k] = v
	m.Unlock()
}

func (m *M) Counter(k string, v int64) {
	if m == nil {
		return
	}
	m.Lock()
	if m.counts == nil {
		m.counts = map[string]int64{}
	}
	m.counts[k] += v
	m.Unlock()
}

func Esc(s, f string) string {
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, "=", "\\=")
	s = strings.ReplaceAll(s, " ", "\\ ")
	return cmp.Or(s, f)
}

func (m *M) Hist(name string, v float64, buckets []float64, tmpl string, args ...any) {
	if m == nil {
		return
	}
	tags := fmt.Sprintf(tmpl, args...)
	m.Lock()
	defer m.Unlock()
	if m.counts == nil {
		m.counts = map[string]int64{}
	}
	if m.gauges == nil {
		m.gauges = map[string]float64{}
	}
	for _, b := range buckets {
		if v <= b {
			m.counts[fmt.Sprintf("%s_bucket,%s,le=%g", name, tags, b)]++
		}
	}
	m.counts[fmt.Sprintf("%s_bucket,%s,le=+Inf", name, tags)]++
	m.gauges[fmt.Sprintf("%s_sum,%s", name, tags)] += v
	m.counts[fmt.Sprintf("%s_count,%s", name, tags)]++
}

// Collect returns and resets everything recorded so far, plus a few runtime
// samples.
func (m *M) Collect() map[string]any {
	if m == nil {
		return nil
	}
	m.Lock()
	kvs := map[string]any{}
	for k, v := range m.counts {
		kvs[k] = v
	}
	for k, v := range m.gauges {
		kvs[k] = v
	}
	m.counts = map[string]int64{}
	m.gauges = map[string]float64{}
	m.Unlock()
	ms := []metrics.Sample{
		{Name: "/sched/goroutines:goroutines"},
		{Name: "/memory/classes/heap/objects:bytes"},
		{Name: "/gc/cycles/total:gc-cycles"},
	}
	metrics.Read(ms)
	kvs["go_goroutines"] = int64(ms[0].Value.Uint64())
	kvs["go_mem_heap_bytes"] = int64(ms[1].Value.Uint64())
	kvs["go_gc_cycles"] = int64(ms[2].Value.Uint64())
	return kvs
}

// Write collects and writes the metrics as sorted influx lines.
func (m *M) Write(w io.Writer) error {
	kvs := m.Collect()
	ks := maps.Keys(kvs)
	slices.Sort(ks)
	for _, k := range ks {
		var err error
		switch v := kvs[k].(type) {
		case int64:
			_, err = fmt.Fprintf(w, "%s value=%di\n", k, v)
		case float64:
			_, err = fmt.Fprintf(w, "%s value=%f\n", k, v)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *M) Flush(cl *http.Client) error {
	if m.Host == "" {
		return nil
	}
	b := bytes.Buffer{}
	if err := m.Write(&b); err != nil {
		return err
	} else if b.Len() == 0 {
		return nil
	}
	bs := b.Bytes()
	_, err := util.Retry(func() (struct{}, error) {
		return struct{}{}, post(cl, m.Host+"/api/v1/push/influx/write", m.User, m.Pass, "text/plain", bytes.NewReader(bs))
	}, FlushRetries, 100*time.Millisecond)
	return err
}
