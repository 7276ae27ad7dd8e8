package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordJob("upload_files", "success", 2*time.Second)
	c.RecordJob("upload_files", "success", time.Second)
	c.RecordJob("download_folder", "cancelled", time.Second)
	c.AddBytes("upload", 1024)
	c.AddBytes("upload", 0)
	c.AddBytes("download", 10)
	c.RecordConnect(nil)
	c.RecordConnect(errors.New("auth failed"))

	if got := testutil.ToFloat64(c.JobsTotal.WithLabelValues("upload_files", "success")); got != 2 {
		t.Errorf("Expected 2 successful uploads, got %v", got)
	}
	if got := testutil.ToFloat64(c.JobsTotal.WithLabelValues("download_folder", "cancelled")); got != 1 {
		t.Errorf("Expected 1 cancelled download, got %v", got)
	}
	if got := testutil.ToFloat64(c.BytesTotal.WithLabelValues("upload")); got != 1024 {
		t.Errorf("Expected 1024 upload bytes, got %v", got)
	}
	if got := testutil.ToFloat64(c.ConnectsTotal.WithLabelValues("failure")); got != 1 {
		t.Errorf("Expected 1 failed connect, got %v", got)
	}
	if n := testutil.CollectAndCount(c.JobDuration); n != 2 {
		t.Errorf("Expected 2 duration series, got %d", n)
	}
}

func TestNilCollector(t *testing.T) {
	var c *Collector
	c.RecordJob("upload_files", "success", time.Second)
	c.AddBytes("upload", 1)
	c.RecordConnect(nil)
}
