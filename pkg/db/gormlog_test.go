package db

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/customorder-backend/pkg/logger"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestQueryLog(slow time.Duration) (gormlogger.Interface, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.DebugLevel, Output: buf})
	return newQueryLog(logg, slow), buf
}

func stmt() (string, int64) {
	return "SELECT * FROM submission_attempts", 3
}

func TestQueryLogSkipsFastQueries(t *testing.T) {
	q, buf := newTestQueryLog(time.Second)
	q.Trace(context.Background(), time.Now(), stmt, nil)
	q.Trace(context.Background(), time.Now(), stmt, gorm.ErrRecordNotFound)
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %s", buf.String())
	}
}

func TestQueryLogReportsSlowAndFailed(t *testing.T) {
	q, buf := newTestQueryLog(10 * time.Millisecond)

	q.Trace(context.Background(), time.Now().Add(-time.Second), stmt, nil)
	if !strings.Contains(buf.String(), "slow audit query") || !strings.Contains(buf.String(), `"rows":3`) {
		t.Fatalf("expected slow query warning, got %s", buf.String())
	}

	buf.Reset()
	q.Trace(context.Background(), time.Now(), stmt, errors.New("relation does not exist"))
	if !strings.Contains(buf.String(), "audit query failed") || !strings.Contains(buf.String(), "submission_attempts") {
		t.Fatalf("expected failure entry, got %s", buf.String())
	}
}

func TestQueryLogModes(t *testing.T) {
	q, buf := newTestQueryLog(10 * time.Millisecond)

	q.LogMode(gormlogger.Silent).Trace(context.Background(), time.Now().Add(-time.Second), stmt, errors.New("boom"))
	if buf.Len() != 0 {
		t.Fatalf("silent mode should drop everything, got %s", buf.String())
	}

	q.LogMode(gormlogger.Info).Trace(context.Background(), time.Now(), stmt, nil)
	if !strings.Contains(buf.String(), `"message":"audit query"`) {
		t.Fatalf("info mode should trace every statement, got %s", buf.String())
	}

	if newQueryLog(nil, time.Second) != gormlogger.Discard {
		t.Fatalf("nil logger should discard")
	}
}
