package report_test

import (
	"context"
	"database/sql"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/bpsim/report"
)

type execCall struct {
	query string
	args  []any
}

type fakeExecer struct {
	calls []execCall
	err   error
}

func (f *fakeExecer) ExecContext(
	_ context.Context,
	query string,
	args ...any,
) (sql.Result, error) {
	f.calls = append(f.calls, execCall{query: query, args: args})
	return nil, f.err
}

var _ = Describe("Clock", func() {
	var (
		ntpTime   = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		localTime = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
		queried   []string
	)

	local := func() time.Time { return localTime }

	BeforeEach(func() {
		queried = nil
	})

	It("should use the local clock without a server", func() {
		c := report.NewClock("")
		c.SetSources(func(s string) (time.Time, error) {
			queried = append(queried, s)
			return ntpTime, nil
		}, local)

		Expect(c.Now()).To(Equal(localTime))
		Expect(queried).To(BeEmpty())
	})

	It("should query the server", func() {
		c := report.NewClock("pool.ntp.org")
		c.SetSources(func(s string) (time.Time, error) {
			queried = append(queried, s)
			return ntpTime, nil
		}, local)

		Expect(c.Now()).To(Equal(ntpTime))
		Expect(queried).To(Equal([]string{"pool.ntp.org"}))
		Expect(c.Server()).To(Equal("pool.ntp.org"))
	})

	It("should fall back to the local clock on error", func() {
		c := report.NewClock("pool.ntp.org")
		c.SetSources(func(string) (time.Time, error) {
			return time.Time{}, errors.New("timeout")
		}, local)

		Expect(c.Now()).To(Equal(localTime))
	})
})

var _ = Describe("Recorder", func() {
	var (
		db  *fakeExecer
		rec *report.Recorder
		ctx context.Context
	)

	BeforeEach(func() {
		var err error
		db = &fakeExecer{}
		ctx = context.Background()
		rec, err = report.NewRecorder(db, "runs")
		Expect(err).NotTo(HaveOccurred())
	})

	It("should reject unsafe table names", func() {
		_, err := report.NewRecorder(db, "runs; DROP TABLE x")
		Expect(err).To(MatchError(ContainSubstring("invalid table name")))
	})

	It("should create the table", func() {
		Expect(rec.CreateTable(ctx)).To(Succeed())
		Expect(db.calls).To(HaveLen(1))
		Expect(db.calls[0].query).To(HavePrefix("CREATE TABLE IF NOT EXISTS runs"))
	})

	It("should insert a run", func() {
		run := report.Run{
			Name:           "trace.txt",
			Core:           1,
			Branches:       100,
			Mispredictions: 5,
			Accuracy:       95,
			Started:        time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
			Finished:       time.Date(2024, 5, 1, 12, 0, 3, 0, time.UTC),
		}

		Expect(rec.Insert(ctx, run)).To(Succeed())
		Expect(db.calls).To(HaveLen(1))
		Expect(db.calls[0].query).To(HavePrefix("INSERT INTO runs"))
		Expect(db.calls[0].args).To(Equal([]any{
			"trace.txt", 1, uint64(100), uint64(5), float64(95),
			"2024-05-01 12:00:00", "2024-05-01 12:00:03",
		}))
	})

	It("should wrap database errors", func() {
		db.err = errors.New("connection refused")

		err := rec.Insert(ctx, report.Run{Name: "t", Core: 2})
		Expect(err).To(MatchError(ContainSubstring("t/core 2")))
		Expect(errors.Unwrap(err)).To(MatchError("connection refused"))

		Expect(rec.CreateTable(ctx)).To(MatchError(ContainSubstring("connection refused")))
	})

	It("should close without an owned database", func() {
		Expect(rec.Close()).To(Succeed())
	})
})
