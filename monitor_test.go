package refreshflow_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sky93/refreshflow"
)

var _ = Describe("Monitor", func() {
	var (
		ctx context.Context
		cfg *refreshflow.Config
	)

	BeforeEach(func() {
		ctx = context.Background()
		cfg = &refreshflow.Config{
			InfoLog:  func(refreshflow.LogEvent) {},
			ErrorLog: func(refreshflow.LogEvent) {},
		}
	})

	newHandle := func(jobID string) *refreshflow.JobHandle {
		return &refreshflow.JobHandle{
			ItemID:     "item-1",
			JobID:      jobID,
			Kind:       refreshflow.KindDatasource,
			ResourceID: "ds-1",
			Status:     refreshflow.JobPending,
		}
	}

	Describe("Poll", func() {
		It("stamps the handle with the remote status and check time", func() {
			status := newFakeStatus(func(string, int) (refreshflow.JobStatus, error) {
				return refreshflow.JobSucceeded, nil
			})
			m := refreshflow.NewMonitor(status, cfg)
			h := newHandle("j-1")

			st, err := m.Poll(ctx, h)

			Expect(err).NotTo(HaveOccurred())
			Expect(st).To(Equal(refreshflow.JobSucceeded))
			Expect(h.Status).To(Equal(refreshflow.JobSucceeded))
			Expect(h.LastCheckedAt).NotTo(BeZero())
		})

		It("does not query the remote for a handle already terminal", func() {
			status := newFakeStatus(func(string, int) (refreshflow.JobStatus, error) {
				Fail("terminal handles must not be polled")
				return "", nil
			})
			m := refreshflow.NewMonitor(status, cfg)
			h := newHandle("j-1")
			h.Status = refreshflow.JobFailed

			st, err := m.Poll(ctx, h)

			Expect(err).NotTo(HaveOccurred())
			Expect(st).To(Equal(refreshflow.JobFailed))
			Expect(status.pollCount("j-1")).To(BeZero())
		})
	})

	Describe("WaitUntilTerminal", func() {
		It("returns SUCCEEDED after the status flips on the third poll", func() {
			status := newFakeStatus(func(_ string, poll int) (refreshflow.JobStatus, error) {
				if poll >= 3 {
					return refreshflow.JobSucceeded, nil
				}
				return refreshflow.JobPending, nil
			})
			m := refreshflow.NewMonitor(status, cfg)
			h := newHandle("j-1")

			res, err := m.WaitUntilTerminal(ctx, h, 10*time.Millisecond, time.Second)

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Status).To(Equal(refreshflow.JobSucceeded))
			Expect(status.pollCount("j-1")).To(BeNumerically(">=", 3))
			Expect(status.pollCount("j-1")).To(BeNumerically("<=", 100))
		})

		It("returns FAILED as a normal result, not an error", func() {
			status := newFakeStatus(func(string, int) (refreshflow.JobStatus, error) {
				return refreshflow.JobFailed, nil
			})
			m := refreshflow.NewMonitor(status, cfg)
			h := newHandle("j-1")

			res, err := m.WaitUntilTerminal(ctx, h, 5*time.Millisecond, time.Second)

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Status).To(Equal(refreshflow.JobFailed))
		})

		It("fails with ErrTimeout when the job never leaves PENDING", func() {
			status := newFakeStatus(func(string, int) (refreshflow.JobStatus, error) {
				return refreshflow.JobPending, nil
			})
			m := refreshflow.NewMonitor(status, cfg)
			h := newHandle("j-1")

			res, err := m.WaitUntilTerminal(ctx, h, 10*time.Millisecond, 200*time.Millisecond)

			Expect(errors.Is(err, refreshflow.ErrTimeout)).To(BeTrue())
			Expect(res.Status).To(Equal(refreshflow.JobPending))
		})

		It("returns ErrCallerCancelled within one poll interval, never ErrTimeout", func() {
			status := newFakeStatus(func(string, int) (refreshflow.JobStatus, error) {
				return refreshflow.JobPending, nil
			})
			m := refreshflow.NewMonitor(status, cfg)
			h := newHandle("j-1")

			waitCtx, cancel := context.WithCancel(ctx)
			time.AfterFunc(35*time.Millisecond, cancel)

			start := time.Now()
			_, err := m.WaitUntilTerminal(waitCtx, h, 20*time.Millisecond, 5*time.Second)

			Expect(errors.Is(err, refreshflow.ErrCallerCancelled)).To(BeTrue())
			Expect(errors.Is(err, refreshflow.ErrTimeout)).To(BeFalse())
			Expect(time.Since(start)).To(BeNumerically("<", time.Second))
		})

		It("keeps polling through transient status errors", func() {
			status := newFakeStatus(func(_ string, poll int) (refreshflow.JobStatus, error) {
				if poll < 3 {
					return "", errors.New("temporarily unavailable")
				}
				return refreshflow.JobSucceeded, nil
			})
			m := refreshflow.NewMonitor(status, cfg)
			h := newHandle("j-1")

			res, err := m.WaitUntilTerminal(ctx, h, 5*time.Millisecond, time.Second)

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Status).To(Equal(refreshflow.JobSucceeded))
		})
	})
})
