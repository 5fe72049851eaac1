package refreshflow_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sky93/refreshflow"
)

var _ = Describe("Submitter", func() {
	var (
		ctx     context.Context
		trigger *fakeTrigger
	)

	BeforeEach(func() {
		ctx = context.Background()
		trigger = &fakeTrigger{}
	})

	It("wraps the remote job id into a PENDING handle", func() {
		trigger.triggerFn = func(_ context.Context, kind refreshflow.ItemKind, resourceID string) (string, error) {
			Expect(kind).To(Equal(refreshflow.KindFlow))
			Expect(resourceID).To(Equal("fl-3"))
			return "job-99", nil
		}

		s := refreshflow.NewSubmitter(trigger)
		h, err := s.Submit(ctx, refreshflow.KindFlow, "fl-3")

		Expect(err).NotTo(HaveOccurred())
		Expect(h.JobID).To(Equal("job-99"))
		Expect(h.ItemID).NotTo(BeEmpty())
		Expect(h.Status).To(Equal(refreshflow.JobPending))
		Expect(h.LastCheckedAt).To(BeZero())
	})

	It("surfaces trigger errors as ErrSubmitFailed without a handle", func() {
		trigger.triggerFn = func(context.Context, refreshflow.ItemKind, string) (string, error) {
			return "", errors.New("request timed out")
		}

		s := refreshflow.NewSubmitter(trigger)
		h, err := s.Submit(ctx, refreshflow.KindWorkbook, "wb-1")

		Expect(h).To(BeNil())
		Expect(errors.Is(err, refreshflow.ErrSubmitFailed)).To(BeTrue())
	})
})
