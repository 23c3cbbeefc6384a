package payment_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	internal "github.com/frahmantamala/payment-gateway/internal"
	paymentDatamodel "github.com/frahmantamala/payment-gateway/internal/core/datamodel/payment"
	"github.com/frahmantamala/payment-gateway/internal/payment"
	"github.com/frahmantamala/payment-gateway/internal/processor"
)

type mockRepo struct {
	created     []*paymentDatamodel.Payment
	createErr   error
	lastPage    *payment.PageQuery
	lastSummary *payment.SummaryQuery
	pageFn      func(q payment.PageQuery) (*payment.PageResult, error)
	summaryFn   func(q payment.SummaryQuery) (*payment.Summary, error)
}

func (m *mockRepo) Create(p *paymentDatamodel.Payment) error {
	if m.createErr != nil {
		return m.createErr
	}
	p.ID = int64(len(m.created) + 1)
	m.created = append(m.created, p)
	return nil
}

func (m *mockRepo) FindPage(q payment.PageQuery) (*payment.PageResult, error) {
	m.lastPage = &q
	if m.pageFn != nil {
		return m.pageFn(q)
	}
	return &payment.PageResult{}, nil
}

func (m *mockRepo) FindSummary(q payment.SummaryQuery) (*payment.Summary, error) {
	m.lastSummary = &q
	if m.summaryFn != nil {
		return m.summaryFn(q)
	}
	return &payment.Summary{}, nil
}

type mockProcessor struct {
	partnerID int64
	result    *processor.ApprovalResult
	err       error
	calls     int
	lastReq   *processor.ApprovalRequest
}

func (m *mockProcessor) Supports(partnerID int64) bool {
	return partnerID == m.partnerID
}

func (m *mockProcessor) Approve(_ context.Context, req *processor.ApprovalRequest) (*processor.ApprovalResult, error) {
	m.calls++
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

var _ = ginkgo.Describe("Service", func() {
	var (
		repo    *mockRepo
		proc    *mockProcessor
		service *payment.Service
		log     *slog.Logger
	)

	const partnerID = int64(501)

	newService := func(feeRate decimal.Decimal) *payment.Service {
		registry := processor.NewRegistry(log, proc)
		return payment.NewService(repo, registry, nil, feeRate, log)
	}

	validDTO := func() *payment.ApprovalDTO {
		return &payment.ApprovalDTO{
			PartnerID:  partnerID,
			Amount:     decimal.NewFromInt(150000),
			CardNumber: "4571 7300 1234 5678",
			BirthDate:  "19900101",
			Expiry:     "1227",
			Password:   "12",
		}
	}

	ginkgo.BeforeEach(func() {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
		repo = &mockRepo{}
		proc = &mockProcessor{
			partnerID: partnerID,
			result: &processor.ApprovalResult{
				ApprovalCode: "AP00012345",
				ApprovedAt:   time.Date(2026, 8, 20, 10, 30, 0, 0, time.UTC),
				Status:       processor.StatusApproved,
			},
		}
		service = newService(decimal.Zero)
	})

	ginkgo.Describe("Approve", func() {
		ginkgo.It("should persist an approved payment with code and card fingerprint", func() {
			result, err := service.Approve(context.Background(), validDTO())
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			gomega.Expect(repo.created).To(gomega.HaveLen(1))
			record := repo.created[0]
			gomega.Expect(record.Status).To(gomega.Equal(payment.StatusApproved))
			gomega.Expect(record.CardBIN).To(gomega.Equal("457173"))
			gomega.Expect(record.CardLast4).To(gomega.Equal("5678"))
			gomega.Expect(record.ApprovalCode).ToNot(gomega.BeNil())
			gomega.Expect(*record.ApprovalCode).To(gomega.Equal("AP00012345"))

			gomega.Expect(result.Status).To(gomega.Equal(payment.StatusApproved))
			gomega.Expect(result.ID).To(gomega.Equal(record.ID))
		})

		ginkgo.It("should keep net amount equal to amount when no fee is configured", func() {
			result, err := service.Approve(context.Background(), validDTO())
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(result.NetAmount.Equal(result.Amount)).To(gomega.BeTrue())
		})

		ginkgo.It("should deduct the configured fee rate rounded to two places", func() {
			service = newService(decimal.RequireFromString("0.03"))

			dto := validDTO()
			dto.Amount = decimal.NewFromInt(10000)

			result, err := service.Approve(context.Background(), dto)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(result.NetAmount.Equal(decimal.NewFromInt(9700))).To(gomega.BeTrue())
		})

		ginkgo.It("should reject malformed card data before calling the processor", func() {
			dto := validDTO()
			dto.CardNumber = "12ab"

			_, err := service.Approve(context.Background(), dto)
			gomega.Expect(err).To(gomega.HaveOccurred())
			_, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(proc.calls).To(gomega.BeZero())
			gomega.Expect(repo.created).To(gomega.BeEmpty())
		})

		ginkgo.It("should fail when no processor serves the partner", func() {
			dto := validDTO()
			dto.PartnerID = 999

			_, err := service.Approve(context.Background(), dto)
			gomega.Expect(err).To(gomega.HaveOccurred())
			_, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(proc.calls).To(gomega.BeZero())
		})

		ginkgo.It("should record a decline and still return the typed error", func() {
			proc.err = &processor.ApprovalError{
				Code:      422,
				ErrorCode: "INSUFFICIENT_LIMIT",
				Message:   "credit limit exceeded",
			}

			_, err := service.Approve(context.Background(), validDTO())

			var declineErr *processor.ApprovalError
			gomega.Expect(errors.As(err, &declineErr)).To(gomega.BeTrue())
			gomega.Expect(declineErr.ErrorCode).To(gomega.Equal("INSUFFICIENT_LIMIT"))

			gomega.Expect(repo.created).To(gomega.HaveLen(1))
			record := repo.created[0]
			gomega.Expect(record.Status).To(gomega.Equal(payment.StatusDeclined))
			gomega.Expect(record.NetAmount.IsZero()).To(gomega.BeTrue())
			gomega.Expect(record.FailureCode).ToNot(gomega.BeNil())
			gomega.Expect(*record.FailureCode).To(gomega.Equal("INSUFFICIENT_LIMIT"))
			gomega.Expect(record.ApprovalCode).To(gomega.BeNil())
		})

		ginkgo.It("should leave no record on an authentication failure", func() {
			proc.err = &processor.AuthError{
				Kind:    processor.AuthUnregisteredAPIKey,
				Message: "api key is unregistered",
			}

			_, err := service.Approve(context.Background(), validDTO())

			var authErr *processor.AuthError
			gomega.Expect(errors.As(err, &authErr)).To(gomega.BeTrue())
			gomega.Expect(repo.created).To(gomega.BeEmpty())
		})

		ginkgo.It("should still surface the decline when persisting it fails", func() {
			proc.err = &processor.ApprovalError{Code: 422, ErrorCode: "STOLEN_OR_LOST", Message: "stolen or lost card"}
			repo.createErr = errors.New("db down")

			_, err := service.Approve(context.Background(), validDTO())

			var declineErr *processor.ApprovalError
			gomega.Expect(errors.As(err, &declineErr)).To(gomega.BeTrue())
			gomega.Expect(declineErr.ErrorCode).To(gomega.Equal("STOLEN_OR_LOST"))
		})
	})

	ginkgo.Describe("Query", func() {
		ginkgo.It("should reject a limit outside 1..100", func() {
			_, err := service.Query(payment.HistoryFilter{PartnerID: partnerID, Limit: 0})
			gomega.Expect(err).To(gomega.HaveOccurred())

			_, err = service.Query(payment.HistoryFilter{PartnerID: partnerID, Limit: 101})
			gomega.Expect(err).To(gomega.HaveOccurred())
		})

		ginkgo.It("should reject an unknown status", func() {
			status := "SETTLED"
			_, err := service.Query(payment.HistoryFilter{PartnerID: partnerID, Status: &status, Limit: 20})
			gomega.Expect(err).To(gomega.HaveOccurred())
			_, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
		})

		ginkgo.It("should pass decoded cursor coordinates to the repository", func() {
			createdAt := time.UnixMilli(1755900000123).UTC()
			id := int64(88)
			cursor := payment.EncodeCursor(&createdAt, &id)

			_, err := service.Query(payment.HistoryFilter{PartnerID: partnerID, Cursor: cursor, Limit: 20})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			gomega.Expect(repo.lastPage.CursorCreatedAt).ToNot(gomega.BeNil())
			gomega.Expect(repo.lastPage.CursorCreatedAt.Equal(createdAt)).To(gomega.BeTrue())
			gomega.Expect(repo.lastPage.CursorID).ToNot(gomega.BeNil())
			gomega.Expect(*repo.lastPage.CursorID).To(gomega.Equal(id))
		})

		ginkgo.It("should restart from the first page on a tampered cursor", func() {
			tampered := "definitely-not-a-cursor"
			_, err := service.Query(payment.HistoryFilter{PartnerID: partnerID, Cursor: &tampered, Limit: 20})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(repo.lastPage.CursorCreatedAt).To(gomega.BeNil())
			gomega.Expect(repo.lastPage.CursorID).To(gomega.BeNil())
		})

		ginkgo.It("should emit a next cursor only when more rows exist", func() {
			boundaryAt := time.UnixMilli(1755900000000).UTC()
			boundaryID := int64(10)

			repo.pageFn = func(q payment.PageQuery) (*payment.PageResult, error) {
				return &payment.PageResult{
					HasNext:       true,
					NextCreatedAt: &boundaryAt,
					NextID:        &boundaryID,
				}, nil
			}

			result, err := service.Query(payment.HistoryFilter{PartnerID: partnerID, Limit: 20})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(result.HasNext).To(gomega.BeTrue())
			gomega.Expect(result.NextCursor).ToNot(gomega.BeNil())

			gotCreatedAt, gotID := payment.DecodeCursor(result.NextCursor)
			gomega.Expect(gotCreatedAt.Equal(boundaryAt)).To(gomega.BeTrue())
			gomega.Expect(*gotID).To(gomega.Equal(boundaryID))

			repo.pageFn = func(q payment.PageQuery) (*payment.PageResult, error) {
				return &payment.PageResult{}, nil
			}

			result, err = service.Query(payment.HistoryFilter{PartnerID: partnerID, Limit: 20})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(result.HasNext).To(gomega.BeFalse())
			gomega.Expect(result.NextCursor).To(gomega.BeNil())
		})

		ginkgo.It("should compute the summary over the filter, not the page", func() {
			summary := payment.Summary{
				Count:          57,
				TotalAmount:    decimal.NewFromInt(5700000),
				TotalNetAmount: decimal.NewFromInt(5529000),
			}
			repo.summaryFn = func(q payment.SummaryQuery) (*payment.Summary, error) {
				return &summary, nil
			}

			createdAt := time.UnixMilli(1755900000000).UTC()
			id := int64(30)
			cursor := payment.EncodeCursor(&createdAt, &id)

			firstPage, err := service.Query(payment.HistoryFilter{PartnerID: partnerID, Limit: 20})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			laterPage, err := service.Query(payment.HistoryFilter{PartnerID: partnerID, Cursor: cursor, Limit: 20})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			gomega.Expect(firstPage.Summary).To(gomega.Equal(laterPage.Summary))
			gomega.Expect(repo.lastSummary).ToNot(gomega.BeNil())
		})
	})
})
