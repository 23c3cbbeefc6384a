package payment_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	internal "github.com/frahmantamala/payment-gateway/internal"
	"github.com/frahmantamala/payment-gateway/internal/payment"
	"github.com/frahmantamala/payment-gateway/internal/processor"
)

type mockService struct {
	approveFn  func(ctx context.Context, dto *payment.ApprovalDTO) (*payment.Payment, error)
	queryFn    func(filter payment.HistoryFilter) (*payment.HistoryResult, error)
	lastFilter *payment.HistoryFilter
}

func (m *mockService) Approve(ctx context.Context, dto *payment.ApprovalDTO) (*payment.Payment, error) {
	if m.approveFn != nil {
		return m.approveFn(ctx, dto)
	}
	return &payment.Payment{ID: 1, PartnerID: dto.PartnerID, Status: payment.StatusApproved}, nil
}

func (m *mockService) Query(filter payment.HistoryFilter) (*payment.HistoryResult, error) {
	m.lastFilter = &filter
	if m.queryFn != nil {
		return m.queryFn(filter)
	}
	return &payment.HistoryResult{Items: []*payment.Payment{}}, nil
}

var _ = ginkgo.Describe("Handler", func() {
	var (
		service *mockService
		handler *payment.Handler
	)

	const partnerID = int64(501)

	withPartner := func(r *http.Request) *http.Request {
		return r.WithContext(internal.ContextWithPartnerID(r.Context(), partnerID))
	}

	approvalBody := `{"amount":"150000","card_number":"4571730012345678","birth_date":"19900101","expiry":"1227","password":"12"}`

	ginkgo.BeforeEach(func() {
		service = &mockService{}
		handler = payment.NewHandler(service)
	})

	ginkgo.Describe("ApprovePayment", func() {
		ginkgo.It("should respond 401 without an authenticated partner", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", strings.NewReader(approvalBody))
			rec := httptest.NewRecorder()

			handler.ApprovePayment(rec, req)
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		})

		ginkgo.It("should respond 400 on a malformed body", func() {
			req := withPartner(httptest.NewRequest(http.MethodPost, "/api/v1/payments", strings.NewReader("{not json")))
			rec := httptest.NewRecorder()

			handler.ApprovePayment(rec, req)
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})

		ginkgo.It("should fill the partner from context and respond 201", func() {
			var gotDTO *payment.ApprovalDTO
			service.approveFn = func(_ context.Context, dto *payment.ApprovalDTO) (*payment.Payment, error) {
				gotDTO = dto
				return &payment.Payment{ID: 12, PartnerID: dto.PartnerID, Status: payment.StatusApproved}, nil
			}

			req := withPartner(httptest.NewRequest(http.MethodPost, "/api/v1/payments", strings.NewReader(approvalBody)))
			rec := httptest.NewRecorder()

			handler.ApprovePayment(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusCreated))
			gomega.Expect(gotDTO.PartnerID).To(gomega.Equal(partnerID))
			gomega.Expect(gotDTO.Amount.Equal(decimal.NewFromInt(150000))).To(gomega.BeTrue())

			var body payment.Payment
			gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(gomega.Succeed())
			gomega.Expect(body.ID).To(gomega.Equal(int64(12)))
		})

		ginkgo.It("should map a processor auth failure to 401 with its kind", func() {
			service.approveFn = func(context.Context, *payment.ApprovalDTO) (*payment.Payment, error) {
				return nil, &processor.AuthError{
					Kind:    processor.AuthMissingAPIKey,
					Message: "API-KEY header missing",
				}
			}

			req := withPartner(httptest.NewRequest(http.MethodPost, "/api/v1/payments", strings.NewReader(approvalBody)))
			rec := httptest.NewRecorder()

			handler.ApprovePayment(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))

			var body map[string]any
			gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(gomega.Succeed())
			gomega.Expect(body["error_code"]).To(gomega.Equal("MISSING_API_KEY"))
		})

		ginkgo.It("should map a decline to the upstream status with the enriched code", func() {
			service.approveFn = func(context.Context, *payment.ApprovalDTO) (*payment.Payment, error) {
				return nil, &processor.ApprovalError{
					Code:      422,
					ErrorCode: "STOLEN_OR_LOST",
					Message:   "stolen or lost card",
				}
			}

			req := withPartner(httptest.NewRequest(http.MethodPost, "/api/v1/payments", strings.NewReader(approvalBody)))
			rec := httptest.NewRecorder()

			handler.ApprovePayment(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnprocessableEntity))

			var body map[string]any
			gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(gomega.Succeed())
			gomega.Expect(body["error_code"]).To(gomega.Equal("STOLEN_OR_LOST"))
			gomega.Expect(body["message"]).To(gomega.Equal("stolen or lost card"))
		})

		ginkgo.It("should map validation failures to 400", func() {
			service.approveFn = func(context.Context, *payment.ApprovalDTO) (*payment.Payment, error) {
				return nil, internal.NewValidationFieldError("card_number",
					"card_number must be 13-19 digits", internal.ErrCodeInvalidCard)
			}

			req := withPartner(httptest.NewRequest(http.MethodPost, "/api/v1/payments", strings.NewReader(approvalBody)))
			rec := httptest.NewRecorder()

			handler.ApprovePayment(rec, req)
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})
	})

	ginkgo.Describe("GetPayments", func() {
		ginkgo.It("should respond 401 without an authenticated partner", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/payments", nil)
			rec := httptest.NewRecorder()

			handler.GetPayments(rec, req)
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		})

		ginkgo.It("should apply the default limit", func() {
			req := withPartner(httptest.NewRequest(http.MethodGet, "/api/v1/payments", nil))
			rec := httptest.NewRecorder()

			handler.GetPayments(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(service.lastFilter.Limit).To(gomega.Equal(payment.DefaultPageLimit))
			gomega.Expect(service.lastFilter.PartnerID).To(gomega.Equal(partnerID))
		})

		ginkgo.It("should parse status, range, cursor and limit", func() {
			url := "/api/v1/payments?status=APPROVED&from=2026-08-01T00:00:00Z&to=2026-08-20T00:00:00Z&cursor=abc&limit=50"
			req := withPartner(httptest.NewRequest(http.MethodGet, url, nil))
			rec := httptest.NewRecorder()

			handler.GetPayments(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			filter := service.lastFilter
			gomega.Expect(*filter.Status).To(gomega.Equal("APPROVED"))
			gomega.Expect(*filter.Cursor).To(gomega.Equal("abc"))
			gomega.Expect(filter.Limit).To(gomega.Equal(50))
			gomega.Expect(filter.From.Equal(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))).To(gomega.BeTrue())
			gomega.Expect(filter.To.Equal(time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC))).To(gomega.BeTrue())
		})

		ginkgo.It("should reject a non-integer limit", func() {
			req := withPartner(httptest.NewRequest(http.MethodGet, "/api/v1/payments?limit=many", nil))
			rec := httptest.NewRecorder()

			handler.GetPayments(rec, req)
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})

		ginkgo.It("should reject a limit above the maximum", func() {
			req := withPartner(httptest.NewRequest(http.MethodGet, "/api/v1/payments?limit=101", nil))
			rec := httptest.NewRecorder()

			handler.GetPayments(rec, req)
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})

		ginkgo.It("should reject an unknown status", func() {
			req := withPartner(httptest.NewRequest(http.MethodGet, "/api/v1/payments?status=SETTLED", nil))
			rec := httptest.NewRecorder()

			handler.GetPayments(rec, req)
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})

		ginkgo.It("should reject an inverted time range", func() {
			url := "/api/v1/payments?from=2026-08-20T00:00:00Z&to=2026-08-01T00:00:00Z"
			req := withPartner(httptest.NewRequest(http.MethodGet, url, nil))
			rec := httptest.NewRecorder()

			handler.GetPayments(rec, req)
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})

		ginkgo.It("should reject malformed timestamps", func() {
			req := withPartner(httptest.NewRequest(http.MethodGet, "/api/v1/payments?from=yesterday", nil))
			rec := httptest.NewRecorder()

			handler.GetPayments(rec, req)
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})

		ginkgo.It("should return the page with its summary and cursor", func() {
			next := "bmV4dA"
			service.queryFn = func(filter payment.HistoryFilter) (*payment.HistoryResult, error) {
				return &payment.HistoryResult{
					Items: []*payment.Payment{{ID: 1, PartnerID: partnerID, Status: payment.StatusApproved}},
					Summary: payment.Summary{
						Count:          3,
						TotalAmount:    decimal.NewFromInt(600),
						TotalNetAmount: decimal.NewFromInt(582),
					},
					NextCursor: &next,
					HasNext:    true,
				}, nil
			}

			req := withPartner(httptest.NewRequest(http.MethodGet, "/api/v1/payments", nil))
			rec := httptest.NewRecorder()

			handler.GetPayments(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))

			var body map[string]any
			gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(gomega.Succeed())
			gomega.Expect(body["has_next"]).To(gomega.Equal(true))
			gomega.Expect(body["next_cursor"]).To(gomega.Equal(next))

			summary, ok := body["summary"].(map[string]any)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(summary["count"]).To(gomega.BeNumerically("==", 3))
		})
	})
})
