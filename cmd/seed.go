package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	paymentDatamodel "github.com/frahmantamala/payment-gateway/internal/core/datamodel/payment"
	"github.com/frahmantamala/payment-gateway/internal/payment"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample payment history",
	Long:  `Insert a spread of approved, declined and canceled payments for local development`,
	Run: func(cmd *cobra.Command, args []string) {
		runSeed()
	},
}

func runSeed() {
	cfg, err := loadConfig(".")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := initDB(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to initialize gorm: %v", err)
	}

	if clearData {
		fmt.Println("Clearing existing payments...")
		if err := gormDB.Exec("DELETE FROM payments").Error; err != nil {
			log.Fatalf("failed to clear payments: %v", err)
		}
	}

	records := samplePayments(cfg.Processor.PartnerID)
	if err := gormDB.Create(&records).Error; err != nil {
		log.Fatalf("failed to seed payments: %v", err)
	}

	fmt.Printf("Seeded %d payments for partner %d\n", len(records), cfg.Processor.PartnerID)
}

func samplePayments(partnerID int64) []paymentDatamodel.Payment {
	now := time.Now().UTC()
	str := func(s string) *string { return &s }

	var records []paymentDatamodel.Payment
	for i := 0; i < 30; i++ {
		createdAt := now.Add(-time.Duration(i) * 6 * time.Hour)
		amount := decimal.NewFromInt(int64(10000 + i*2500))

		record := paymentDatamodel.Payment{
			PartnerID: partnerID,
			Amount:    amount,
			NetAmount: amount,
			CardBIN:   "457173",
			CardLast4: fmt.Sprintf("%04d", 1000+i),
			CreatedAt: createdAt,
			UpdatedAt: createdAt,
		}

		switch i % 5 {
		case 3:
			record.Status = payment.StatusDeclined
			record.NetAmount = decimal.Zero
			record.FailureCode = str("INSUFFICIENT_LIMIT")
			record.FailureMessage = str("credit limit exceeded")
		case 4:
			record.Status = payment.StatusCanceled
			record.NetAmount = decimal.Zero
		default:
			approvedAt := createdAt.Add(2 * time.Second)
			record.Status = payment.StatusApproved
			record.ApprovalCode = str(fmt.Sprintf("AP%08d", 10000000+i))
			record.ApprovedAt = &approvedAt
			record.ProductName = str("Sample product")
		}

		records = append(records, record)
	}
	return records
}
