package main

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Sample coupon definition used for local development.
type sampleCoupon struct {
	Code              string    `json:"code"`
	DiscountType      string    `json:"discountType"`
	DiscountValue     float64   `json:"discountValue"`
	MaxDiscountAmount *float64  `json:"maxDiscountAmount,omitempty"`
	MinOrderValue     *float64  `json:"minOrderValue,omitempty"`
	ValidFrom         time.Time `json:"validFrom"`
	ValidUntil        time.Time `json:"validUntil"`
	Active            bool      `json:"active"`
}

func ptr(v float64) *float64 { return &v }

// generateSampleCoupons writes a sample coupon catalogue for local testing,
// once as plain JSON lines and once gzip-compressed.
func main() {
	dataDir := "data/coupons"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Hour)
	coupons := []sampleCoupon{
		{
			Code:              "HARVEST10",
			DiscountType:      "percentage",
			DiscountValue:     10,
			MaxDiscountAmount: ptr(100),
			ValidFrom:         now.AddDate(0, -1, 0),
			ValidUntil:        now.AddDate(1, 0, 0),
			Active:            true,
		},
		{
			Code:          "FLAT50",
			DiscountType:  "fixed_amount",
			DiscountValue: 50,
			MinOrderValue: ptr(500),
			ValidFrom:     now.AddDate(0, -1, 0),
			ValidUntil:    now.AddDate(1, 0, 0),
			Active:        true,
		},
		{
			Code:          "MONSOON25",
			DiscountType:  "percentage",
			DiscountValue: 25,
			MinOrderValue: ptr(1000),
			ValidFrom:     now.AddDate(0, -3, 0),
			ValidUntil:    now.AddDate(0, -1, 0), // expired
			Active:        true,
		},
		{
			Code:          "PAUSED15",
			DiscountType:  "percentage",
			DiscountValue: 15,
			ValidFrom:     now.AddDate(0, -1, 0),
			ValidUntil:    now.AddDate(1, 0, 0),
			Active:        false, // disabled
		},
	}

	for _, filename := range []string{"coupons.jsonl", "coupons.jsonl.gz"} {
		filePath := filepath.Join(dataDir, filename)
		if err := writeCouponFile(filePath, coupons); err != nil {
			log.Fatalf("Failed to create %s: %v", filename, err)
		}
		fmt.Printf("Created %s with %d coupons\n", filePath, len(coupons))
	}
}

func writeCouponFile(filePath string, coupons []sampleCoupon) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	var w io.Writer = file
	if strings.HasSuffix(filePath, ".gz") {
		gzipWriter := gzip.NewWriter(file)
		defer gzipWriter.Close()
		w = gzipWriter
	}

	enc := json.NewEncoder(w)
	for _, c := range coupons {
		if err := enc.Encode(c); err != nil {
			return fmt.Errorf("failed to write coupon %s: %w", c.Code, err)
		}
	}
	return nil
}
