package store

import (
	contractx "github.com/bkocaman/supplypilot/agent/contract"
)

// DefaultProductID is the single product this deployment pilots.
const DefaultProductID = "OTC_VIT_C_ZINC"

// SeedRecord is the initial pharma_products row.
func SeedRecord() contractx.ProductRecord {
	return contractx.ProductRecord{
		DrugID:          DefaultProductID,
		ProductName:     "Vitamin C + Zinc Complex",
		StockLevel:      2000,
		CurrentPrice:    120,
		CompetitorPrice: 130,
		CostPrice:       60,
		Category:        "Supplements",
	}
}
