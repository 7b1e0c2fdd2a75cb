package tool

import (
	contractx "github.com/bkocaman/supplypilot/agent/contract"
)

const (
	ToolFetchMarketData = "get_product_market_data"
	ToolUpdatePrice     = "update_product_price"
	ToolCreateRestock   = "create_restock_order"
	ToolSendEmail       = "send_notification_email"
)

// Specs returns the declarative schema of the four tools. The catalog is
// fixed and handed to the reasoning engine on every call.
func Specs() []contractx.ToolSpec {
	return []contractx.ToolSpec{
		{
			Name: ToolFetchMarketData,
			Desc: "Retrieves live market data (price, stock, competitor info) for a product.",
			Params: map[string]contractx.ToolParam{
				"product_id": {Type: "string", Desc: "Product identifier", Required: true},
			},
		},
		{
			Name: ToolUpdatePrice,
			Desc: "Updates the selling price of a product.",
			Params: map[string]contractx.ToolParam{
				"product_id": {Type: "string", Desc: "Product identifier", Required: true},
				"new_price":  {Type: "number", Desc: "New selling price", Required: true},
				"reason":     {Type: "string", Desc: "Why the price changes", Required: true},
			},
		},
		{
			Name: ToolCreateRestock,
			Desc: "Places a purchase order (PO) to restock inventory.",
			Params: map[string]contractx.ToolParam{
				"product_id": {Type: "string", Desc: "Product identifier", Required: true},
				"quantity":   {Type: "integer", Desc: "Units to order", Required: true},
			},
		},
		{
			Name: ToolSendEmail,
			Desc: "Sends a formal notification email to the executive/boss.",
			Params: map[string]contractx.ToolParam{
				"subject": {Type: "string", Desc: "Email subject", Required: true},
				"body":    {Type: "string", Desc: "Email body", Required: true},
			},
		},
	}
}
