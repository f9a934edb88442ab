package domain

import (
	"net/url"
)

// UPIInstructions is what the customer needs to pay an order by UPI.
type UPIInstructions struct {
	UPIID    string            `json:"upi_id"`
	Payee    string            `json:"payee"`
	Amount   string            `json:"amount"`
	Note     string            `json:"note"`
	URI      string            `json:"upi_uri"`
	AppLinks map[string]string `json:"app_links"`
}

var upiAppSchemes = map[string]string{
	"phonepe":   "phonepe://pay",
	"googlepay": "gpay://upi/pay",
	"paytm":     "paytmmp://pay",
}

// BuildUPIInstructions builds the upi://pay string and app deep links for an order.
func BuildUPIInstructions(order *Order, upiID, payee string) UPIInstructions {
	amount := order.FinalAmount.StringFixed(2)
	note := "Order " + order.Number
	query := "pa=" + url.QueryEscape(upiID) +
		"&pn=" + url.QueryEscape(payee) +
		"&am=" + amount +
		"&tn=" + url.QueryEscape(note) +
		"&cu=" + Currency

	links := make(map[string]string, len(upiAppSchemes))
	for app, scheme := range upiAppSchemes {
		links[app] = scheme + "?" + query
	}
	return UPIInstructions{
		UPIID:    upiID,
		Payee:    payee,
		Amount:   amount,
		Note:     note,
		URI:      "upi://pay?" + query,
		AppLinks: links,
	}
}
