// Package api – payment gateway.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// ChargeRequest is the payload sent to the backend when the online portion
// of a booking is charged.
type ChargeRequest struct {
	OrderID string  `json:"orderId"`
	Amount  float64 `json:"amount"`
	Method  string  `json:"method"`
}

// Gateway charges the online portion of a booking. The commit pipeline
// calls it under a deadline so a hung backend cannot leave the pipeline
// stuck in Submitting.
type Gateway struct {
	Client  *Client
	Timeout time.Duration
}

// Charge posts the charge and treats any non-2xx status as failure.
func (g Gateway) Charge(ctx context.Context, req ChargeRequest) error {
	if g.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}
	resp, err := g.Client.Request(ctx, http.MethodPost, "/payments/charge", req)
	if err != nil {
		return err
	}
	if resp.Status < 200 || resp.Status > 299 {
		return fmt.Errorf("charge %s: unexpected status %d", req.OrderID, resp.Status)
	}
	return nil
}
