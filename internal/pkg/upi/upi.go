// Package upi builds UPI payment deep links and their QR codes.
package upi

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/skip2/go-qrcode"
)

const DefaultQRSize = 256

var ErrNoPayee = errors.New("upi payee is not configured")

type Payee struct {
	VPA  string
	Name string
}

// Link returns the upi://pay URI for amount rupees with a transaction note.
func (p Payee) Link(amount float64, note string) (string, error) {
	if p.VPA == "" {
		return "", ErrNoPayee
	}
	if amount <= 0 {
		return "", fmt.Errorf("invalid amount %.2f", amount)
	}

	q := url.Values{}
	q.Set("pa", p.VPA)
	if p.Name != "" {
		q.Set("pn", p.Name)
	}
	q.Set("am", fmt.Sprintf("%.2f", amount))
	q.Set("cu", "INR")
	if note != "" {
		q.Set("tn", note)
	}
	return "upi://pay?" + q.Encode(), nil
}

// QR renders link as a PNG.
func QR(link string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultQRSize
	}
	png, err := qrcode.Encode(link, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code PNG: %w", err)
	}
	return png, nil
}
