// Package receipt renders PDF receipts for placed orders.
package receipt

import (
	"bytes"
	"fmt"

	"storefront/internal/models"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

const qrImage = "order-qr"

// Render returns a one-page PDF with the order's items, frozen totals and a
// QR code encoding the orderId.
func Render(order *models.Order) ([]byte, error) {
	qrPNG, err := qrcode.Encode(order.OrderID, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code for order %s: %w", order.OrderID, err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Order Receipt")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 11)
	header := []string{
		"Order: " + order.OrderID,
		"Date: " + order.CreatedAt.Format("02 Jan 2006 15:04"),
		"Customer: " + order.CustomerName,
		fmt.Sprintf("Payment: %s (%s)", order.PaymentMethod, order.PaymentStatus),
		fmt.Sprintf("Ship to: %s, %s %s", order.Address.Address, order.Address.City, order.Address.PinCode),
	}
	if order.TransactionID != "" {
		header = append(header, "Transaction: "+order.TransactionID)
	}
	for _, line := range header {
		pdf.Cell(0, 8, tr(pdf, line))
		pdf.Ln(7)
	}

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(qrImage, opts, bytes.NewReader(qrPNG))
	pdf.ImageOptions(qrImage, 160, 10, 35, 35, false, opts, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(100, 8, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(20, 8, "Qty", "B", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, "Price", "B", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, "Total", "B", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 11)
	for _, item := range order.Items {
		pdf.CellFormat(100, 8, tr(pdf, item.Title), "", 0, "L", false, 0, "")
		pdf.CellFormat(20, 8, fmt.Sprintf("%d", item.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 8, money(item.UnitPrice), "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 8, money(item.UnitPrice*float64(item.Quantity)), "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	for _, row := range totalRows(order) {
		pdf.CellFormat(150, 7, row[0], "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, row[1], "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(150, 9, "Grand total", "T", 0, "R", false, 0, "")
	pdf.CellFormat(30, 9, money(order.GrandTotal), "T", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render receipt for order %s: %w", order.OrderID, err)
	}
	return buf.Bytes(), nil
}

// Filename is the attachment name for an order's receipt.
func Filename(order *models.Order) string {
	return "receipt-" + order.OrderID + ".pdf"
}

// totalRows lists the label and amount of each total above the grand total.
func totalRows(order *models.Order) [][2]string {
	discount := money(0)
	if order.Discount > 0 {
		discount = "-" + money(order.Discount)
	}
	return [][2]string{
		{"Subtotal", money(order.Amount)},
		{"Discount", discount},
		{"Shipping", money(order.Shipping)},
		{"Tax", money(order.Tax)},
	}
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// tr converts UTF-8 text to the core font's code page.
func tr(pdf *gofpdf.Fpdf, s string) string {
	return pdf.UnicodeTranslatorFromDescriptor("")(s)
}
