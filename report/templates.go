package report

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/freightbox-tms/freightbox/internal/invoices"
	"github.com/freightbox-tms/freightbox/internal/ledger"
	"github.com/freightbox-tms/freightbox/internal/lr"
	"github.com/freightbox-tms/freightbox/internal/masterdata/customers"
	"github.com/freightbox-tms/freightbox/internal/thn"
)

var funcs = template.FuncMap{
	"inr":  ledger.FormatAmount,
	"date": func(t time.Time) string { return t.Format("02 Jan 2006") },
}

const pageStyle = `<style>
body { font-family: "Helvetica Neue", Arial, sans-serif; font-size: 12px; margin: 24px; }
h1 { font-size: 18px; margin-bottom: 2px; }
h2 { font-size: 14px; color: #444; }
table { width: 100%; border-collapse: collapse; margin-top: 12px; }
th, td { border: 1px solid #999; padding: 4px 8px; text-align: left; }
th { background: #eee; }
td.num, th.num { text-align: right; }
.meta { color: #666; margin-top: 4px; }
</style>`

var lorryReceiptTmpl = template.Must(template.New("lr").Funcs(funcs).Parse(pageStyle + `
<h1>Lorry Receipt {{.Receipt.Number}}</h1>
<p class="meta">Date: {{date .Receipt.Date}} | Vehicle: {{.Receipt.VehicleNumber}}</p>
<p>Consignor: {{.CustomerName}}</p>
<p>Route: {{.Receipt.FromLocation}} to {{.Receipt.ToLocation}}</p>
<table>
<tr><th>Charge</th><th class="num">Amount (Rs.)</th></tr>
<tr><td>Freight</td><td class="num">{{inr .Receipt.FreightAmount}}</td></tr>
<tr><td>Hamali</td><td class="num">{{inr .Receipt.Hamali}}</td></tr>
<tr><td>Other charges</td><td class="num">{{inr .Receipt.OtherCharges}}</td></tr>
<tr><th>Total</th><th class="num">{{inr .Receipt.TotalAmount}}</th></tr>
</table>`))

var invoiceTmpl = template.Must(template.New("invoice").Funcs(funcs).Parse(pageStyle + `
<h1>Tax Invoice {{.Invoice.Number}}</h1>
<p class="meta">Date: {{date .Invoice.Date}}</p>
<p>Billed to: {{.CustomerName}}</p>
<table>
<tr><th>LR No.</th><th>Route</th><th class="num">Freight (Rs.)</th><th class="num">GST share (Rs.)</th></tr>
{{range .Lines}}<tr><td>{{.Receipt.Number}}</td><td>{{.Receipt.FromLocation}} to {{.Receipt.ToLocation}}</td><td class="num">{{inr .Receipt.TotalAmount}}</td><td class="num">{{inr .TaxShare}}</td></tr>
{{end}}</table>
<table>
<tr><td>Subtotal</td><td class="num">{{inr .Invoice.Subtotal}}</td></tr>
{{if .Invoice.IsInterstate}}<tr><td>IGST ({{.Invoice.GSTRate}}%)</td><td class="num">{{inr .Invoice.IGST}}</td></tr>
{{else}}<tr><td>CGST</td><td class="num">{{inr .Invoice.CGST}}</td></tr>
<tr><td>SGST</td><td class="num">{{inr .Invoice.SGST}}</td></tr>
{{end}}<tr><th>Grand total</th><th class="num">{{inr .Invoice.GrandTotal}}</th></tr>
<tr><td>Paid</td><td class="num">{{inr .Invoice.PaidAmount}}</td></tr>
<tr><td>Balance</td><td class="num">{{inr .Invoice.BalanceAmount}}</td></tr>
</table>
<p class="meta">Status: {{.Invoice.Status}}</p>`))

var thnTmpl = template.Must(template.New("thn").Funcs(funcs).Parse(pageStyle + `
<h1>Truck Hiring Note {{.Number}}</h1>
<p class="meta">Date: {{date .Date}} | Truck: {{.TruckNumber}}</p>
<p>Owner: {{.OwnerName}}</p>
<p>Route: {{.FromLocation}} to {{.ToLocation}}</p>
<table>
<tr><td>Freight rate</td><td class="num">{{inr .FreightRate}}</td></tr>
<tr><td>Additional charges</td><td class="num">{{inr .AdditionalCharges}}</td></tr>
<tr><td>Advance paid</td><td class="num">{{inr .AdvanceAmount}}</td></tr>
<tr><th>Total</th><th class="num">{{inr .TotalAmount}}</th></tr>
<tr><td>Paid</td><td class="num">{{inr .PaidAmount}}</td></tr>
<tr><td>Balance</td><td class="num">{{inr .BalanceAmount}}</td></tr>
</table>
<p class="meta">Status: {{.Status}}</p>`))

var clientLedgerTmpl = template.Must(template.New("clientLedger").Funcs(funcs).Parse(pageStyle + `
<h1>Ledger Statement</h1>
<h2>{{.CustomerName}}</h2>
<table>
<tr><th>Date</th><th>Voucher</th><th>Particulars</th><th class="num">Debit</th><th class="num">Credit</th><th class="num">Balance</th></tr>
{{range .Entries}}<tr><td>{{date .Date}}</td><td>{{.Voucher}}</td><td>{{.Particulars}}</td><td class="num">{{inr .Debit}}</td><td class="num">{{inr .Credit}}</td><td class="num">{{inr .Balance}} {{.Side}}</td></tr>
{{end}}</table>
<p>Total debits: Rs. {{inr .Summary.TotalDebits}} | Total credits: Rs. {{inr .Summary.TotalCredits}} |
Closing balance: Rs. {{inr .Summary.ClosingBalance}} {{.Summary.ClosingSide}}</p>`))

type lorryReceiptData struct {
	Receipt      *lr.LorryReceipt
	CustomerName string
}

type invoiceLine struct {
	Receipt  lr.LorryReceipt
	TaxShare float64
}

type invoiceData struct {
	Invoice      *invoices.Invoice
	Lines        []invoiceLine
	CustomerName string
}

// RenderLorryReceiptHTML produces the printable LR document.
func RenderLorryReceiptHTML(receipt *lr.LorryReceipt, customer *customers.Customer) (string, error) {
	return render(lorryReceiptTmpl, lorryReceiptData{
		Receipt:      receipt,
		CustomerName: customers.DisplayName(customer),
	})
}

// RenderInvoiceHTML produces the printable tax invoice. The invoice-level GST
// is spread across the LR lines in proportion to their charge totals so each
// line shows its tax burden.
func RenderInvoiceHTML(invoice *invoices.Invoice, receipts []lr.LorryReceipt, customer *customers.Customer) (string, error) {
	tax := invoice.CGST + invoice.SGST + invoice.IGST
	shares := lr.AllocateProportionally(tax, receipts)
	lines := make([]invoiceLine, len(receipts))
	for i := range receipts {
		lines[i] = invoiceLine{Receipt: receipts[i], TaxShare: shares[i]}
	}
	return render(invoiceTmpl, invoiceData{
		Invoice:      invoice,
		Lines:        lines,
		CustomerName: customers.DisplayName(customer),
	})
}

// RenderTHNHTML produces the printable truck hiring note.
func RenderTHNHTML(note *thn.TruckHiringNote) (string, error) {
	return render(thnTmpl, note)
}

// RenderClientLedgerHTML produces the printable customer statement.
func RenderClientLedgerHTML(statement *ledger.ClientLedger) (string, error) {
	return render(clientLedgerTmpl, statement)
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("report: render %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}
