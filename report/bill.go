package report

import (
	"html/template"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/arogya-his/arogya-his/internal/billing"
	"github.com/arogya-his/arogya-his/internal/patients"
)

var currencyPrinter = message.NewPrinter(language.MustParse("en-IN"))

func formatAmount(v float64) string {
	return currencyPrinter.Sprintf("Rs. %.2f", v)
}

var billTemplate = template.Must(template.New("bill").Funcs(template.FuncMap{
	"amount": formatAmount,
	"date": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Format("02 Jan 2006")
	},
	"title": func(s string) string {
		if s == "" {
			return s
		}
		return strings.ToUpper(s[:1]) + s[1:]
	},
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
body { font-family: sans-serif; font-size: 13px; color: #222; }
h1 { font-size: 18px; margin-bottom: 0; }
.meta { margin: 12px 0; }
.meta td { padding: 2px 18px 2px 0; }
table.items { width: 100%; border-collapse: collapse; margin-top: 10px; }
table.items th, table.items td { border: 1px solid #999; padding: 5px 8px; text-align: left; }
table.items th { background: #eee; }
td.num { text-align: right; }
.totals { margin-top: 14px; width: 40%; margin-left: auto; }
.totals td { padding: 3px 8px; }
.totals .grand { font-weight: bold; border-top: 1px solid #999; }
.footer { margin-top: 40px; font-size: 11px; color: #555; }
</style>
</head>
<body>
<h1>{{.HospitalName}}</h1>
<div>{{.HospitalAddress}}</div>
<h2>Discharge Bill {{.Bill.BillNo}}</h2>
<table class="meta">
<tr><td>Patient</td><td>{{.Patient.Name}} ({{.Patient.MRN}})</td></tr>
<tr><td>Section</td><td>{{title (printf "%s" .Bill.Section)}}</td></tr>
<tr><td>Admitted</td><td>{{date .Bill.AdmissionDate}}</td></tr>
<tr><td>Discharged</td><td>{{date .Bill.DischargeDate}}</td></tr>
</table>
<table class="items">
<tr><th>Category</th><th>Description</th><th>Qty</th><th>Rate</th><th>Amount</th></tr>
{{range .Items}}
<tr>
<td>{{.Category}}</td>
<td>{{.Description}}</td>
<td class="num">{{.Quantity}}</td>
<td class="num">{{amount .Rate}}</td>
<td class="num">{{amount .Amount}}</td>
</tr>
{{end}}
</table>
<table class="totals">
<tr class="grand"><td>Total</td><td class="num">{{amount .Bill.TotalAmount}}</td></tr>
<tr><td>Advance paid</td><td class="num">{{amount .Bill.IPJoiningAmount}}</td></tr>
<tr><td>Total paid</td><td class="num">{{amount .Bill.PaidAmount}}</td></tr>
{{if gt .Bill.OutstandingAmount 0.0}}<tr><td>Outstanding</td><td class="num">{{amount .Bill.OutstandingAmount}}</td></tr>{{end}}
{{if gt .Bill.RefundableAmount 0.0}}<tr><td>Refundable</td><td class="num">{{amount .Bill.RefundableAmount}}</td></tr>{{end}}
</table>
<div class="footer">Generated {{date .GeneratedAt}} &middot; {{.Bill.BillNo}}</div>
</body>
</html>`))

// BillDocument carries everything the print template needs.
type BillDocument struct {
	HospitalName    string
	HospitalAddress string
	Bill            *billing.DischargeBill
	Items           []billing.DischargeBillItem
	Patient         *patients.Patient
	GeneratedAt     time.Time
}

// RenderBillHTML produces the printable bill markup.
func RenderBillHTML(doc BillDocument) (string, error) {
	if doc.GeneratedAt.IsZero() {
		doc.GeneratedAt = time.Now()
	}
	var buf strings.Builder
	if err := billTemplate.Execute(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}
