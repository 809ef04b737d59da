// Package orders assembles the order record handed to the email service
// and the review-step summary.
package orders

import (
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/customorder-backend/internal/catalog"
	"github.com/angelmondragon/customorder-backend/internal/draft"
	"github.com/angelmondragon/customorder-backend/internal/fields"
	"github.com/angelmondragon/customorder-backend/internal/validation"
	"github.com/angelmondragon/customorder-backend/pkg/enums"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultQuantity is used for pricing when the quantity field is blank or
// not a number.
const DefaultQuantity = validation.MinimumQuantity

const QuoteRequired = "Custom Quote Required"

// UploadResult is what the file storage step reports back to the assembler.
type UploadResult struct {
	Attempted    bool                  `json:"attempted"`
	Success      bool                  `json:"success"`
	FileName     string                `json:"fileName,omitempty"`
	FileID       string                `json:"fileId,omitempty"`
	ViewLink     string                `json:"viewLink,omitempty"`
	DownloadLink string                `json:"downloadLink,omitempty"`
	Error        string                `json:"error,omitempty"`
	Provider     enums.StorageProvider `json:"provider,omitempty"`
}

// Line is one selected product priced at the order quantity.
type Line struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int64           `json:"quantity"`
	Total     decimal.Decimal `json:"total"`
	Custom    bool            `json:"custom"`
}

func (l Line) String() string {
	if l.Custom {
		return fmt.Sprintf("• %s - %s", l.Name, QuoteRequired)
	}
	return fmt.Sprintf("• %s - $%s × %d = $%s", l.Name, l.UnitPrice.StringFixed(2), l.Quantity, GroupAmount(l.Total))
}

// Order is built fresh for every submission attempt and never stored.
type Order struct {
	Values         map[string]string
	Lines          []Line
	Quantity       int64
	EstimatedTotal decimal.Decimal
	Quote          bool
	SubmittedAt    time.Time
	Upload         *UploadResult
}

// Priced reports whether the estimated total is a number.
func (o *Order) Priced() bool {
	return !o.Quote
}

// EstimatedTotalText is the grouped total or the quote sentinel.
func (o *Order) EstimatedTotalText() string {
	if o.Quote {
		return QuoteRequired
	}
	return GroupAmount(o.EstimatedTotal)
}

// ProductList joins the line strings with newlines.
func (o *Order) ProductList() string {
	out := make([]string, 0, len(o.Lines))
	for _, line := range o.Lines {
		out = append(out, line.String())
	}
	return strings.Join(out, "\n")
}

// Assembler derives orders from drafts against a fixed catalog.
type Assembler struct {
	catalog *catalog.Catalog
	loc     *time.Location
}

func NewAssembler(cat *catalog.Catalog, loc *time.Location) *Assembler {
	if loc == nil {
		loc = time.Local
	}
	return &Assembler{catalog: cat, loc: loc}
}

// Quantity reads the leading integer of the quantity field. Blank, zero and
// non-numeric values fall back to DefaultQuantity.
func Quantity(raw string) int64 {
	q, ok := validation.LeadingInt(raw)
	if !ok || q == 0 {
		return DefaultQuantity
	}
	return q
}

// Assemble prices the selection and snapshots the draft values.
func (a *Assembler) Assemble(d *draft.Draft, upload *UploadResult, now time.Time) *Order {
	order := a.price(d)
	order.Values = d.Scalars()
	order.SubmittedAt = now.In(a.loc)
	order.Upload = upload
	return order
}

// price builds the lines in catalog order. The total is a number only when
// at least one product is selected and none is priced by quote.
func (a *Assembler) price(d *draft.Draft) *Order {
	qty := Quantity(d.Get(fields.TotalQuantity))
	order := &Order{Quantity: qty}

	total := decimal.Zero
	for _, product := range a.catalog.Filter(d.Selection()) {
		line := Line{ProductID: product.ID, Name: product.Name, Quantity: qty, Custom: product.Custom()}
		if line.Custom {
			order.Quote = true
		} else {
			line.UnitPrice = product.Price.Amount
			line.Total = product.Price.Amount.Mul(decimal.NewFromInt(qty))
			total = total.Add(line.Total)
		}
		order.Lines = append(order.Lines, line)
	}
	if len(order.Lines) == 0 {
		order.Quote = true
	}
	if !order.Quote {
		order.EstimatedTotal = total
	}
	return order
}

// GroupAmount formats an amount with US thousands separators and at most two
// fraction digits, e.g. 3000 -> "3,000".
func GroupAmount(amount decimal.Decimal) string {
	p := message.NewPrinter(language.AmericanEnglish)
	return p.Sprint(number.Decimal(amount.InexactFloat64(), number.MaxFractionDigits(2)))
}
