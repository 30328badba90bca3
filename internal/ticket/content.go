package ticket

import (
	"fmt"
	"strings"

	"github.com/Domenick1991/showtickets/internal/domain"
)

// maxLineRows is how many itemized rows fit above the QR footer.
const maxLineRows = 3

type lineItem struct {
	Quantity string
	Type     string
	Amount   string
}

// content is everything printed on a ticket, already formatted.
type content struct {
	Title     string
	Date      string
	Time      string
	Place     string
	Ref       string
	Customer  string
	Phone     string
	Lines     []lineItem
	Total     string
	Token     string
	QRPayload string
	ImageURL  string
}

func buildContent(order domain.Order, event domain.Event) content {
	c := content{
		Title:     strings.ToUpper(event.Title),
		Date:      FormatDate(event.Date.Time),
		Time:      event.Time,
		Place:     joinPlace(event.Venue, event.City),
		Ref:       "Ref: #" + shortRef(order.ID),
		Customer:  order.CustomerName,
		Phone:     order.CustomerPhone,
		Total:     FormatAmount(order.LinesTotal()),
		Token:     order.Token,
		QRPayload: order.ID,
		ImageURL:  event.Image,
	}

	for i, l := range order.Tickets {
		if i == maxLineRows-1 && len(order.Tickets) > maxLineRows {
			c.Lines = append(c.Lines, summarize(order.Tickets[i:]))
			break
		}
		c.Lines = append(c.Lines, lineItem{
			Quantity: fmt.Sprintf("%dx", l.Quantity),
			Type:     l.Type,
			Amount:   FormatAmount(l.Amount()),
		})
	}
	return c
}

func summarize(rest []domain.OrderLine) lineItem {
	qty := 0
	var amount int64
	for _, l := range rest {
		qty += l.Quantity
		amount += l.Amount()
	}
	return lineItem{
		Quantity: fmt.Sprintf("%dx", qty),
		Type:     fmt.Sprintf("autres (%d types)", len(rest)),
		Amount:   FormatAmount(amount),
	}
}

func joinPlace(venue, city string) string {
	switch {
	case venue == "":
		return city
	case city == "":
		return venue
	}
	return venue + ", " + city
}
