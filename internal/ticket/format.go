package ticket

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const Currency = "CDF"

var numbers = message.NewPrinter(language.English)

// FormatNumber groups thousands with commas: 30000 -> "30,000".
func FormatNumber(n int64) string {
	return numbers.Sprintf("%d", n)
}

// FormatAmount renders a whole-unit amount with the currency suffix.
func FormatAmount(n int64) string {
	return FormatNumber(n) + " " + Currency
}

var (
	frenchWeekdays = [...]string{"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi"}
	frenchMonths   = [...]string{"janvier", "février", "mars", "avril", "mai", "juin", "juillet", "août", "septembre", "octobre", "novembre", "décembre"}
)

// FormatDate writes the long French form used on tickets, e.g. "samedi 14 décembre 2024".
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%s %d %s %d", frenchWeekdays[t.Weekday()], t.Day(), frenchMonths[t.Month()-1], t.Year())
}

var whitespace = regexp.MustCompile(`\s+`)

// Filename is the download name of a ticket: Billet-<title-with-dashes>-<token>.pdf.
func Filename(eventTitle, token string) string {
	return "Billet-" + whitespace.ReplaceAllString(eventTitle, "-") + "-" + token + ".pdf"
}

// shortRef is the last eight characters of the order id, upper-cased.
func shortRef(orderID string) string {
	if len(orderID) > 8 {
		orderID = orderID[len(orderID)-8:]
	}
	return strings.ToUpper(orderID)
}
