package jobs

import (
	"html"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/fintrack/fintrack/internal/ledger"
)

const (
	activationSubject = "Activate your Fintrack account"
	reminderSubject   = "Daily Income and Expense Reminder"
	summarySubject    = "Your daily Expense summary"
)

var amountPrinter = message.NewPrinter(language.English)

func composeActivation(fullName, activationURL, token string) string {
	link := activationURL + "/api/v1/activate?token=" + token
	var b strings.Builder
	b.WriteString("Hello " + html.EscapeString(fullName) + ",<br><br>")
	b.WriteString("Click on the following link to activate your account:<br>")
	b.WriteString("<a href='" + link + "'>" + link + "</a><br><br>")
	b.WriteString("Best regards,<br>The Fintrack Team")
	return b.String()
}

func composeReminder(fullName, frontendURL string) string {
	var b strings.Builder
	b.WriteString("Hello " + html.EscapeString(fullName) + ",<br><br>")
	b.WriteString("This is a friendly reminder to log your income and expenses for today.<br><br>")
	b.WriteString("<a href='" + frontendURL + "' style='display:inline-block;padding:10px 20px;background-color:#4CAF50;color:#fff;text-decoration:none;border-radius:5px;font-weight:bold;'>Go to Fintrack</a><br><br>")
	b.WriteString("Thank you for using Fintrack!<br><br>")
	b.WriteString("Best regards,<br>The Fintrack Team")
	return b.String()
}

// composeSummary renders one row per transaction: sequence number, name,
// amount, category name or "N/A" when the category no longer resolves.
func composeSummary(fullName string, transactions []ledger.Transaction) string {
	var table strings.Builder
	table.WriteString("<table style='width:100%;border-collapse:collapse;'>")
	table.WriteString("<tr style='background-color:#f2f2f2;'>")
	for _, heading := range []string{"S.No", "Name", "Amount", "Category"} {
		table.WriteString("<th style='border:1px solid #ddd;padding:8px;'>" + heading + "</th>")
	}
	table.WriteString("</tr>")
	for i, tx := range transactions {
		category := tx.CategoryName
		if category == "" {
			category = "N/A"
		}
		amount, _ := tx.Amount.Float64()
		table.WriteString("<tr>")
		table.WriteString("<td style='border:1px solid #ddd;padding:8px;'>" + amountPrinter.Sprintf("%d", i+1) + "</td>")
		table.WriteString("<td style='border:1px solid #ddd;padding:8px;'>" + html.EscapeString(tx.Name) + "</td>")
		table.WriteString("<td style='border:1px solid #ddd;padding:8px;'>" + amountPrinter.Sprintf("%.2f", amount) + "</td>")
		table.WriteString("<td style='border:1px solid #ddd;padding:8px;'>" + html.EscapeString(category) + "</td>")
		table.WriteString("</tr>")
	}
	table.WriteString("</table>")

	var b strings.Builder
	b.WriteString("Hello " + html.EscapeString(fullName) + ",<br><br>")
	b.WriteString("Here is your expense summary for today:<br><br>")
	b.WriteString(table.String())
	b.WriteString("<br><br>Thank you for using Fintrack!<br><br>")
	b.WriteString("Best regards,<br>The Fintrack Team")
	return b.String()
}
