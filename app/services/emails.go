package services

import (
	"fmt"
	"html"
	"strings"

	"github.com/nutrieve/nutrieve/app/models"
	"github.com/nutrieve/nutrieve/pkg/mail"
)

func passwordResetEmail(user models.User, code string, ttlMinutes int) *mail.Message {
	name := html.EscapeString(user.Name)
	return mail.To(user.Email).
		Subject("Your Nutrieve password reset code").
		HTML(fmt.Sprintf(`<p>Hi %s,</p>
<p>Your password reset code is <strong style="font-size:20px;letter-spacing:4px">%s</strong>.</p>
<p>It expires in %d minutes. If you did not ask for a reset you can ignore this email.</p>
<p>Team Nutrieve</p>`, name, code, ttlMinutes)).
		Text(fmt.Sprintf("Hi %s,\n\nYour password reset code is %s. It expires in %d minutes.\n\nTeam Nutrieve\n",
			user.Name, code, ttlMinutes))
}

func orderConfirmationEmail(user models.User, order models.Order, trackURL string) *mail.Message {
	var rows, lines strings.Builder
	for _, it := range order.Items {
		fmt.Fprintf(&rows, "<tr><td>%s (%s)</td><td>%d</td><td>₹%s</td></tr>\n",
			html.EscapeString(it.ProductName), it.Size, it.Quantity, it.LineTotal.StringFixed(2))
		fmt.Fprintf(&lines, "- %s (%s) x %d: Rs %s\n", it.ProductName, it.Size, it.Quantity, it.LineTotal.StringFixed(2))
	}

	total := order.TotalAmount.StringFixed(2)
	return mail.To(user.Email).
		Subject(fmt.Sprintf("Order #%d confirmed", order.ID)).
		HTML(fmt.Sprintf(`<p>Hi %s,</p>
<p>Thank you for your order <strong>#%d</strong>.</p>
<table>
<tr><th>Item</th><th>Qty</th><th>Amount</th></tr>
%s</table>
<p>Subtotal: ₹%s<br>GST (18%%): ₹%s<br><strong>Total: ₹%s</strong></p>
<p><a href="%s">Track your order</a></p>`,
			html.EscapeString(user.Name), order.ID, rows.String(),
			order.SubtotalAmount.StringFixed(2), order.TaxAmount.StringFixed(2), total, trackURL)).
		Text(fmt.Sprintf("Hi %s,\n\nThank you for your order #%d.\n\n%s\nTotal (incl. 18%% GST): Rs %s\n\nTrack it at %s\n",
			user.Name, order.ID, lines.String(), total, trackURL))
}
